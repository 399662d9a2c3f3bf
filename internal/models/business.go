package models

import (
	"time"
)

type Business struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone         *string   `json:"phone"`
	Address       *string   `json:"address"`
	ContactPerson string    `json:"contactPerson" gorm:"column:contact_person;not null"`
	IsActive      bool      `json:"isActive" gorm:"column:is_active;not null;default:true"`
	TotalRides    int       `json:"totalRides" gorm:"column:total_rides;not null;default:0"`
	MonthlySpend  float64   `json:"monthlySpend" gorm:"column:monthly_spend;type:decimal(10,2);default:0.00"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (Business) TableName() string {
	return "businesses"
}

type BusinessPatch struct {
	Name          *string  `json:"name"`
	Phone         *string  `json:"phone"`
	Address       *string  `json:"address"`
	ContactPerson *string  `json:"contactPerson"`
	IsActive      *bool    `json:"isActive"`
	TotalRides    *int     `json:"totalRides"`
	MonthlySpend  *float64 `json:"monthlySpend"`
}

func (p BusinessPatch) Apply(b *Business) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Phone != nil {
		v := *p.Phone
		b.Phone = &v
	}
	if p.Address != nil {
		v := *p.Address
		b.Address = &v
	}
	if p.ContactPerson != nil {
		b.ContactPerson = *p.ContactPerson
	}
	if p.IsActive != nil {
		b.IsActive = *p.IsActive
	}
	if p.TotalRides != nil {
		b.TotalRides = *p.TotalRides
	}
	if p.MonthlySpend != nil {
		b.MonthlySpend = *p.MonthlySpend
	}
}

// Feedback is a rider's rating of a finished ride. It is archived, not
// kept in the entity store.
type Feedback struct {
	ID        string    `json:"id"`
	RideID    *uint     `json:"rideId"`
	Rating    *int      `json:"rating"`
	Comment   string    `json:"comment"`
	UserID    *uint     `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

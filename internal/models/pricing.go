package models

import (
	"time"
)

// PriceCalculation is a persisted fare quote. The store keeps every
// entry; freshness is decided at read time.
type PriceCalculation struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	PickupLocation  string    `json:"pickupLocation" gorm:"column:pickup_location;not null;index:idx_price_route"`
	DropoffLocation string    `json:"dropoffLocation" gorm:"column:dropoff_location;not null;index:idx_price_route"`
	Distance        float64   `json:"distance" gorm:"type:decimal(8,2);not null"`
	BaseFare        float64   `json:"baseFare" gorm:"column:base_fare;type:decimal(8,2);not null"`
	PerKmRate       float64   `json:"perKmRate" gorm:"column:per_km_rate;type:decimal(8,2);not null"`
	TotalFare       float64   `json:"totalFare" gorm:"column:total_fare;type:decimal(8,2);not null"`
	RideType        RideType  `json:"rideType" gorm:"column:ride_type;not null;default:'standard';index:idx_price_route"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (PriceCalculation) TableName() string {
	return "price_calculations"
}

// SurgeInfo describes the multiplier in effect at a given instant.
type SurgeInfo struct {
	IsActive   bool    `json:"isActive"`
	Multiplier float64 `json:"multiplier"`
	Reason     string  `json:"reason"`
}

// Quote is a PriceCalculation plus the derived fields returned to
// callers. None of the extra fields are persisted.
type Quote struct {
	PriceCalculation
	EstimatedDuration int        `json:"estimatedDuration"`
	EstimatedArrival  *time.Time `json:"estimatedArrival,omitempty"`
	Features          []string   `json:"features"`
	SurgeInfo         SurgeInfo  `json:"surgeInfo"`
	CarbonOffset      float64    `json:"carbonOffset"`
	RewardPoints      int        `json:"rewardPoints"`
}

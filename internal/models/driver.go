package models

import (
	"time"
)

// Driver is the vehicle profile owned by a single user.
type Driver struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"userId" gorm:"column:user_id;uniqueIndex;not null"`
	LicenseNumber   string    `json:"licenseNumber" gorm:"column:license_number;uniqueIndex;not null"`
	VehicleType     string    `json:"vehicleType" gorm:"column:vehicle_type;not null"`
	VehicleModel    string    `json:"vehicleModel" gorm:"column:vehicle_model;not null"`
	VehiclePlate    string    `json:"vehiclePlate" gorm:"column:vehicle_plate;not null"`
	IsVerified      bool      `json:"isVerified" gorm:"column:is_verified;not null;default:false"`
	IsOnline        bool      `json:"isOnline" gorm:"column:is_online;not null;default:false"`
	Rating          float64   `json:"rating" gorm:"type:decimal(3,2);default:5.00"`
	TotalRides      int       `json:"totalRides" gorm:"column:total_rides;not null;default:0"`
	Earnings        float64   `json:"earnings" gorm:"type:decimal(10,2);default:0.00"`
	CurrentLocation *string   `json:"currentLocation" gorm:"column:current_location"`
	CreatedAt       time.Time `json:"createdAt"`
	User            *User     `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (Driver) TableName() string {
	return "drivers"
}

const (
	DefaultDriverRating = 5.00
)

type DriverPatch struct {
	LicenseNumber   *string  `json:"licenseNumber"`
	VehicleType     *string  `json:"vehicleType"`
	VehicleModel    *string  `json:"vehicleModel"`
	VehiclePlate    *string  `json:"vehiclePlate"`
	IsVerified      *bool    `json:"isVerified"`
	IsOnline        *bool    `json:"isOnline"`
	Rating          *float64 `json:"rating"`
	TotalRides      *int     `json:"totalRides"`
	Earnings        *float64 `json:"earnings"`
	CurrentLocation *string  `json:"currentLocation"`
}

func (p DriverPatch) Apply(d *Driver) {
	if p.LicenseNumber != nil {
		d.LicenseNumber = *p.LicenseNumber
	}
	if p.VehicleType != nil {
		d.VehicleType = *p.VehicleType
	}
	if p.VehicleModel != nil {
		d.VehicleModel = *p.VehicleModel
	}
	if p.VehiclePlate != nil {
		d.VehiclePlate = *p.VehiclePlate
	}
	if p.IsVerified != nil {
		d.IsVerified = *p.IsVerified
	}
	if p.IsOnline != nil {
		d.IsOnline = *p.IsOnline
	}
	if p.Rating != nil {
		d.Rating = *p.Rating
	}
	if p.TotalRides != nil {
		d.TotalRides = *p.TotalRides
	}
	if p.Earnings != nil {
		d.Earnings = *p.Earnings
	}
	if p.CurrentLocation != nil {
		loc := *p.CurrentLocation
		d.CurrentLocation = &loc
	}
}

package models

import (
	"time"
)

type RideStatus string

// RideStatus constants
const (
	RideStatusPending    RideStatus = "pending"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"
)

func (s RideStatus) Valid() bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// Terminal reports whether no further transitions leave s.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// AllowedTransitions is the ride state machine.
var AllowedTransitions = map[RideStatus][]RideStatus{
	RideStatusPending:    {RideStatusAccepted, RideStatusCancelled},
	RideStatusAccepted:   {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress: {RideStatusCompleted, RideStatusCancelled},
	RideStatusCompleted:  {},
	RideStatusCancelled:  {},
}

func CanTransition(from, to RideStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type RideType string

const (
	RideTypeStandard RideType = "standard"
	RideTypePremium  RideType = "premium"
	RideTypeLuxury   RideType = "luxury"
	RideTypeShared   RideType = "shared"
	RideTypeExpress  RideType = "express"
)

// RideTypes lists every ride type in display order.
var RideTypes = []RideType{RideTypeStandard, RideTypePremium, RideTypeLuxury, RideTypeShared, RideTypeExpress}

func (t RideType) Valid() bool {
	for _, rt := range RideTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// ParseRideType maps an empty or unknown value to standard. The bool
// reports whether s named a known type.
func ParseRideType(s string) (RideType, bool) {
	t := RideType(s)
	if t.Valid() {
		return t, true
	}
	return RideTypeStandard, false
}

type Ride struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	RiderID           uint       `json:"riderId" gorm:"column:rider_id;index;not null"`
	DriverID          *uint      `json:"driverId" gorm:"column:driver_id;index"`
	PickupLocation    string     `json:"pickupLocation" gorm:"column:pickup_location;not null"`
	DropoffLocation   string     `json:"dropoffLocation" gorm:"column:dropoff_location;not null"`
	PickupCoords      *string    `json:"pickupCoords" gorm:"column:pickup_coords"`
	DropoffCoords     *string    `json:"dropoffCoords" gorm:"column:dropoff_coords"`
	Status            RideStatus `json:"status" gorm:"not null;default:'pending'"`
	Fare              *float64   `json:"fare" gorm:"type:decimal(8,2)"`
	EstimatedDuration *int       `json:"estimatedDuration" gorm:"column:estimated_duration"` // minutes
	ActualDuration    *int       `json:"actualDuration" gorm:"column:actual_duration"`       // minutes
	Distance          *float64   `json:"distance" gorm:"type:decimal(8,2)"`                  // km
	RideType          RideType   `json:"rideType" gorm:"column:ride_type;not null;default:'standard'"`
	CreatedAt         time.Time  `json:"createdAt"`
	StartedAt         *time.Time `json:"startedAt" gorm:"column:started_at"`
	CompletedAt       *time.Time `json:"completedAt" gorm:"column:completed_at"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}

type RidePatch struct {
	DriverID          *uint       `json:"driverId"`
	PickupLocation    *string     `json:"pickupLocation"`
	DropoffLocation   *string     `json:"dropoffLocation"`
	PickupCoords      *string     `json:"pickupCoords"`
	DropoffCoords     *string     `json:"dropoffCoords"`
	Status            *RideStatus `json:"status"`
	Fare              *float64    `json:"fare"`
	EstimatedDuration *int        `json:"estimatedDuration"`
	ActualDuration    *int        `json:"actualDuration"`
	Distance          *float64    `json:"distance"`
	RideType          *RideType   `json:"rideType"`
	StartedAt         *time.Time  `json:"startedAt"`
	CompletedAt       *time.Time  `json:"completedAt"`
}

func (p RidePatch) Apply(r *Ride) {
	if p.DriverID != nil {
		id := *p.DriverID
		r.DriverID = &id
	}
	if p.PickupLocation != nil {
		r.PickupLocation = *p.PickupLocation
	}
	if p.DropoffLocation != nil {
		r.DropoffLocation = *p.DropoffLocation
	}
	if p.PickupCoords != nil {
		v := *p.PickupCoords
		r.PickupCoords = &v
	}
	if p.DropoffCoords != nil {
		v := *p.DropoffCoords
		r.DropoffCoords = &v
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Fare != nil {
		v := *p.Fare
		r.Fare = &v
	}
	if p.EstimatedDuration != nil {
		v := *p.EstimatedDuration
		r.EstimatedDuration = &v
	}
	if p.ActualDuration != nil {
		v := *p.ActualDuration
		r.ActualDuration = &v
	}
	if p.Distance != nil {
		v := *p.Distance
		r.Distance = &v
	}
	if p.RideType != nil {
		r.RideType = *p.RideType
	}
	if p.StartedAt != nil {
		v := *p.StartedAt
		r.StartedAt = &v
	}
	if p.CompletedAt != nil {
		v := *p.CompletedAt
		r.CompletedAt = &v
	}
}

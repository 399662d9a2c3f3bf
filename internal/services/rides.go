package services

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/pkg/utils"
)

type RideService struct {
	store   database.Store
	pricing *PricingService
	events  Broadcaster
	now     func() time.Time

	// guards read-check-write on a ride
	mu sync.Mutex
}

func NewRideService(store database.Store, pricing *PricingService, events Broadcaster) *RideService {
	return &RideService{
		store:   store,
		pricing: pricing,
		events:  events,
		now:     pricing.Now,
	}
}

type CreateRideInput struct {
	RiderID         uint
	PickupLocation  string
	DropoffLocation string
	RideType        string
}

// RideRequestEvent is pushed to drivers when a ride is created.
type RideRequestEvent struct {
	RideID            uint            `json:"rideId"`
	PickupLocation    string          `json:"pickupLocation"`
	DropoffLocation   string          `json:"dropoffLocation"`
	Fare              *float64        `json:"fare"`
	RideType          models.RideType `json:"rideType"`
	Priority          string          `json:"priority"`
	EstimatedDuration *int            `json:"estimatedDuration"`
	RewardPoints      int             `json:"rewardPoints"`
	Timestamp         time.Time       `json:"timestamp"`
	Features          []string        `json:"features"`
	SurgeMultiplier   float64         `json:"surgeMultiplier"`
	CarbonOffset      float64         `json:"carbonOffset"`
}

// Create quotes the trip, stores a pending ride and announces it.
func (s *RideService) Create(ctx context.Context, in CreateRideInput) (*models.Ride, error) {
	if in.RiderID == 0 {
		return nil, invalid("Rider ID is required", utils.FieldError{Field: "riderId", Message: "is required"})
	}
	if strings.TrimSpace(in.PickupLocation) == "" || strings.TrimSpace(in.DropoffLocation) == "" {
		return nil, invalid("Pickup and dropoff locations are required")
	}
	if _, err := s.store.GetUser(ctx, in.RiderID); err != nil {
		if isNotFound(err) {
			return nil, invalid("Rider not found", utils.FieldError{Field: "riderId", Message: "does not reference a user"})
		}
		return nil, err
	}

	quote, err := s.pricing.Quote(ctx, in.PickupLocation, in.DropoffLocation, in.RideType)
	if err != nil {
		return nil, err
	}

	fare := quote.TotalFare
	distance := quote.Distance
	duration := quote.EstimatedDuration
	ride, err := s.store.CreateRide(ctx, models.Ride{
		RiderID:           in.RiderID,
		PickupLocation:    in.PickupLocation,
		DropoffLocation:   in.DropoffLocation,
		Status:            models.RideStatusPending,
		Fare:              &fare,
		Distance:          &distance,
		EstimatedDuration: &duration,
		RideType:          quote.RideType,
	})
	if err != nil {
		return nil, err
	}

	priority := RidePriority(ride.RideType)
	log.Printf("Ride created: id=%d type=%s priority=%s fare=%.2f distance=%.2fkm duration=%dmin",
		ride.ID, ride.RideType, priority, fare, distance, duration)

	s.events.Broadcast(Event{Type: EventRideRequest, Data: RideRequestEvent{
		RideID:            ride.ID,
		PickupLocation:    ride.PickupLocation,
		DropoffLocation:   ride.DropoffLocation,
		Fare:              ride.Fare,
		RideType:          ride.RideType,
		Priority:          priority,
		EstimatedDuration: ride.EstimatedDuration,
		RewardPoints:      quote.RewardPoints,
		Timestamp:         s.now(),
		Features:          quote.Features,
		SurgeMultiplier:   quote.SurgeInfo.Multiplier,
		CarbonOffset:      quote.CarbonOffset,
	}})

	return ride, nil
}

// Assign gives a pending ride to an existing driver.
func (s *RideService) Assign(ctx context.Context, rideID, driverID uint) (*models.Ride, error) {
	if driverID == 0 {
		return nil, invalid("driverId is required", utils.FieldError{Field: "driverId", Message: "is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ride, err := s.store.GetRide(ctx, rideID)
	if err != nil {
		return nil, wrapNotFound(err, "Ride")
	}
	driver, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return nil, wrapNotFound(err, "Driver")
	}
	if !models.CanTransition(ride.Status, models.RideStatusAccepted) {
		return nil, &TransitionError{From: ride.Status, To: models.RideStatusAccepted}
	}

	accepted := models.RideStatusAccepted
	updated, err := s.store.UpdateRide(ctx, rideID, models.RidePatch{DriverID: &driver.ID, Status: &accepted})
	if err != nil {
		return nil, wrapNotFound(err, "Ride")
	}

	s.announceStatus(updated, driver.UserID, "Driver assigned")
	return updated, nil
}

// SetStatus moves a ride along the state machine. Entering in_progress
// stamps startedAt; completing stamps completedAt, records the actual
// duration and credits the driver.
func (s *RideService) SetStatus(ctx context.Context, rideID uint, status string) (*models.Ride, error) {
	if strings.TrimSpace(status) == "" {
		return nil, invalid("status is required", utils.FieldError{Field: "status", Message: "is required"})
	}
	to := models.RideStatus(status)
	if !to.Valid() {
		return nil, invalid("Invalid ride status", utils.FieldError{Field: "status", Message: "must be one of: pending accepted in_progress completed cancelled"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ride, err := s.store.GetRide(ctx, rideID)
	if err != nil {
		return nil, wrapNotFound(err, "Ride")
	}
	if !models.CanTransition(ride.Status, to) {
		return nil, &TransitionError{From: ride.Status, To: to}
	}
	// accepted carries a driver, so only Assign may enter it.
	if to == models.RideStatusAccepted {
		return nil, invalid("Use the assign endpoint to accept a ride", utils.FieldError{Field: "driverId", Message: "is required to accept a ride"})
	}
	if ride.DriverID == nil && (to == models.RideStatusInProgress || to == models.RideStatusCompleted) {
		return nil, &TransitionError{From: ride.Status, To: to}
	}

	now := s.now()
	patch := models.RidePatch{Status: &to}
	switch to {
	case models.RideStatusInProgress:
		patch.StartedAt = &now
	case models.RideStatusCompleted:
		patch.CompletedAt = &now
		if ride.StartedAt != nil {
			minutes := int(math.Ceil(now.Sub(*ride.StartedAt).Minutes()))
			patch.ActualDuration = &minutes
		}
	}

	updated, err := s.store.UpdateRide(ctx, rideID, patch)
	if err != nil {
		return nil, wrapNotFound(err, "Ride")
	}

	if to == models.RideStatusCompleted {
		if err := s.creditDriver(ctx, updated); err != nil {
			log.Printf("Completion hook for ride %d failed: %v", updated.ID, err)
		}
	}

	s.announceStatus(updated, 0, "")
	return updated, nil
}

func (s *RideService) creditDriver(ctx context.Context, ride *models.Ride) error {
	if ride.DriverID == nil {
		return nil
	}
	driver, err := s.store.GetDriver(ctx, *ride.DriverID)
	if err != nil {
		return err
	}

	totalRides := driver.TotalRides + 1
	earnings := driver.Earnings
	if ride.Fare != nil {
		earnings = utils.Round2(earnings + *ride.Fare)
	}
	_, err = s.store.UpdateDriver(ctx, driver.ID, models.DriverPatch{TotalRides: &totalRides, Earnings: &earnings})
	return err
}

// Update is the unrestricted merge used for admin overrides. Only the
// enum values and the driver reference are checked.
func (s *RideService) Update(ctx context.Context, rideID uint, patch models.RidePatch) (*models.Ride, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalid("Invalid ride status", utils.FieldError{Field: "status", Message: "is not a known status"})
	}
	if patch.RideType != nil && !patch.RideType.Valid() {
		return nil, invalid("Invalid ride type", utils.FieldError{Field: "rideType", Message: "is not a known ride type"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.DriverID != nil {
		if _, err := s.store.GetDriver(ctx, *patch.DriverID); err != nil {
			return nil, wrapNotFound(err, "Driver")
		}
	}

	ride, err := s.store.UpdateRide(ctx, rideID, patch)
	if err != nil {
		return nil, wrapNotFound(err, "Ride")
	}

	s.events.Broadcast(Event{Type: EventRideUpdate, Data: ride})
	return ride, nil
}

func (s *RideService) announceStatus(ride *models.Ride, userID uint, message string) {
	s.events.Broadcast(Event{Type: EventRideStatus, Data: RideStatusEvent{
		RideID:        json.RawMessage(strconv.FormatUint(uint64(ride.ID), 10)),
		Status:        string(ride.Status),
		Timestamp:     s.now(),
		EstimatedTime: intJSON(ride.EstimatedDuration),
		Message:       message,
		UserID:        userID,
	}})
}

func intJSON(v *int) json.RawMessage {
	if v == nil {
		return nil
	}
	return json.RawMessage(strconv.Itoa(*v))
}

func (s *RideService) Get(ctx context.Context, id uint) (*models.Ride, error) {
	ride, err := s.store.GetRide(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "Ride")
	}
	return ride, nil
}

func (s *RideService) ListByRider(ctx context.Context, riderID uint) ([]models.Ride, error) {
	return s.store.ListRidesByRider(ctx, riderID)
}

func (s *RideService) ListByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	return s.store.ListRidesByDriver(ctx, driverID)
}

func (s *RideService) ListPending(ctx context.Context) ([]models.Ride, error) {
	return s.store.ListPendingRides(ctx)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
)

type rideFixture struct {
	store  *database.MemoryStore
	clock  *testClock
	events *recordingBroadcaster
	rides  *RideService
	rider  *models.User
	driver *models.Driver
}

func newRideFixture(t *testing.T) *rideFixture {
	t.Helper()
	store := database.NewMemoryStore()
	clock := newTestClock(noon)
	events := &recordingBroadcaster{}
	pricing := newTestPricing(store, clock, 0.5)
	_, driver := seedDriver(t, store)
	return &rideFixture{
		store:  store,
		clock:  clock,
		events: events,
		rides:  NewRideService(store, pricing, events),
		rider:  seedRider(t, store),
		driver: driver,
	}
}

func (f *rideFixture) create(t *testing.T, rideType string) *models.Ride {
	t.Helper()
	ride, err := f.rides.Create(context.Background(), CreateRideInput{
		RiderID:         f.rider.ID,
		PickupLocation:  "Westlands",
		DropoffLocation: "CBD",
		RideType:        rideType,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return ride
}

func TestCreateRideIsPending(t *testing.T) {
	f := newRideFixture(t)
	ride := f.create(t, "express")

	if ride.Status != models.RideStatusPending || ride.DriverID != nil {
		t.Fatalf("expected pending ride with no driver, got %+v", ride)
	}
	if ride.Fare == nil || *ride.Fare != 230 {
		t.Fatalf("expected fare 230 from the pricing engine, got %v", ride.Fare)
	}
	if ride.Distance == nil || *ride.Distance != 12 || ride.EstimatedDuration == nil || *ride.EstimatedDuration != 30 {
		t.Fatalf("unexpected distance/duration %v/%v", ride.Distance, ride.EstimatedDuration)
	}

	evt := f.events.last(t)
	if evt.Type != EventRideRequest {
		t.Fatalf("expected %s, got %s", EventRideRequest, evt.Type)
	}
	req, ok := evt.Data.(RideRequestEvent)
	if !ok {
		t.Fatalf("unexpected payload %T", evt.Data)
	}
	if req.RideID != ride.ID || req.Priority != "high" || req.RewardPoints != 23 {
		t.Fatalf("unexpected ride request %+v", req)
	}
}

func TestCreateRideValidation(t *testing.T) {
	f := newRideFixture(t)
	tests := []struct {
		name string
		in   CreateRideInput
	}{
		{"missing rider", CreateRideInput{PickupLocation: "A", DropoffLocation: "B"}},
		{"unknown rider", CreateRideInput{RiderID: 99, PickupLocation: "A", DropoffLocation: "B"}},
		{"missing pickup", CreateRideInput{RiderID: f.rider.ID, DropoffLocation: "B"}},
		{"missing dropoff", CreateRideInput{RiderID: f.rider.ID, PickupLocation: "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.rides.Create(context.Background(), tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if f.events.count() != 0 {
		t.Fatal("rejected rides must not be broadcast")
	}
}

func TestAssignRide(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)
	ride := f.create(t, "standard")

	assigned, err := f.rides.Assign(ctx, ride.ID, f.driver.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	fetched, _ := f.rides.Get(ctx, ride.ID)
	if fetched.Status != models.RideStatusAccepted || fetched.DriverID == nil || *fetched.DriverID != f.driver.ID {
		t.Fatalf("unexpected ride after assign %+v", fetched)
	}
	if assigned.Status != models.RideStatusAccepted {
		t.Fatalf("unexpected returned ride %+v", assigned)
	}
	if evt := f.events.last(t); evt.Type != EventRideStatus {
		t.Fatalf("expected status broadcast, got %s", evt.Type)
	}

	if _, err := f.rides.Assign(ctx, ride.ID, f.driver.ID); err == nil {
		t.Fatal("reassigning an accepted ride should fail")
	} else {
		var terr *TransitionError
		if !errors.As(err, &terr) || terr.From != models.RideStatusAccepted {
			t.Fatalf("expected TransitionError from accepted, got %v", err)
		}
	}
}

func TestAssignRideErrors(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)
	ride := f.create(t, "standard")

	if _, err := f.rides.Assign(ctx, 999, f.driver.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ride, got %v", err)
	} else if err.Error() != "Ride not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if _, err := f.rides.Assign(ctx, ride.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown driver, got %v", err)
	}
	var verr *ValidationError
	if _, err := f.rides.Assign(ctx, ride.ID, 0); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for missing driver, got %v", err)
	}

	fetched, _ := f.rides.Get(ctx, ride.ID)
	if fetched.Status != models.RideStatusPending || fetched.DriverID != nil {
		t.Fatalf("failed assigns must not change the ride: %+v", fetched)
	}
}

func TestRideLifecycleCompletion(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)
	ride := f.create(t, "standard")
	if _, err := f.rides.Assign(ctx, ride.ID, f.driver.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	started, err := f.rides.SetStatus(ctx, ride.ID, "in_progress")
	if err != nil {
		t.Fatalf("SetStatus in_progress: %v", err)
	}
	if started.StartedAt == nil || !started.StartedAt.Equal(noon) {
		t.Fatalf("expected startedAt stamped, got %v", started.StartedAt)
	}

	f.clock.Advance(17*time.Minute + 10*time.Second)
	done, err := f.rides.SetStatus(ctx, ride.ID, "completed")
	if err != nil {
		t.Fatalf("SetStatus completed: %v", err)
	}
	if done.CompletedAt == nil || done.ActualDuration == nil || *done.ActualDuration != 18 {
		t.Fatalf("expected completedAt and 18 minute duration, got %+v", done)
	}

	driver, _ := f.store.GetDriver(ctx, f.driver.ID)
	if driver.TotalRides != 1 || driver.Earnings != 194 {
		t.Fatalf("expected driver credited with one ride and 194, got %d rides %v", driver.TotalRides, driver.Earnings)
	}

	if _, err := f.rides.SetStatus(ctx, ride.ID, "pending"); err == nil {
		t.Fatal("completed -> pending should be rejected")
	}
}

func TestSetStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []string
		wantErr bool
	}{
		{"cancel pending", []string{"cancelled"}, false},
		{"skip to in_progress", []string{"in_progress"}, true},
		{"complete pending", []string{"completed"}, true},
		{"cancel twice", []string{"cancelled", "cancelled"}, true},
		{"revive cancelled", []string{"cancelled", "pending"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRideFixture(t)
			ride := f.create(t, "standard")
			var err error
			for _, status := range tt.path {
				if _, err = f.rides.SetStatus(context.Background(), ride.ID, status); err != nil {
					break
				}
			}
			var terr *TransitionError
			if tt.wantErr != errors.As(err, &terr) {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSetStatusNeverLeavesRideWithoutDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("accept requires assign", func(t *testing.T) {
		f := newRideFixture(t)
		ride := f.create(t, "standard")

		var verr *ValidationError
		if _, err := f.rides.SetStatus(ctx, ride.ID, "accepted"); !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		got, _ := f.rides.Get(ctx, ride.ID)
		if got.Status != models.RideStatusPending || got.DriverID != nil {
			t.Fatalf("ride changed: %+v", got)
		}
	})

	t.Run("start and complete need a driver", func(t *testing.T) {
		f := newRideFixture(t)
		ride := f.create(t, "standard")
		accepted := models.RideStatusAccepted
		if _, err := f.rides.Update(ctx, ride.ID, models.RidePatch{Status: &accepted}); err != nil {
			t.Fatalf("Update: %v", err)
		}

		var terr *TransitionError
		if _, err := f.rides.SetStatus(ctx, ride.ID, "in_progress"); !errors.As(err, &terr) {
			t.Fatalf("expected TransitionError, got %v", err)
		}
		if got, _ := f.rides.Get(ctx, ride.ID); got.Status != models.RideStatusAccepted {
			t.Fatalf("expected ride to stay accepted, got %s", got.Status)
		}
	})
}

func TestSetStatusValidation(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)
	ride := f.create(t, "standard")

	var verr *ValidationError
	if _, err := f.rides.SetStatus(ctx, ride.ID, ""); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty status, got %v", err)
	}
	if _, err := f.rides.SetStatus(ctx, ride.ID, "teleported"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown status, got %v", err)
	}
	if _, err := f.rides.SetStatus(ctx, 404, "cancelled"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelledPendingRideKeepsNoDriver(t *testing.T) {
	f := newRideFixture(t)
	ride := f.create(t, "shared")
	cancelled, err := f.rides.SetStatus(context.Background(), ride.ID, "cancelled")
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if cancelled.DriverID != nil {
		t.Fatalf("expected no driver, got %v", *cancelled.DriverID)
	}
	driver, _ := f.store.GetDriver(context.Background(), f.driver.ID)
	if driver.TotalRides != 0 {
		t.Fatal("cancellation must not credit a driver")
	}
}

func TestGenericUpdate(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)
	ride := f.create(t, "standard")

	coords := "-1.26,36.80"
	completed := models.RideStatusCompleted
	updated, err := f.rides.Update(ctx, ride.ID, models.RidePatch{PickupCoords: &coords, Status: &completed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != models.RideStatusCompleted || *updated.PickupCoords != coords || updated.PickupLocation != "Westlands" {
		t.Fatalf("unexpected merge %+v", updated)
	}
	evt := f.events.last(t)
	if evt.Type != EventRideUpdate {
		t.Fatalf("expected ride_update broadcast, got %s", evt.Type)
	}
	if r, ok := evt.Data.(*models.Ride); !ok || r.ID != ride.ID {
		t.Fatalf("expected full ride payload, got %T", evt.Data)
	}

	bogus := models.RideStatus("flying")
	var verr *ValidationError
	if _, err := f.rides.Update(ctx, ride.ID, models.RidePatch{Status: &bogus}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	missing := uint(77)
	if _, err := f.rides.Update(ctx, ride.ID, models.RidePatch{DriverID: &missing}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown driver, got %v", err)
	}
	if _, err := f.rides.Update(ctx, 555, models.RidePatch{PickupCoords: &coords}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ride, got %v", err)
	}
}

func TestRideQueries(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture(t)
	a := f.create(t, "standard")
	b := f.create(t, "premium")
	if _, err := f.rides.Assign(ctx, b.ID, f.driver.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	byRider, _ := f.rides.ListByRider(ctx, f.rider.ID)
	if len(byRider) != 2 {
		t.Fatalf("expected 2 rider rides, got %d", len(byRider))
	}
	byDriver, _ := f.rides.ListByDriver(ctx, f.driver.ID)
	if len(byDriver) != 1 || byDriver[0].ID != b.ID {
		t.Fatalf("unexpected driver rides %+v", byDriver)
	}
	pending, _ := f.rides.ListPending(ctx)
	if len(pending) != 1 || pending[0].ID != a.ID {
		t.Fatalf("unexpected pending rides %+v", pending)
	}
}

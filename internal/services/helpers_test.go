package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingBroadcaster) Broadcast(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingBroadcaster) last(t *testing.T) Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		t.Fatal("expected a broadcast, got none")
	}
	return r.events[len(r.events)-1]
}

func (r *recordingBroadcaster) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// noon UTC is outside every surge window
var noon = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

func newTestPricing(store database.Store, clock *testClock, sample float64) *PricingService {
	return NewPricingService(store,
		WithClock(clock.Now),
		WithDistanceSampler(func() float64 { return sample }),
		WithSurgeLocation(time.UTC),
	)
}

func seedRider(t *testing.T, store database.Store) *models.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), models.User{Username: "rider", Email: "rider@x.com", Password: "pw", FullName: "Rider"})
	if err != nil {
		t.Fatalf("seed rider: %v", err)
	}
	return u
}

func seedDriver(t *testing.T, store database.Store) (*models.User, *models.Driver) {
	t.Helper()
	ctx := context.Background()
	u, err := store.CreateUser(ctx, models.User{Username: "driver", Email: "driver@x.com", Password: "pw", FullName: "Driver", UserType: models.UserTypeDriver})
	if err != nil {
		t.Fatalf("seed driver user: %v", err)
	}
	d, err := store.CreateDriver(ctx, models.Driver{UserID: u.ID, LicenseNumber: "LIC-1", VehicleType: "sedan", VehicleModel: "Axio", VehiclePlate: "KAA 001A"})
	if err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	return u, d
}

package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/models"
)

// MemoryStore keeps everything in process maps. Methods return struct
// copies, and patches replace pointer fields rather than writing through
// them, so a stored value only changes under the lock.
type MemoryStore struct {
	mu sync.RWMutex

	users      map[uint]*models.User
	drivers    map[uint]*models.Driver
	rides      map[uint]*models.Ride
	businesses map[uint]*models.Business
	prices     map[uint]*models.PriceCalculation

	nextUser, nextDriver, nextRide, nextBusiness, nextPrice uint

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[uint]*models.User),
		drivers:    make(map[uint]*models.Driver),
		rides:      make(map[uint]*models.Ride),
		businesses: make(map[uint]*models.Business),
		prices:     make(map[uint]*models.PriceCalculation),
		now:        time.Now,
	}
}

// SetClock overrides the createdAt source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Users

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Email == email })
}

func (s *MemoryStore) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedKeys(s.users) {
		if u := s.users[id]; match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u.ID = s.nextUser
	u.CreatedAt = s.now()
	userDefaults(&u)
	s.users[u.ID] = &u
	cp := u
	return &cp, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(u)
	cp := *u
	return &cp, nil
}

// Drivers

func (s *MemoryStore) GetDriver(_ context.Context, id uint) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) GetDriverByUserID(_ context.Context, userID uint) (*models.Driver, error) {
	list := s.filterDrivers(func(d *models.Driver) bool { return d.UserID == userID })
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (s *MemoryStore) GetDriverByLicense(_ context.Context, license string) (*models.Driver, error) {
	list := s.filterDrivers(func(d *models.Driver) bool { return d.LicenseNumber == license })
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (s *MemoryStore) CreateDriver(_ context.Context, d models.Driver) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDriver++
	d.ID = s.nextDriver
	d.CreatedAt = s.now()
	d.User = nil
	driverDefaults(&d)
	s.drivers[d.ID] = &d
	cp := d
	return &cp, nil
}

func (s *MemoryStore) UpdateDriver(_ context.Context, id uint, patch models.DriverPatch) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(d)
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) ListDrivers(_ context.Context) ([]models.Driver, error) {
	return s.filterDrivers(func(*models.Driver) bool { return true }), nil
}

func (s *MemoryStore) ListOnlineDrivers(_ context.Context) ([]models.Driver, error) {
	return s.filterDrivers(func(d *models.Driver) bool { return d.IsOnline }), nil
}

func (s *MemoryStore) filterDrivers(match func(*models.Driver) bool) []models.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Driver{}
	for _, id := range sortedKeys(s.drivers) {
		if d := s.drivers[id]; match(d) {
			out = append(out, *d)
		}
	}
	return out
}

// Rides

func (s *MemoryStore) GetRide(_ context.Context, id uint) (*models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) CreateRide(_ context.Context, r models.Ride) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRide++
	r.ID = s.nextRide
	r.CreatedAt = s.now()
	rideDefaults(&r)
	s.rides[r.ID] = &r
	cp := r
	return &cp, nil
}

func (s *MemoryStore) UpdateRide(_ context.Context, id uint, patch models.RidePatch) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(r)
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) ListRides(_ context.Context) ([]models.Ride, error) {
	return s.filterRides(func(*models.Ride) bool { return true }), nil
}

func (s *MemoryStore) ListRidesByRider(_ context.Context, riderID uint) ([]models.Ride, error) {
	return s.filterRides(func(r *models.Ride) bool { return r.RiderID == riderID }), nil
}

func (s *MemoryStore) ListRidesByDriver(_ context.Context, driverID uint) ([]models.Ride, error) {
	return s.filterRides(func(r *models.Ride) bool { return r.DriverID != nil && *r.DriverID == driverID }), nil
}

func (s *MemoryStore) ListPendingRides(_ context.Context) ([]models.Ride, error) {
	return s.filterRides(func(r *models.Ride) bool { return r.Status == models.RideStatusPending }), nil
}

func (s *MemoryStore) filterRides(match func(*models.Ride) bool) []models.Ride {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Ride{}
	for _, id := range sortedKeys(s.rides) {
		if r := s.rides[id]; match(r) {
			out = append(out, *r)
		}
	}
	return out
}

// Businesses

func (s *MemoryStore) GetBusiness(_ context.Context, id uint) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) GetBusinessByEmail(_ context.Context, email string) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedKeys(s.businesses) {
		if b := s.businesses[id]; b.Email == email {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateBusiness(_ context.Context, b models.Business) (*models.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBusiness++
	b.ID = s.nextBusiness
	b.CreatedAt = s.now()
	businessDefaults(&b)
	s.businesses[b.ID] = &b
	cp := b
	return &cp, nil
}

func (s *MemoryStore) UpdateBusiness(_ context.Context, id uint, patch models.BusinessPatch) (*models.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(b)
	cp := *b
	return &cp, nil
}

// Price calculations

func (s *MemoryStore) CreatePriceCalculation(_ context.Context, pc models.PriceCalculation) (*models.PriceCalculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPrice++
	pc.ID = s.nextPrice
	if pc.CreatedAt.IsZero() {
		pc.CreatedAt = s.now()
	}
	priceDefaults(&pc)
	s.prices[pc.ID] = &pc
	cp := pc
	return &cp, nil
}

func (s *MemoryStore) FindPriceCalculation(_ context.Context, pickup, dropoff string, rideType models.RideType) (*models.PriceCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest *models.PriceCalculation
	for _, pc := range s.prices {
		if pc.PickupLocation != pickup || pc.DropoffLocation != dropoff || pc.RideType != rideType {
			continue
		}
		if newest == nil || pc.ID > newest.ID {
			newest = pc
		}
	}
	if newest == nil {
		return nil, ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func sortedKeys[T any](m map[uint]T) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

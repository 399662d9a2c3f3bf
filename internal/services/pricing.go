package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/pkg/utils"
)

const DefaultQuoteTTL = 5 * time.Minute

var rideFeatures = map[models.RideType][]string{
	models.RideTypeLuxury:   {"premium-vehicle", "vip-support", "champagne-service", "concierge"},
	models.RideTypePremium:  {"priority-pickup", "premium-vehicle", "enhanced-support"},
	models.RideTypeExpress:  {"priority-pickup", "fastest-route", "no-stops"},
	models.RideTypeStandard: {"real-time-tracking", "digital-receipt"},
	models.RideTypeShared:   {"cost-sharing", "eco-friendly", "social-matching"},
}

// RideFeatures returns a fresh copy of the capability list for t.
func RideFeatures(t models.RideType) []string {
	src, ok := rideFeatures[t]
	if !ok {
		src = rideFeatures[models.RideTypeStandard]
	}
	return append([]string(nil), src...)
}

// RidePriority ranks how urgently drivers should see a request.
func RidePriority(t models.RideType) string {
	switch t {
	case models.RideTypeLuxury, models.RideTypeExpress:
		return "high"
	case models.RideTypePremium:
		return "medium"
	case models.RideTypeShared:
		return "low"
	}
	return "normal"
}

type PricingService struct {
	store  database.Store
	ttl    time.Duration
	now    func() time.Time
	sample func() float64
	loc    *time.Location

	// serializes the miss-then-create path so one route is priced once per window
	mu sync.Mutex
}

type PricingOption func(*PricingService)

func WithQuoteTTL(ttl time.Duration) PricingOption {
	return func(s *PricingService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) PricingOption {
	return func(s *PricingService) { s.now = now }
}

// WithDistanceSampler replaces the [0,1) source behind the random trip length.
func WithDistanceSampler(sample func() float64) PricingOption {
	return func(s *PricingService) { s.sample = sample }
}

func WithSurgeLocation(loc *time.Location) PricingOption {
	return func(s *PricingService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewPricingService(store database.Store, opts ...PricingOption) *PricingService {
	s := &PricingService{
		store:  store,
		ttl:    DefaultQuoteTTL,
		now:    time.Now,
		sample: rand.Float64,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote returns a cached calculation for (pickup, dropoff, rideType)
// when one is younger than the TTL, otherwise prices and stores a new one.
// Unknown ride types are priced as standard.
func (s *PricingService) Quote(ctx context.Context, pickup, dropoff, rideType string) (*models.Quote, error) {
	var fields []utils.FieldError
	if strings.TrimSpace(pickup) == "" {
		fields = append(fields, utils.FieldError{Field: "pickupLocation", Message: "is required"})
	}
	if strings.TrimSpace(dropoff) == "" {
		fields = append(fields, utils.FieldError{Field: "dropoffLocation", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, invalid("Pickup and dropoff locations are required", fields...)
	}

	rt, _ := models.ParseRideType(rideType)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cached, err := s.store.FindPriceCalculation(ctx, pickup, dropoff, rt)
	switch {
	case err == nil && now.Sub(cached.CreatedAt) < s.ttl:
		return s.enrich(cached, now), nil
	case err != nil && !errors.Is(err, database.ErrNotFound):
		return nil, err
	}

	surge, _ := utils.SurgeMultiplier(now.In(s.loc))
	fare := utils.CalculateFare(utils.RandomDistance(s.sample()), string(rt), surge)

	pc, err := s.store.CreatePriceCalculation(ctx, models.PriceCalculation{
		PickupLocation:  pickup,
		DropoffLocation: dropoff,
		Distance:        fare.Distance,
		BaseFare:        fare.BaseFare,
		PerKmRate:       fare.PerKmRate,
		TotalFare:       fare.TotalFare,
		RideType:        rt,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}
	return s.enrich(pc, now), nil
}

func (s *PricingService) enrich(pc *models.PriceCalculation, now time.Time) *models.Quote {
	q := &models.Quote{
		PriceCalculation:  *pc,
		EstimatedDuration: utils.EstimatedDuration(pc.Distance),
		Features:          RideFeatures(pc.RideType),
		SurgeInfo:         s.surgeAt(now),
		CarbonOffset:      utils.CarbonOffset(pc.Distance),
		RewardPoints:      utils.RewardPoints(pc.TotalFare),
	}
	if q.EstimatedDuration > 0 {
		eta := now.Add(time.Duration(q.EstimatedDuration) * time.Minute)
		q.EstimatedArrival = &eta
	}
	return q
}

// Surge reports the multiplier in effect right now.
func (s *PricingService) Surge() models.SurgeInfo {
	return s.surgeAt(s.now())
}

func (s *PricingService) surgeAt(t time.Time) models.SurgeInfo {
	m, reason := utils.SurgeMultiplier(t.In(s.loc))
	return models.SurgeInfo{IsActive: m > 1, Multiplier: m, Reason: reason}
}

func (s *PricingService) Now() time.Time {
	return s.now()
}

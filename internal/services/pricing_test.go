package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
)

func TestQuoteRateTable(t *testing.T) {
	tests := []struct {
		rideType string
		wantType models.RideType
		wantRate float64
		wantFare float64
	}{
		{"standard", models.RideTypeStandard, 12, 194},
		{"premium", models.RideTypePremium, 20, 290},
		{"luxury", models.RideTypeLuxury, 35, 470},
		{"shared", models.RideTypeShared, 8, 146},
		{"express", models.RideTypeExpress, 15, 230},
		{"hovercraft", models.RideTypeStandard, 12, 194},
		{"", models.RideTypeStandard, 12, 194},
	}
	for _, tt := range tests {
		t.Run(tt.rideType, func(t *testing.T) {
			// sample 0.5 gives a 12 km trip
			p := newTestPricing(database.NewMemoryStore(), newTestClock(noon), 0.5)
			q, err := p.Quote(context.Background(), "A", "B", tt.rideType)
			if err != nil {
				t.Fatalf("Quote: %v", err)
			}
			if q.RideType != tt.wantType {
				t.Fatalf("expected ride type %s, got %s", tt.wantType, q.RideType)
			}
			if q.PerKmRate != tt.wantRate {
				t.Fatalf("expected rate %v, got %v", tt.wantRate, q.PerKmRate)
			}
			if q.Distance != 12 || q.BaseFare != 50 {
				t.Fatalf("unexpected distance/base %v/%v", q.Distance, q.BaseFare)
			}
			if q.TotalFare != tt.wantFare {
				t.Fatalf("expected fare %v, got %v", tt.wantFare, q.TotalFare)
			}
		})
	}
}

func TestQuoteAppliesSurge(t *testing.T) {
	tests := []struct {
		name   string
		at     time.Time
		mult   float64
		fare   float64
		active bool
	}{
		{"morning rush", time.Date(2024, 6, 3, 8, 15, 0, 0, time.UTC), 1.5, 291, true},
		{"late night", time.Date(2024, 6, 3, 23, 30, 0, 0, time.UTC), 1.3, 252.2, true},
		{"midday", noon, 1.0, 194, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPricing(database.NewMemoryStore(), newTestClock(tt.at), 0.5)
			q, err := p.Quote(context.Background(), "A", "B", "standard")
			if err != nil {
				t.Fatalf("Quote: %v", err)
			}
			if q.TotalFare != tt.fare {
				t.Fatalf("expected fare %v, got %v", tt.fare, q.TotalFare)
			}
			if q.SurgeInfo.IsActive != tt.active || q.SurgeInfo.Multiplier != tt.mult {
				t.Fatalf("unexpected surge info %+v", q.SurgeInfo)
			}
			if tt.active && q.SurgeInfo.Reason == "" {
				t.Fatal("expected a surge reason")
			}
		})
	}
}

func TestQuoteCacheWindow(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	clock := newTestClock(noon)
	sample := 0.5
	p := NewPricingService(store,
		WithClock(clock.Now),
		WithDistanceSampler(func() float64 { return sample }),
		WithSurgeLocation(time.UTC),
	)

	first, err := p.Quote(ctx, "A", "B", "standard")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	sample = 0.25
	clock.Advance(4*time.Minute + 59*time.Second)
	hit, _ := p.Quote(ctx, "A", "B", "standard")
	if hit.ID != first.ID || hit.TotalFare != first.TotalFare || hit.Distance != first.Distance {
		t.Fatalf("expected cache hit, got %+v vs %+v", hit.PriceCalculation, first.PriceCalculation)
	}

	clock.Advance(time.Second)
	miss, _ := p.Quote(ctx, "A", "B", "standard")
	if miss.ID == first.ID {
		t.Fatal("expected a recomputed quote after the window")
	}
	if miss.Distance != 7 {
		t.Fatalf("expected recomputed distance 7, got %v", miss.Distance)
	}
}

func TestQuoteCacheKeyedByRideType(t *testing.T) {
	ctx := context.Background()
	p := newTestPricing(database.NewMemoryStore(), newTestClock(noon), 0.5)

	standard, _ := p.Quote(ctx, "A", "B", "standard")
	luxury, _ := p.Quote(ctx, "A", "B", "luxury")
	if standard.ID == luxury.ID {
		t.Fatal("luxury quote was served from the standard cache entry")
	}
	if luxury.PerKmRate != 35 {
		t.Fatalf("expected luxury rate, got %v", luxury.PerKmRate)
	}

	again, _ := p.Quote(ctx, "A", "B", "unknown")
	if again.ID != standard.ID {
		t.Fatal("unknown ride type should share the standard cache entry")
	}
}

func TestQuoteEnrichment(t *testing.T) {
	p := newTestPricing(database.NewMemoryStore(), newTestClock(noon), 0.5)
	q, err := p.Quote(context.Background(), "A", "B", "luxury")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if q.EstimatedDuration != 30 {
		t.Fatalf("expected 30 minutes, got %d", q.EstimatedDuration)
	}
	if q.EstimatedArrival == nil || !q.EstimatedArrival.Equal(noon.Add(30*time.Minute)) {
		t.Fatalf("unexpected arrival %v", q.EstimatedArrival)
	}
	if q.CarbonOffset != 1.44 {
		t.Fatalf("expected 1.44 kg, got %v", q.CarbonOffset)
	}
	if q.RewardPoints != 47 {
		t.Fatalf("expected 47 points, got %d", q.RewardPoints)
	}
	found := false
	for _, f := range q.Features {
		if f == "vip-support" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected vip-support in %v", q.Features)
	}
}

func TestQuoteValidation(t *testing.T) {
	p := newTestPricing(database.NewMemoryStore(), newTestClock(noon), 0.5)
	tests := []struct {
		name, pickup, dropoff string
		fields                int
	}{
		{"missing pickup", "", "B", 1},
		{"missing dropoff", "A", " ", 1},
		{"missing both", "", "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Quote(context.Background(), tt.pickup, tt.dropoff, "standard")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != tt.fields {
				t.Fatalf("expected %d field errors, got %+v", tt.fields, verr.Fields)
			}
		})
	}
}

func TestRideFeaturesReturnsCopy(t *testing.T) {
	f := RideFeatures(models.RideTypeShared)
	f[0] = "mutated"
	if RideFeatures(models.RideTypeShared)[0] != "cost-sharing" {
		t.Fatal("feature table was mutated through a returned slice")
	}
	if got := RideFeatures("rider"); len(got) != 2 || got[0] != "real-time-tracking" {
		t.Fatalf("unknown types should get standard features, got %v", got)
	}
}

func TestRidePriority(t *testing.T) {
	tests := map[models.RideType]string{
		models.RideTypeLuxury:   "high",
		models.RideTypeExpress:  "high",
		models.RideTypePremium:  "medium",
		models.RideTypeStandard: "normal",
		models.RideTypeShared:   "low",
	}
	for rt, want := range tests {
		if got := RidePriority(rt); got != want {
			t.Errorf("RidePriority(%s) = %s, want %s", rt, got, want)
		}
	}
}

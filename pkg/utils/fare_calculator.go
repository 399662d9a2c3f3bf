package utils

import (
	"math"
	"time"
)

// FareCalculationResult contains the calculated fare and breakdown
type FareCalculationResult struct {
	TotalFare       float64 `json:"totalFare"`
	Distance        float64 `json:"distance"`
	BaseFare        float64 `json:"baseFare"`
	PerKmRate       float64 `json:"perKmRate"`
	SurgeMultiplier float64 `json:"surgeMultiplier"`
}

const (
	BaseFare = 50.0

	// Rates per km
	StandardRatePerKm = 12.0
	PremiumRatePerKm  = 20.0
	LuxuryRatePerKm   = 35.0
	SharedRatePerKm   = 8.0
	ExpressRatePerKm  = 15.0

	RushHourMultiplier  = 1.5
	LateNightMultiplier = 1.3

	MinDistanceKm  = 2.0
	DistanceSpanKm = 20.0

	MinutesPerKm      = 2.5
	CarbonKgPerKm     = 0.12
	RewardPointsRatio = 0.1
)

const (
	RushHourReason  = "High demand during rush hour"
	LateNightReason = "Late night premium service"
)

var ratesPerKm = map[string]float64{
	"standard": StandardRatePerKm,
	"premium":  PremiumRatePerKm,
	"luxury":   LuxuryRatePerKm,
	"shared":   SharedRatePerKm,
	"express":  ExpressRatePerKm,
}

// RatePerKm returns the per-km rate for a ride type. Unknown types are
// charged the standard rate.
func RatePerKm(rideType string) float64 {
	if rate, ok := ratesPerKm[rideType]; ok {
		return rate
	}
	return StandardRatePerKm
}

// SurgeMultiplier applies the rush hour and late night windows to the
// wall clock hour of t.
func SurgeMultiplier(t time.Time) (float64, string) {
	hour := t.Hour()

	isMorningRush := hour >= 7 && hour <= 9
	isEveningRush := hour >= 17 && hour <= 19
	if isMorningRush || isEveningRush {
		return RushHourMultiplier, RushHourReason
	}

	if hour >= 23 || hour <= 5 {
		return LateNightMultiplier, LateNightReason
	}

	return 1.0, ""
}

// RandomDistance maps a sample in [0,1) to a trip length in [2,22) km.
func RandomDistance(sample float64) float64 {
	return sample*DistanceSpanKm + MinDistanceKm
}

// CalculateFare prices a trip. The distance is rounded first and the
// fare is computed from the rounded value.
func CalculateFare(distance float64, rideType string, surge float64) FareCalculationResult {
	distance = Round2(distance)
	rate := RatePerKm(rideType)
	total := (BaseFare + distance*rate) * surge

	return FareCalculationResult{
		TotalFare:       Round2(total),
		Distance:        distance,
		BaseFare:        BaseFare,
		PerKmRate:       rate,
		SurgeMultiplier: surge,
	}
}

// EstimatedDuration is the trip time in whole minutes, rounded up.
func EstimatedDuration(distance float64) int {
	return int(math.Ceil(distance * MinutesPerKm))
}

func CarbonOffset(distance float64) float64 {
	return Round2(distance * CarbonKgPerKm)
}

func RewardPoints(fare float64) int {
	return int(math.Floor(fare * RewardPointsRatio))
}

// Round2 rounds to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

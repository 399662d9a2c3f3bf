package services

import (
	"context"
	"log"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/pkg/utils"
	"github.com/google/uuid"
)

type RideTypeInfo struct {
	ID          models.RideType `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Features    []string        `json:"features"`
	Rate        float64         `json:"rate"`
	Icon        string          `json:"icon"`
	ETA         string          `json:"eta"`
}

var rideTypeCatalog = []struct {
	id                    models.RideType
	name, desc, icon, eta string
}{
	{models.RideTypeStandard, "Standard", "Affordable rides for everyday use", "🚗", "5-10 min"},
	{models.RideTypePremium, "Premium", "High-quality vehicles with enhanced comfort", "🚙", "3-8 min"},
	{models.RideTypeLuxury, "Luxury", "Premium vehicles with VIP treatment", "🏎️", "2-5 min"},
	{models.RideTypeShared, "Shared", "Eco-friendly shared rides", "🌱", "8-15 min"},
	{models.RideTypeExpress, "Express", "Fastest route with no stops", "⚡", "2-6 min"},
}

type SurgeReport struct {
	models.SurgeInfo
	EstimatedDuration string    `json:"estimatedDuration"`
	Timestamp         time.Time `json:"timestamp"`
}

type Analytics struct {
	TotalRides           int       `json:"totalRides"`
	ActiveDrivers        int       `json:"activeDrivers"`
	AverageRating        float64   `json:"averageRating"`
	CompletionRate       float64   `json:"completionRate"`
	CustomerSatisfaction float64   `json:"customerSatisfaction"`
	CarbonOffsetKg       float64   `json:"carbonOffsetKg"`
	Timestamp            time.Time `json:"timestamp"`
}

type FeedbackInput struct {
	RideID  *uint
	Rating  *int
	Comment string
	UserID  *uint
}

// PremiumService serves the read-only premium endpoints and feedback.
type PremiumService struct {
	store   database.Store
	pricing *PricingService
	archive FeedbackArchive
	events  Broadcaster
}

func NewPremiumService(store database.Store, pricing *PricingService, archive FeedbackArchive, events Broadcaster) *PremiumService {
	return &PremiumService{store: store, pricing: pricing, archive: archive, events: events}
}

func (s *PremiumService) SurgeInfo() SurgeReport {
	info := s.pricing.Surge()
	wait := "5-15 minutes"
	if info.IsActive {
		wait = "15-30 minutes"
	}
	return SurgeReport{SurgeInfo: info, EstimatedDuration: wait, Timestamp: s.pricing.Now()}
}

func (s *PremiumService) RideTypes() []RideTypeInfo {
	out := make([]RideTypeInfo, 0, len(rideTypeCatalog))
	for _, rt := range rideTypeCatalog {
		out = append(out, RideTypeInfo{
			ID:          rt.id,
			Name:        rt.name,
			Description: rt.desc,
			Features:    RideFeatures(rt.id),
			Rate:        utils.RatePerKm(string(rt.id)),
			Icon:        rt.icon,
			ETA:         rt.eta,
		})
	}
	return out
}

// Analytics summarizes the store. Rates are percentages.
func (s *PremiumService) Analytics(ctx context.Context) (*Analytics, error) {
	rides, err := s.store.ListRides(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := s.store.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}

	a := &Analytics{TotalRides: len(rides), Timestamp: s.pricing.Now()}

	var ratingSum float64
	for _, d := range drivers {
		ratingSum += d.Rating
		if d.IsOnline {
			a.ActiveDrivers++
		}
	}
	if len(drivers) > 0 {
		a.AverageRating = utils.Round2(ratingSum / float64(len(drivers)))
		a.CustomerSatisfaction = utils.Round2(a.AverageRating / models.DefaultDriverRating * 100)
	}

	var completed, closed int
	var carbon float64
	for _, r := range rides {
		if !r.Status.Terminal() {
			continue
		}
		closed++
		if r.Status == models.RideStatusCompleted {
			completed++
			if r.Distance != nil {
				carbon += utils.CarbonOffset(*r.Distance)
			}
		}
	}
	if closed > 0 {
		a.CompletionRate = utils.Round2(float64(completed) / float64(closed) * 100)
	}
	a.CarbonOffsetKg = utils.Round2(carbon)

	return a, nil
}

// SubmitFeedback records, archives and announces a rider's feedback.
func (s *PremiumService) SubmitFeedback(ctx context.Context, in FeedbackInput) (*models.Feedback, error) {
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, invalid("Validation error", utils.FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}

	fb := models.Feedback{
		ID:        uuid.NewString(),
		RideID:    in.RideID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		UserID:    in.UserID,
		Timestamp: s.pricing.Now(),
		Status:    "processed",
	}

	location, err := s.archive.Save(ctx, fb)
	if err != nil {
		return nil, err
	}
	log.Printf("Feedback %s received for ride %v, archived at %s", fb.ID, derefUint(fb.RideID), location)

	s.events.Broadcast(Event{Type: EventFeedbackReceived, Data: fb})
	return &fb, nil
}

func derefUint(v *uint) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}

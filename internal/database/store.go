package database

import (
	"context"
	"errors"

	"github.com/chachabrian/rideflow-backend/internal/models"
)

// ErrNotFound is returned for any lookup or update of an absent entity.
var ErrNotFound = errors.New("not found")

// Store owns every entity. Create assigns ids and defaults; Update
// merges a patch and reports ErrNotFound for unknown ids. Nothing is
// ever deleted.
type Store interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error)

	GetDriver(ctx context.Context, id uint) (*models.Driver, error)
	GetDriverByUserID(ctx context.Context, userID uint) (*models.Driver, error)
	GetDriverByLicense(ctx context.Context, license string) (*models.Driver, error)
	CreateDriver(ctx context.Context, d models.Driver) (*models.Driver, error)
	UpdateDriver(ctx context.Context, id uint, patch models.DriverPatch) (*models.Driver, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	ListOnlineDrivers(ctx context.Context) ([]models.Driver, error)

	GetRide(ctx context.Context, id uint) (*models.Ride, error)
	CreateRide(ctx context.Context, r models.Ride) (*models.Ride, error)
	UpdateRide(ctx context.Context, id uint, patch models.RidePatch) (*models.Ride, error)
	ListRides(ctx context.Context) ([]models.Ride, error)
	ListRidesByRider(ctx context.Context, riderID uint) ([]models.Ride, error)
	ListRidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error)
	ListPendingRides(ctx context.Context) ([]models.Ride, error)

	GetBusiness(ctx context.Context, id uint) (*models.Business, error)
	GetBusinessByEmail(ctx context.Context, email string) (*models.Business, error)
	CreateBusiness(ctx context.Context, b models.Business) (*models.Business, error)
	UpdateBusiness(ctx context.Context, id uint, patch models.BusinessPatch) (*models.Business, error)

	CreatePriceCalculation(ctx context.Context, pc models.PriceCalculation) (*models.PriceCalculation, error)
	// FindPriceCalculation returns the newest entry for the route and
	// ride type regardless of age.
	FindPriceCalculation(ctx context.Context, pickup, dropoff string, rideType models.RideType) (*models.PriceCalculation, error)
}

// Defaults applied on create by every Store implementation.

func userDefaults(u *models.User) {
	if u.UserType == "" {
		u.UserType = models.UserTypeRider
	}
	u.IsActive = true
}

func driverDefaults(d *models.Driver) {
	if d.Rating == 0 {
		d.Rating = models.DefaultDriverRating
	}
}

func rideDefaults(r *models.Ride) {
	if r.Status == "" {
		r.Status = models.RideStatusPending
	}
	if r.RideType == "" {
		r.RideType = models.RideTypeStandard
	}
}

func businessDefaults(b *models.Business) {
	b.IsActive = true
}

func priceDefaults(pc *models.PriceCalculation) {
	if pc.RideType == "" {
		pc.RideType = models.RideTypeStandard
	}
}

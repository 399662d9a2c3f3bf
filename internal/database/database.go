package database

import (
	"context"
	"errors"

	"github.com/chachabrian/rideflow-backend/internal/config"
	"github.com/chachabrian/rideflow-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func first[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	q := db.WithContext(ctx)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Order("id desc").First(&out).Error; err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func byID[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var out T
	if err := db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func list[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) ([]T, error) {
	out := []T{}
	q := db.WithContext(ctx)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// update loads the row, applies the patch and saves it inside one
// transaction so both stores merge identically.
func update[T any](ctx context.Context, db *gorm.DB, id uint, apply func(*T)) (*T, error) {
	var out T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, id).Error; err != nil {
			return notFound(err)
		}
		apply(&out)
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func create[T any](ctx context.Context, db *gorm.DB, v *T) (*T, error) {
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return byID[models.User](ctx, s.db, id)
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](ctx, s.db, "username = ?", username)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, s.db, "email = ?", email)
}

func (s *GormStore) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	u.ID = 0
	userDefaults(&u)
	return create(ctx, s.db, &u)
}

func (s *GormStore) UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	return update(ctx, s.db, id, patch.Apply)
}

func (s *GormStore) GetDriver(ctx context.Context, id uint) (*models.Driver, error) {
	return byID[models.Driver](ctx, s.db, id)
}

func (s *GormStore) GetDriverByUserID(ctx context.Context, userID uint) (*models.Driver, error) {
	return first[models.Driver](ctx, s.db, "user_id = ?", userID)
}

func (s *GormStore) GetDriverByLicense(ctx context.Context, license string) (*models.Driver, error) {
	return first[models.Driver](ctx, s.db, "license_number = ?", license)
}

func (s *GormStore) CreateDriver(ctx context.Context, d models.Driver) (*models.Driver, error) {
	d.ID = 0
	d.User = nil
	driverDefaults(&d)
	return create(ctx, s.db, &d)
}

func (s *GormStore) UpdateDriver(ctx context.Context, id uint, patch models.DriverPatch) (*models.Driver, error) {
	return update(ctx, s.db, id, patch.Apply)
}

func (s *GormStore) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	return list[models.Driver](ctx, s.db, "")
}

func (s *GormStore) ListOnlineDrivers(ctx context.Context) ([]models.Driver, error) {
	return list[models.Driver](ctx, s.db, "is_online = ?", true)
}

func (s *GormStore) GetRide(ctx context.Context, id uint) (*models.Ride, error) {
	return byID[models.Ride](ctx, s.db, id)
}

func (s *GormStore) CreateRide(ctx context.Context, r models.Ride) (*models.Ride, error) {
	r.ID = 0
	rideDefaults(&r)
	return create(ctx, s.db, &r)
}

func (s *GormStore) UpdateRide(ctx context.Context, id uint, patch models.RidePatch) (*models.Ride, error) {
	return update(ctx, s.db, id, patch.Apply)
}

func (s *GormStore) ListRides(ctx context.Context) ([]models.Ride, error) {
	return list[models.Ride](ctx, s.db, "")
}

func (s *GormStore) ListRidesByRider(ctx context.Context, riderID uint) ([]models.Ride, error) {
	return list[models.Ride](ctx, s.db, "rider_id = ?", riderID)
}

func (s *GormStore) ListRidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	return list[models.Ride](ctx, s.db, "driver_id = ?", driverID)
}

func (s *GormStore) ListPendingRides(ctx context.Context) ([]models.Ride, error) {
	return list[models.Ride](ctx, s.db, "status = ?", models.RideStatusPending)
}

func (s *GormStore) GetBusiness(ctx context.Context, id uint) (*models.Business, error) {
	return byID[models.Business](ctx, s.db, id)
}

func (s *GormStore) GetBusinessByEmail(ctx context.Context, email string) (*models.Business, error) {
	return first[models.Business](ctx, s.db, "email = ?", email)
}

func (s *GormStore) CreateBusiness(ctx context.Context, b models.Business) (*models.Business, error) {
	b.ID = 0
	businessDefaults(&b)
	return create(ctx, s.db, &b)
}

func (s *GormStore) UpdateBusiness(ctx context.Context, id uint, patch models.BusinessPatch) (*models.Business, error) {
	return update(ctx, s.db, id, patch.Apply)
}

func (s *GormStore) CreatePriceCalculation(ctx context.Context, pc models.PriceCalculation) (*models.PriceCalculation, error) {
	pc.ID = 0
	priceDefaults(&pc)
	return create(ctx, s.db, &pc)
}

func (s *GormStore) FindPriceCalculation(ctx context.Context, pickup, dropoff string, rideType models.RideType) (*models.PriceCalculation, error) {
	return first[models.PriceCalculation](ctx, s.db,
		"pickup_location = ? AND dropoff_location = ? AND ride_type = ?", pickup, dropoff, rideType)
}

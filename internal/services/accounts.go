package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/pkg/utils"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountService covers users, driver profiles and businesses.
type AccountService struct {
	store     database.Store
	passwords utils.PasswordPolicy
	jwtSecret string
	locations LocationCache

	// serializes uniqueness checks with the create that follows
	mu sync.Mutex
}

func NewAccountService(store database.Store, passwords utils.PasswordPolicy, jwtSecret string) *AccountService {
	return &AccountService{store: store, passwords: passwords, jwtSecret: jwtSecret}
}

// LocationCache holds the freshest known driver positions, ahead of the store.
type LocationCache interface {
	GetDriverLocation(ctx context.Context, driverID uint) (*DriverLocationEvent, error)
}

// UseLocationCache makes DriverLocation consult cache before the store.
func (s *AccountService) UseLocationCache(cache LocationCache) {
	s.locations = cache
}

type RegisterUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    *string
	UserType models.UserType
}

func (s *AccountService) RegisterUser(ctx context.Context, in RegisterUserInput) (*models.User, error) {
	if in.UserType != "" && !in.UserType.Valid() {
		return nil, invalid("Validation error", utils.FieldError{Field: "userType", Message: "must be one of: rider driver admin"})
	}
	if strings.TrimSpace(in.Username) == "" {
		in.Username = in.Email
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUserUnique(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}
	return s.createUser(ctx, in)
}

func (s *AccountService) checkUserUnique(ctx context.Context, email, username string) error {
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return conflict("User already exists with this email")
	} else if !isNotFound(err) {
		return err
	}
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return conflict("User already exists with this username")
	} else if !isNotFound(err) {
		return err
	}
	return nil
}

func (s *AccountService) createUser(ctx context.Context, in RegisterUserInput) (*models.User, error) {
	sealed, err := s.passwords.Seal(in.Password)
	if err != nil {
		return nil, err
	}
	return s.store.CreateUser(ctx, models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: sealed,
		FullName: in.FullName,
		Phone:    in.Phone,
		UserType: in.UserType,
	})
}

// Login checks the credentials and issues a token for the user.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !s.passwords.Matches(user.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AccountService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "User")
	}
	return user, nil
}

func (s *AccountService) UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error) {
	if patch.UserType != nil && !patch.UserType.Valid() {
		return nil, invalid("Validation error", utils.FieldError{Field: "userType", Message: "must be one of: rider driver admin"})
	}
	if patch.Password != nil {
		sealed, err := s.passwords.Seal(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &sealed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Username != nil {
		existing, err := s.store.GetUserByUsername(ctx, *patch.Username)
		switch {
		case err == nil && existing.ID != id:
			return nil, conflict("User already exists with this username")
		case err != nil && !isNotFound(err):
			return nil, err
		}
	}

	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, wrapNotFound(err, "User")
	}
	return user, nil
}

type RegisterDriverInput struct {
	FullName      string
	Email         string
	Phone         string
	Password      string
	LicenseNumber string
	VehicleType   string
	VehicleModel  string
	VehiclePlate  string
}

// RegisterDriver creates the driver's user account and vehicle profile.
func (s *AccountService) RegisterDriver(ctx context.Context, in RegisterDriverInput) (*models.User, *models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetDriverByLicense(ctx, in.LicenseNumber); err == nil {
		return nil, nil, conflict("Driver with this license already exists")
	} else if !isNotFound(err) {
		return nil, nil, err
	}
	if err := s.checkUserUnique(ctx, in.Email, in.Email); err != nil {
		return nil, nil, err
	}

	phone := in.Phone
	user, err := s.createUser(ctx, RegisterUserInput{
		Username: in.Email,
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
		Phone:    &phone,
		UserType: models.UserTypeDriver,
	})
	if err != nil {
		return nil, nil, err
	}

	driver, err := s.store.CreateDriver(ctx, models.Driver{
		UserID:        user.ID,
		LicenseNumber: in.LicenseNumber,
		VehicleType:   in.VehicleType,
		VehicleModel:  in.VehicleModel,
		VehiclePlate:  in.VehiclePlate,
	})
	if err != nil {
		return nil, nil, err
	}
	return user, driver, nil
}

func (s *AccountService) GetDriver(ctx context.Context, id uint) (*models.Driver, error) {
	driver, err := s.store.GetDriver(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "Driver")
	}
	return driver, nil
}

func (s *AccountService) ListOnlineDrivers(ctx context.Context) ([]models.Driver, error) {
	return s.store.ListOnlineDrivers(ctx)
}

func (s *AccountService) SetDriverOnline(ctx context.Context, id uint, online bool) (*models.Driver, error) {
	driver, err := s.store.UpdateDriver(ctx, id, models.DriverPatch{IsOnline: &online})
	if err != nil {
		return nil, wrapNotFound(err, "Driver")
	}
	return driver, nil
}

func (s *AccountService) DriverLocation(ctx context.Context, id uint) (*string, error) {
	driver, err := s.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.locations != nil {
		loc, err := s.locations.GetDriverLocation(ctx, driver.ID)
		if err == nil && len(loc.Location) > 0 {
			text := locationText(loc.Location)
			return &text, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("Location cache read for driver %d failed: %v", driver.ID, err)
		}
	}
	return driver.CurrentLocation, nil
}

type RegisterBusinessInput struct {
	Name          string
	Email         string
	Phone         *string
	Address       *string
	ContactPerson string
}

func (s *AccountService) RegisterBusiness(ctx context.Context, in RegisterBusinessInput) (*models.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetBusinessByEmail(ctx, in.Email); err == nil {
		return nil, conflict("Business already exists with this email")
	} else if !isNotFound(err) {
		return nil, err
	}

	return s.store.CreateBusiness(ctx, models.Business{
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		ContactPerson: in.ContactPerson,
	})
}

func (s *AccountService) GetBusiness(ctx context.Context, id uint) (*models.Business, error) {
	business, err := s.store.GetBusiness(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "Business")
	}
	return business, nil
}

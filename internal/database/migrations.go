package database

import (
	"github.com/chachabrian/rideflow-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Driver{},
		&models.Ride{},
		&models.Business{},
		&models.PriceCalculation{},
	)
	if err != nil {
		return err
	}

	constraints := []struct {
		table, name, check string
	}{
		{"users", "users_user_type_check", "user_type IN ('rider', 'driver', 'admin')"},
		{"rides", "rides_status_check", "status IN ('pending', 'accepted', 'in_progress', 'completed', 'cancelled')"},
		{"rides", "rides_ride_type_check", "ride_type IN ('standard', 'premium', 'luxury', 'shared', 'express')"},
	}
	for _, c := range constraints {
		if err := db.Exec("ALTER TABLE " + c.table + " DROP CONSTRAINT IF EXISTS " + c.name).Error; err != nil {
			return err
		}
		if err := db.Exec("ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK (" + c.check + ")").Error; err != nil {
			return err
		}
	}

	return nil
}

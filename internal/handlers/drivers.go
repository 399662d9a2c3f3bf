package handlers

import (
	"net/http"

	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type DriverSignupInput struct {
	FullName      string `json:"fullName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required,min=10"`
	Password      string `json:"password" binding:"required,min=6"`
	LicenseNumber string `json:"licenseNumber" binding:"required"`
	VehicleType   string `json:"vehicleType" binding:"required"`
	VehicleModel  string `json:"vehicleModel" binding:"required"`
	VehiclePlate  string `json:"vehiclePlate" binding:"required"`
}

func RegisterDriver(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input DriverSignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, driver, err := accounts.RegisterDriver(c.Request.Context(), services.RegisterDriverInput{
			FullName:      input.FullName,
			Email:         input.Email,
			Phone:         input.Phone,
			Password:      input.Password,
			LicenseNumber: input.LicenseNumber,
			VehicleType:   input.VehicleType,
			VehicleModel:  input.VehicleModel,
			VehiclePlate:  input.VehiclePlate,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"user": user, "driver": driver})
	}
}

func GetDriver(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		driver, err := accounts.GetDriver(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, driver)
	}
}

func GetOnlineDrivers(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		drivers, err := accounts.ListOnlineDrivers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, drivers)
	}
}

func UpdateDriverStatus(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input struct {
			IsOnline *bool `json:"isOnline" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		driver, err := accounts.SetDriverOnline(c.Request.Context(), id, *input.IsOnline)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, driver)
	}
}

func GetDriverLocation(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		location, err := accounts.DriverLocation(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"location": location})
	}
}

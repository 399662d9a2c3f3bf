package handlers

import (
	"net/http"
	"strings"

	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type RideBookingInput struct {
	RiderID         uint   `json:"riderId"`
	PickupLocation  string `json:"pickupLocation" binding:"required,min=3"`
	DropoffLocation string `json:"dropoffLocation" binding:"required,min=3"`
	RideType        string `json:"rideType" binding:"omitempty,oneof=standard premium luxury shared express"`
}

// CreateRide is the minimal entry point: unknown ride types fall back
// to standard instead of failing.
func CreateRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RiderID         uint   `json:"riderId"`
			PickupLocation  string `json:"pickupLocation"`
			DropoffLocation string `json:"dropoffLocation"`
			RideType        string `json:"rideType"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		if input.RiderID == 0 || strings.TrimSpace(input.PickupLocation) == "" || strings.TrimSpace(input.DropoffLocation) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "riderId, pickupLocation, and dropoffLocation are required"})
			return
		}

		ride, err := rides.Create(c.Request.Context(), services.CreateRideInput{
			RiderID:         input.RiderID,
			PickupLocation:  input.PickupLocation,
			DropoffLocation: input.DropoffLocation,
			RideType:        input.RideType,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ride)
	}
}

// BookRide validates the booking form before creating the ride.
func BookRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RideBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		ride, err := rides.Create(c.Request.Context(), services.CreateRideInput{
			RiderID:         input.RiderID,
			PickupLocation:  input.PickupLocation,
			DropoffLocation: input.DropoffLocation,
			RideType:        input.RideType,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ride)
	}
}

func GetRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		ride, err := rides.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func AssignRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input struct {
			DriverID uint `json:"driverId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		ride, err := rides.Assign(c.Request.Context(), id, input.DriverID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func UpdateRideStatus(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		ride, err := rides.SetStatus(c.Request.Context(), id, input.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func UpdateRide(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var patch models.RidePatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			bindError(c, err)
			return
		}

		ride, err := rides.Update(c.Request.Context(), id, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

func GetPendingRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rides.ListPending(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetRiderRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "riderId")
		if !ok {
			return
		}

		list, err := rides.ListByRider(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetDriverRides(rides *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "driverId")
		if !ok {
			return
		}

		list, err := rides.ListByDriver(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

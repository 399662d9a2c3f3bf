package handlers

import (
	"net/http"

	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CalculatePrice quotes a trip from query parameters, reusing a recent
// quote for the same route and ride type.
func CalculatePrice(pricing *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(c.QueryArray("pickupLocation")) > 1 || len(c.QueryArray("dropoffLocation")) > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Pickup and dropoff locations must be strings"})
			return
		}
		if len(c.QueryArray("rideType")) > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "rideType must be a string"})
			return
		}

		quote, err := pricing.Quote(c.Request.Context(),
			c.Query("pickupLocation"),
			c.Query("dropoffLocation"),
			c.DefaultQuery("rideType", "standard"),
		)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

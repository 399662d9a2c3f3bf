package handlers

import (
	"errors"
	"net/http"

	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func GetSurgeInfo(premium *services.PremiumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, premium.SurgeInfo())
	}
}

func GetRideTypes(premium *services.PremiumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, premium.RideTypes())
	}
}

func GetAnalytics(premium *services.PremiumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		analytics, err := premium.Analytics(c.Request.Context())
		if err != nil {
			internalError(c, "Failed to fetch analytics", err)
			return
		}
		c.JSON(http.StatusOK, analytics)
	}
}

func SubmitFeedback(premium *services.PremiumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RideID  *uint  `json:"rideId"`
			Rating  *int   `json:"rating"`
			Comment string `json:"comment"`
			UserID  *uint  `json:"userId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		feedback, err := premium.SubmitFeedback(c.Request.Context(), services.FeedbackInput{
			RideID:  input.RideID,
			Rating:  input.Rating,
			Comment: input.Comment,
			UserID:  input.UserID,
		})
		if err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				respondError(c, err)
				return
			}
			internalError(c, "Failed to process feedback", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Thank you for your premium feedback", "feedback": feedback})
	}
}

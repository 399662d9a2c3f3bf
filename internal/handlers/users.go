package handlers

import (
	"net/http"

	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func GetUser(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		user, err := accounts.GetUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateUser merges the given fields into the user. A password is
// stored under the same policy as registration.
func UpdateUser(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var input struct {
			models.UserPatch
			Password *string `json:"password" binding:"omitempty,min=6"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		patch := input.UserPatch
		patch.Password = input.Password

		user, err := accounts.UpdateUser(c.Request.Context(), id, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

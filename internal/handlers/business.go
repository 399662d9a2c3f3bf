package handlers

import (
	"net/http"

	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type BusinessSignupInput struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	ContactPerson string  `json:"contactPerson" binding:"required"`
}

func RegisterBusiness(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BusinessSignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		business, err := accounts.RegisterBusiness(c.Request.Context(), services.RegisterBusinessInput{
			Name:          input.Name,
			Email:         input.Email,
			Phone:         input.Phone,
			Address:       input.Address,
			ContactPerson: input.ContactPerson,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, business)
	}
}

func GetBusiness(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		business, err := accounts.GetBusiness(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, business)
	}
}

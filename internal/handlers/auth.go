package handlers

import (
	"net/http"

	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type RegisterInput struct {
	Username string  `json:"username"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	FullName string  `json:"fullName" binding:"required"`
	Phone    *string `json:"phone"`
	UserType string  `json:"userType" binding:"omitempty,oneof=rider driver admin"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, err := accounts.RegisterUser(c.Request.Context(), services.RegisterUserInput{
			Username: input.Username,
			Email:    input.Email,
			Password: input.Password,
			FullName: input.FullName,
			Phone:    input.Phone,
			UserType: models.UserType(input.UserType),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

func Login(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, token, err := accounts.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

// Me returns the account behind the bearer token.
func Me(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := accounts.GetUser(c.Request.Context(), c.GetUint("userId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

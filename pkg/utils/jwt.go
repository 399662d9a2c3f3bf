package utils

import (
	"fmt"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const TokenTTL = time.Hour * 24 * 7 // 7 days

func GenerateToken(user *models.User, secret string) (string, error) {
	claims := jwt.MapClaims{
		"id":       user.ID,
		"email":    user.Email,
		"userType": string(user.UserType),
		"exp":      time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
}

// TokenIdentity pulls the user id and type out of validated claims.
func TokenIdentity(token *jwt.Token) (uint, string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("token missing id")
	}
	userType, _ := claims["userType"].(string)
	return uint(id), userType, nil
}

package middleware

import (
	"strings"

	"github.com/chachabrian/rideflow-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates a bearer token, or the token query parameter
// for socket clients, and stores userId and userType on the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"message": "Authorization header or token query parameter required"})
			return
		}

		token, err := utils.ValidateToken(tokenString, secret)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(401, gin.H{"message": "Invalid token"})
			return
		}

		userID, userType, err := utils.TokenIdentity(token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"message": "Invalid token claims"})
			return
		}

		c.Set("userId", userID)
		c.Set("userType", userType)
		c.Next()
	}
}

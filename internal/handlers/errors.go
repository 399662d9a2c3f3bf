package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/chachabrian/rideflow-backend/internal/middleware"
	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/chachabrian/rideflow-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the error taxonomy. Unknown
// errors are logged with the request id and answered with their raw text.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var terr *services.TransitionError

	switch {
	case errors.As(err, &verr):
		body := gin.H{"message": verr.Message}
		if len(verr.Fields) > 0 {
			body["errors"] = verr.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.As(err, &terr):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error(), "from": terr.From, "to": terr.To})
	default:
		internalError(c, "Internal server error", err)
	}
}

func internalError(c *gin.Context, message string, err error) {
	log.Printf("[%s] %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": err.Error()})
}

// bindError answers a failed ShouldBind* with field-level detail.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Validation error", "errors": utils.FieldErrors(err)})
}

// idParam parses a numeric path parameter, answering 400 when it is not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

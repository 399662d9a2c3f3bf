package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/middleware"
	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the router hands to handlers.
type Deps struct {
	Accounts    *services.AccountService
	Pricing     *services.PricingService
	Rides       *services.RideService
	Premium     *services.PremiumService
	Hub         *services.Hub
	JWTSecret   string
	CORSOrigins []string

	// HealthChecks are probed by /health and reported per name.
	HealthChecks map[string]func(ctx context.Context) error
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	config := cors.DefaultConfig()
	config.AllowOrigins = d.CORSOrigins
	if len(config.AllowOrigins) == 0 || (len(config.AllowOrigins) == 1 && config.AllowOrigins[0] == "*") {
		config.AllowOrigins = nil
		config.AllowAllOrigins = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok", "connectedClients": d.Hub.ConnectedClients()}
		if len(d.HealthChecks) > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			checks := gin.H{}
			for name, check := range d.HealthChecks {
				if err := check(ctx); err != nil {
					checks[name] = "unavailable"
					body["status"] = "degraded"
					continue
				}
				checks[name] = "ok"
			}
			body["checks"] = checks
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/ws", WebSocketHandler(d.Hub))

	api := r.Group("/api")
	{
		api.GET("/ws", WebSocketHandler(d.Hub))

		auth := api.Group("/auth")
		{
			auth.POST("/register", Register(d.Accounts))
			auth.POST("/login", Login(d.Accounts))
			auth.GET("/me", middleware.AuthMiddleware(d.JWTSecret), Me(d.Accounts))
		}

		users := api.Group("/users")
		{
			users.GET("/:id", GetUser(d.Accounts))
			users.PATCH("/:id", UpdateUser(d.Accounts))
		}

		drivers := api.Group("/drivers")
		{
			drivers.POST("/register", RegisterDriver(d.Accounts))
			drivers.GET("/online", GetOnlineDrivers(d.Accounts))
			drivers.GET("/:id", GetDriver(d.Accounts))
			drivers.PATCH("/:id/status", UpdateDriverStatus(d.Accounts))
			drivers.GET("/:id/location", GetDriverLocation(d.Accounts))
		}

		rides := api.Group("/rides")
		{
			rides.POST("", CreateRide(d.Rides))
			rides.POST("/book", BookRide(d.Rides))
			rides.GET("/calculate-price", CalculatePrice(d.Pricing))
			rides.GET("/pending", GetPendingRides(d.Rides))
			rides.GET("/rider/:riderId", GetRiderRides(d.Rides))
			rides.GET("/driver/:driverId", GetDriverRides(d.Rides))
			rides.GET("/:id", GetRide(d.Rides))
			rides.PATCH("/:id", UpdateRide(d.Rides))
			rides.POST("/:id/assign", AssignRide(d.Rides))
			rides.PATCH("/:id/status", UpdateRideStatus(d.Rides))
		}

		business := api.Group("/business")
		{
			business.POST("/register", RegisterBusiness(d.Accounts))
			business.GET("/:id", GetBusiness(d.Accounts))
		}

		premium := api.Group("/premium")
		{
			premium.GET("/surge-info", GetSurgeInfo(d.Premium))
			premium.GET("/ride-types", GetRideTypes(d.Premium))
			premium.GET("/analytics", GetAnalytics(d.Premium))
			premium.POST("/feedback", SubmitFeedback(d.Premium))
		}
	}

	return r
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/config"
	"github.com/chachabrian/rideflow-backend/internal/database"
	"github.com/chachabrian/rideflow-backend/internal/handlers"
	"github.com/chachabrian/rideflow-backend/internal/services"
	"github.com/chachabrian/rideflow-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sinks, redisSink := openSinks(ctx, cfg)
	defer func() {
		for _, sink := range sinks {
			if err := sink.Close(); err != nil {
				log.Printf("Error closing event sink: %v", err)
			}
		}
	}()

	archive, err := services.InitStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	hub := services.NewHub(store, sinks...)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	pricing := services.NewPricingService(store,
		services.WithQuoteTTL(cfg.QuoteTTL),
		services.WithSurgeLocation(cfg.SurgeLocation()),
	)

	accounts := services.NewAccountService(store, utils.PasswordPolicy{Hash: cfg.PasswordHashing}, cfg.JWTSecret)
	checks := map[string]func(context.Context) error{}
	if redisSink != nil {
		accounts.UseLocationCache(redisSink)
		checks["redis"] = redisSink.Ping
	}

	router := handlers.NewRouter(handlers.Deps{
		Accounts:    accounts,
		Pricing:     pricing,
		Rides:       services.NewRideService(store, pricing, hub),
		Premium:     services.NewPremiumService(store, pricing, archive, hub),
		Hub:         hub,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,

		HealthChecks: checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("RideFlow API listening on :%s (storage=%s)", cfg.Port, cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	stopHub()
}

func openStore(cfg config.Config) (database.Store, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		log.Println("Using in-memory store; data is lost on restart")
		return database.NewMemoryStore(), nil
	}

	db, err := database.InitDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return database.NewGormStore(db), nil
}

// openSinks connects the optional event mirrors. A sink that cannot be
// reached is logged and skipped. The redis sink is also returned on its
// own since it doubles as the driver location cache.
func openSinks(ctx context.Context, cfg config.Config) ([]services.EventSink, *services.RedisSink) {
	var sinks []services.EventSink
	var redisSink *services.RedisSink

	if cfg.RedisURL != "" {
		rs, err := services.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable, events will not be mirrored: %v", err)
		} else {
			redisSink = rs
			sinks = append(sinks, rs)
		}
	}

	if cfg.RabbitURL != "" {
		rabbitSink, err := services.ConnectRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Printf("RabbitMQ unavailable, events will not be mirrored: %v", err)
		} else {
			sinks = append(sinks, rabbitSink)
		}
	}

	return sinks, redisSink
}

package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentals-service/internal/cache"
	"rentals-service/internal/config"
	"rentals-service/internal/db"
	bookingHandler "rentals-service/internal/handlers/booking"
	vehicleHandler "rentals-service/internal/handlers/vehicle"
	wsHandler "rentals-service/internal/handlers/websocket"
	"rentals-service/internal/middleware"
	"rentals-service/internal/repository/postgres"
	bookingService "rentals-service/internal/service/booking"
	vehicleService "rentals-service/internal/service/vehicle"
	"rentals-service/internal/websocket"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)

	// ----- Cache -----
	vehicleCache := cache.NewVehicleCache(redisClient, s.cfg.CacheTTL)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	registry := vehicleService.NewVehicleService(vehicleRepo, bookingRepo, vehicleCache, logger)
	ledger := bookingService.NewBookingService(bookingRepo, vehicleRepo, registry, dbWrapper, hub, logger)

	// ----- Handlers -----
	vehicleHandlerInst := vehicleHandler.NewVehicleHandler(registry)
	bookingHandlerInst := bookingHandler.NewBookingHandler(ledger)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		VehicleHandler: vehicleHandlerInst,
		BookingHandler: bookingHandlerInst,
		WSHandler:      wsHandlerInst,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("Server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GuiNunes77/The-Room/internal/application"
	"github.com/GuiNunes77/The-Room/internal/auth"
	"github.com/GuiNunes77/The-Room/internal/config"
	"github.com/GuiNunes77/The-Room/internal/database"
	bookingDomain "github.com/GuiNunes77/The-Room/internal/domain/booking"
	bookingEvents "github.com/GuiNunes77/The-Room/internal/events"
	"github.com/GuiNunes77/The-Room/internal/handler"
	"github.com/GuiNunes77/The-Room/internal/health"
	"github.com/GuiNunes77/The-Room/internal/kafka"
	"github.com/GuiNunes77/The-Room/internal/logger"
	"github.com/GuiNunes77/The-Room/internal/middleware"
	"github.com/GuiNunes77/The-Room/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "the-room")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting the-room",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.GuestModel{},
			&repository.RoomModel{},
			&repository.BookingModel{},
			&repository.StaffRoleModel{},
			&repository.RolePermissionModel{},
			&repository.RoleMemberModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize domain policies
	overlapPolicy := bookingDomain.OverlapInclusive
	if cfg.Booking.AllowSameDayTurnover {
		overlapPolicy = bookingDomain.OverlapExclusive
	}

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db, overlapPolicy)
	roomRepo := repository.NewGormRoomRepository(db)
	guestRepo := repository.NewGormGuestRepository(db)
	authorizer := repository.NewGormAuthorizer(db)

	availabilityChecker := bookingDomain.NewAvailabilityChecker(bookingRepo, overlapPolicy)
	pricer := bookingDomain.NewNightlyRatePricer()

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		roomRepo,
		guestRepo,
		availabilityChecker,
		pricer,
		authorizer,
		kafkaProducer,
		log,
	)
	roomService := application.NewRoomService(
		roomRepo,
		bookingRepo,
		availabilityChecker,
		pricer,
		authorizer,
		log,
	)
	guestService := application.NewGuestService(guestRepo, authorizer, log)

	// Initialize and start housekeeping event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "housekeeping"
	housekeepingConsumer := bookingEvents.NewHousekeepingConsumer(
		cfg.Kafka.Brokers,
		groupID,
		log,
	)
	defer func() { _ = housekeepingConsumer.Close() }()

	go func() {
		log.Info("starting housekeeping event consumer")
		if err := housekeepingConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("housekeeping event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	roomHandler := handler.NewRoomHandler(roomService)
	guestHandler := handler.NewGuestHandler(guestService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "the-room")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	roomHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	guestHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down the-room...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("the-room stopped")
}

//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GuiNunes77/The-Room/internal/application"
	"github.com/GuiNunes77/The-Room/internal/authz"
	"github.com/GuiNunes77/The-Room/internal/database"
	bookingDomain "github.com/GuiNunes77/The-Room/internal/domain/booking"
	"github.com/GuiNunes77/The-Room/internal/events"
	"github.com/GuiNunes77/The-Room/internal/kafka"
	"github.com/GuiNunes77/The-Room/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// hotelStack holds wired-up front-desk service components.
type hotelStack struct {
	Bookings        *application.BookingService
	Rooms           *application.RoomService
	Guests          *application.GuestService
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_hotel",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_hotel sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	// Apply the real SQL migrations so the tests run against the production
	// schema, exclusion constraint and cascades included.
	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/test_hotel?sslmode=disable", pgHost, pgPort.Port())
	require.NoError(t, database.RunMigrations(dbURL, "migrations", zap.NewNop()))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicBookingEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupHotelStack wires up the full front-desk service stack against the real
// role tables and Kafka producer.
func setupHotelStack(t *testing.T, db *gorm.DB, brokers []string, policy bookingDomain.OverlapPolicy) *hotelStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db, policy)
	roomRepo := repository.NewGormRoomRepository(db)
	guestRepo := repository.NewGormGuestRepository(db)
	authorizer := repository.NewGormAuthorizer(db)

	checker := bookingDomain.NewAvailabilityChecker(bookingRepo, policy)
	pricer := bookingDomain.NewNightlyRatePricer()
	producer := kafka.NewProducer(brokers, logger)

	bookingSvc := application.NewBookingService(bookingRepo, roomRepo, guestRepo, checker, pricer, authorizer, producer, logger)
	roomSvc := application.NewRoomService(roomRepo, bookingRepo, checker, pricer, authorizer, logger)
	guestSvc := application.NewGuestService(guestRepo, authorizer, logger)

	return &hotelStack{
		Bookings:        bookingSvc,
		Rooms:           roomSvc,
		Guests:          guestSvc,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedManager creates a staff member holding every permission through the
// manager role and returns their ID.
func seedManager(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	roleID := uuid.New()
	staffID := uuid.New()

	require.NoError(t, db.Create(&repository.StaffRoleModel{
		ID:        roleID,
		Name:      fmt.Sprintf("manager-%s", staffID.String()[:8]),
		CreatedAt: time.Now().UTC(),
	}).Error)

	perms := []authz.Permission{
		authz.PermBookingCreate,
		authz.PermBookingCheckout,
		authz.PermBookingCancel,
		authz.PermBookingOverride,
		authz.PermGuestCreate,
		authz.PermGuestOverride,
		authz.PermRoomCreate,
		authz.PermRoomEdit,
		authz.PermRoomEditStatus,
		authz.PermRoomDelete,
	}
	for _, perm := range perms {
		require.NoError(t, db.Create(&repository.RolePermissionModel{
			RoleID:     roleID,
			Permission: string(perm),
		}).Error)
	}

	require.NoError(t, db.Create(&repository.RoleMemberModel{
		RoleID:  roleID,
		StaffID: staffID,
	}).Error)

	return staffID
}

// stayDates returns a midnight-anchored [checkIn, checkOut) interval.
func stayDates(daysFromNow, nights int) (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	checkIn := today.AddDate(0, 0, daysFromNow)
	return checkIn, checkIn.AddDate(0, 0, nights)
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

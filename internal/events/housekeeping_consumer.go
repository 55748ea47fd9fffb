package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/GuiNunes77/The-Room/internal/kafka"
)

// HousekeepingConsumer listens to booking events and notifies housekeeping
// when a room needs cleaning after check-out.
type HousekeepingConsumer struct {
	consumer *kafka.Consumer
	logger   *zap.Logger
}

// NewHousekeepingConsumer creates a new HousekeepingConsumer.
func NewHousekeepingConsumer(brokers []string, groupID string, logger *zap.Logger) *HousekeepingConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger)
	return &HousekeepingConsumer{
		consumer: consumer,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (c *HousekeepingConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *HousekeepingConsumer) Close() error {
	return c.consumer.Close()
}

func (c *HousekeepingConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingCheckedOut:
		return c.handleCheckedOut(cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *HousekeepingConsumer) handleCheckedOut(cloudEvent kafka.CloudEvent) error {
	var evt BookingCheckedOutEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse BookingCheckedOutEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	// Fan-out point for housekeeping tooling; today the notification is the
	// structured log line the housekeeping dashboard tails.
	c.logger.Info("room ready for cleaning",
		zap.String("room_number", evt.RoomNumber),
		zap.String("room_id", evt.RoomID.String()),
		zap.String("booking_reference", evt.ReferenceCode),
		zap.Time("checked_out_at", evt.ActualCheckOut),
	)
	return nil
}

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"seatkeeper/pkg/logger"

	"github.com/IBM/sarama"
)

// SeatBookedHandler reacts to one booking event. Returning an error leaves
// the message uncommitted after the retries are spent.
type SeatBookedHandler func(ctx context.Context, event *SeatBookedEvent) error

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "seatkeeper-booking-feed",
		Topics:               []string{"seat-booked"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// SeatBookedConsumer reads booking events from a consumer group.
type SeatBookedConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       SeatBookedHandler
	log           *logger.Logger
	wg            sync.WaitGroup
}

func NewSeatBookedConsumer(config *ConsumerConfig, handler SeatBookedHandler) (*SeatBookedConsumer, error) {
	if config == nil {
		config = DefaultConsumerConfig()
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &SeatBookedConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		handler:       handler,
		log:           logger.GetDefault(),
	}, nil
}

// Start launches numWorkers consumer loops that run until ctx is cancelled.
func (c *SeatBookedConsumer) Start(ctx context.Context, numWorkers int) {
	c.log.Info("Starting booking event consumers",
		slog.Int("workers", numWorkers), slog.Any("topics", c.config.Topics))

	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
}

func (c *SeatBookedConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		handle: c.handler,
		config: c.config,
		log:    c.log.WithFields(map[string]interface{}{"worker": workerID}),
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
			c.log.Error("Error consuming messages", slog.Int("worker", workerID), slog.String("error", err.Error()))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *SeatBookedConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.log.Error("Consumer group error", slog.String("error", err.Error()))
	}
}

// Stop waits for the workers to return and closes the group. Cancel the
// context passed to Start first.
func (c *SeatBookedConsumer) Stop() error {
	c.wg.Wait()
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type consumerGroupHandler struct {
	handle SeatBookedHandler
	config *ConsumerConfig
	log    *logger.Logger
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.Error("Error processing booking event",
					slog.Int64("offset", message.Offset), slog.String("error", err.Error()))
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event SeatBookedEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal booking event: %w", err)
	}
	if event.Type != EventTypeSeatBooked {
		return nil
	}
	return h.executeWithRetry(ctx, &event)
}

func (h *consumerGroupHandler) executeWithRetry(ctx context.Context, event *SeatBookedEvent) error {
	var err error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if err = h.handle(ctx, event); err == nil {
			return nil
		}
		if attempt == h.config.MaxRetries {
			break
		}

		// Exponential backoff
		delay := h.config.RetryBackoffDuration * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("booking event %s failed after %d attempts: %w", event.ID, h.config.MaxRetries+1, err)
}

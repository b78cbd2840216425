package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"seatkeeper/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher publishes booking events
type Publisher interface {
	PublishSeatBooked(ctx context.Context, event *SeatBookedEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka booking event producer
type KafkaProducerConfig struct {
	Brokers         []string
	Topic           string
	RetryMax        int
	TimeoutMs       int
	RequiredAcks    sarama.RequiredAcks
	CompressionType sarama.CompressionCodec
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:         []string{"localhost:9092"},
		Topic:           "seat-booked",
		RetryMax:        3,
		TimeoutMs:       10000,
		RequiredAcks:    sarama.WaitForAll,
		CompressionType: sarama.CompressionSnappy,
	}
}

// KafkaPublisher publishes booking events to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher connects a sync producer to the configured brokers
func NewKafkaPublisher(config *KafkaProducerConfig) (*KafkaPublisher, error) {
	if config == nil {
		config = DefaultKafkaProducerConfig()
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond

	// Hash partitioner so one library's events stay ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, config.Topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      logger.GetDefault(),
	}
}

// PublishSeatBooked publishes a single booking event
func (kp *KafkaPublisher) PublishSeatBooked(ctx context.Context, event *SeatBookedEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.createHeaders(event),
		Timestamp: event.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send booking event to Kafka: %w", err)
	}

	kp.log.InfoContext(ctx, "Booking event published",
		slog.String("topic", kp.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("event_id", event.ID.String()),
	)
	return nil
}

func (kp *KafkaPublisher) createHeaders(event *SeatBookedEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("structure_id"), Value: []byte(event.StructureID)},
		{Key: []byte("producer"), Value: []byte("seatkeeper")},
		{Key: []byte("created_at"), Value: []byte(event.CreatedAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (kp *KafkaPublisher) Close() error {
	if kp.producer == nil {
		return nil
	}
	if err := kp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishSeatBooked(context.Context, *SeatBookedEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is one event on its way to a Kafka topic. The payload is an
// already-serialized JSON document; the metadata travels in headers so
// consumers can route without deserializing.
type Message struct {
	Topic     string
	Key       string // partition key, usually the aggregate id
	MessageID string
	EventType string
	Payload   []byte
	Headers   map[string]string
	Time      time.Time
}

// Producer handles publishing messages to Kafka topics
type Producer struct {
	writers map[string]*kafka.Writer
	config  *Config
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config) *Producer {
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		config:  config,
	}
}

// getWriter returns a writer for the specified topic, creating one if necessary
func (p *Producer) getWriter(topic string) *kafka.Writer {
	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
	}

	p.writers[topic] = writer
	return writer
}

// Publish publishes one message to its topic
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Payload,
		Time:  msg.Time,
		Headers: []kafka.Header{
			{Key: "message-id", Value: []byte(msg.MessageID)},
			{Key: "event-type", Value: []byte(msg.EventType)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	writer := p.getWriter(msg.Topic)
	if err := writer.WriteMessages(ctx, kafkaMsg); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", msg.Topic, err)
	}
	return nil
}

// PublishBatch publishes multiple messages to one topic
func (p *Producer) PublishBatch(ctx context.Context, topic string, messages []Message) error {
	kafkaMsgs := make([]kafka.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Time.IsZero() {
			msg.Time = time.Now()
		}
		km := kafka.Message{
			Key:   []byte(msg.Key),
			Value: msg.Payload,
			Time:  msg.Time,
			Headers: []kafka.Header{
				{Key: "message-id", Value: []byte(msg.MessageID)},
				{Key: "event-type", Value: []byte(msg.EventType)},
				{Key: "content-type", Value: []byte("application/json")},
			},
		}
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
		kafkaMsgs = append(kafkaMsgs, km)
	}

	writer := p.getWriter(topic)
	if err := writer.WriteMessages(ctx, kafkaMsgs...); err != nil {
		return fmt.Errorf("failed to publish batch to topic %s: %w", topic, err)
	}
	return nil
}

// Close closes all writers
func (p *Producer) Close() error {
	var lastErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	return lastErr
}

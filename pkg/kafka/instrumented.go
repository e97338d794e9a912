package kafka

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/retail-platform/sales-service/pkg/logging"
	"github.com/retail-platform/sales-service/pkg/metrics"
	"github.com/retail-platform/sales-service/pkg/tracing"
)

// InstrumentedProducer wraps Producer with logging, metrics and tracing.
// Trace context is injected into message headers so consumers can
// continue the trace.
type InstrumentedProducer struct {
	producer *Producer
	logger   *logging.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// NewInstrumentedProducer creates an instrumented Kafka producer
func NewInstrumentedProducer(producer *Producer, logger *logging.Logger, m *metrics.Metrics, tracer trace.Tracer) *InstrumentedProducer {
	return &InstrumentedProducer{
		producer: producer,
		logger:   logger,
		metrics:  m,
		tracer:   tracer,
	}
}

// Publish publishes a message with full instrumentation
func (p *InstrumentedProducer) Publish(ctx context.Context, msg Message) error {
	start := time.Now()

	var span trace.Span
	if p.tracer != nil {
		ctx, span = p.tracer.Start(ctx, "kafka.publish "+msg.Topic,
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(
				tracing.MessagingSpanAttributes("kafka", msg.Topic, "publish")...,
			),
		)
		span.SetAttributes(attribute.String("messaging.message.type", msg.EventType))
		defer span.End()

		if msg.Headers == nil {
			msg.Headers = make(map[string]string)
		}
		tracing.InjectTraceContext(ctx, tracing.MapCarrier(msg.Headers))
	}

	err := p.producer.Publish(ctx, msg)
	duration := time.Since(start)

	success := err == nil
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(msg.Topic, msg.EventType, success, duration)
	}
	if p.logger != nil {
		p.logger.KafkaPublish(ctx, msg.Topic, msg.EventType, success, duration)
	}
	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	return err
}

// Close closes the underlying producer
func (p *InstrumentedProducer) Close() error {
	return p.producer.Close()
}

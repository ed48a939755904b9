package kafka_middleware

import (
	"context"
	"time"

	"fieldnorm/pkg/kafka"
	"fieldnorm/pkg/metrics"
)

const (
	DirectionPublish = "publish"
	DirectionConsume = "consume"
)

// MetricsProducerMiddleware tracks publish outcomes and latency
func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveKafkaMessage(DirectionPublish, msg.Topic, err, time.Since(start))
		return err
	}
}

// MetricsConsumerMiddleware tracks consume outcomes and latency. Every
// attempt is counted, so a retried message shows up once per attempt.
func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ObserveKafkaMessage(DirectionConsume, msg.Topic, err, time.Since(start))
		return err
	}
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fieldnorm"

// Metrics holds all Prometheus metrics for the normalizer service
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	IDsGenerated      prometheus.Counter
	TimestampsDecoded *prometheus.CounterVec
	CodesRecognized   *prometheus.CounterVec

	RecordsProcessed *prometheus.CounterVec

	KafkaMessages        *prometheus.CounterVec
	KafkaMessageDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them with reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		IDsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ids_generated_total",
			Help:      "Total number of time-ordered identifiers generated",
		}),
		TimestampsDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestamps_decoded_total",
			Help:      "Identifier timestamp extractions by outcome",
		}, []string{"outcome"}),
		CodesRecognized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codes_recognized_total",
			Help:      "Domain code recognitions by family and outcome",
		}, []string{"family", "outcome"}),
		RecordsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Normalized records by source and outcome",
		}, []string{"source", "outcome"}),
		KafkaMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages by direction, topic and outcome",
		}, []string{"direction", "topic", "outcome"}),
		KafkaMessageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_message_duration_seconds",
			Help:      "Kafka publish and consume latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction", "topic"}),
		gatherer: reg,
	}
}

// Handler exposes the registered metrics in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) IncrementIDsGenerated() {
	m.IDsGenerated.Inc()
}

func (m *Metrics) ObserveTimestampDecode(ok bool) {
	m.TimestampsDecoded.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) ObserveCodeRecognition(family string, ok bool) {
	m.CodesRecognized.WithLabelValues(family, outcome(ok)).Inc()
}

func (m *Metrics) ObserveRecord(source string, err error) {
	m.RecordsProcessed.WithLabelValues(source, outcome(err == nil)).Inc()
}

func (m *Metrics) ObserveKafkaMessage(direction, topic string, err error, duration time.Duration) {
	m.KafkaMessages.WithLabelValues(direction, topic, outcome(err == nil)).Inc()
	m.KafkaMessageDuration.WithLabelValues(direction, topic).Observe(duration.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

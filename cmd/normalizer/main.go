package main

import (
	"fieldnorm/internal/normalizer/handler"
	"fieldnorm/internal/normalizer/pipeline"
	"fieldnorm/internal/normalizer/repository"
	"fieldnorm/internal/normalizer/service"
	"fieldnorm/internal/normalizer/validator"
	"fieldnorm/pkg/app"
	"fieldnorm/pkg/config"
	"fieldnorm/pkg/kafka"
	kafka_middleware "fieldnorm/pkg/kafka/middleware"
	"fieldnorm/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "normalizer"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Normalizer service")
	m := initMetrics()
	repo, normalizerService := initServices(cfg, m)

	serverApp := app.NewApplication(cfg, m)
	serverApp.SetApp(handler.NewNormalizerHandler(normalizerService, cfg.Log), repo)
	if cfg.Kafka.Enabled {
		initPipeline(cfg, m, normalizerService, serverApp)
	}
	serverApp.Run()
}

func initMetrics() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.New(reg)
}

func initServices(cfg *config.Config, m *metrics.Metrics) (repository.RecordRepository, service.NormalizerService) {
	recordValidator := validator.NewRequestValidator(cfg.Log)
	recordRepo := repository.NewMongoRecordRepository(
		cfg.Client.Mongo,
		cfg.MongoDatabaseName,
		cfg.MongoCollectionName,
		cfg.MongoQueryTimeout,
	)
	normalizerService := service.NewNormalizerService(
		recordRepo,
		recordValidator,
		m,
		cfg.Log,
	)

	cfg.Log.Info("Normalizer service initialized",
		"database", cfg.MongoDatabaseName,
		"collection", cfg.MongoCollectionName,
	)
	return recordRepo, normalizerService
}

func initPipeline(cfg *config.Config, m *metrics.Metrics, svc service.NormalizerService, serverApp *app.Application) {
	kcfg := cfg.Kafka

	producer, err := kafka.NewProducer(kcfg, kcfg.OutputTopic, kcfg.DLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	recordPipeline := pipeline.NewRecordPipeline(svc, producer, cfg.Log)
	consumer, err := kafka.NewConsumer(kcfg, kcfg.InputTopic, kcfg.ConsumerGroup, kcfg.DLQTopic, recordPipeline.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	if kcfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	}

	serverApp.AddWorker("record-pipeline", consumer.Start, consumer)
	serverApp.AddCloser(producer)

	cfg.Log.Info("Record pipeline configured",
		"input_topic", kcfg.InputTopic,
		"output_topic", kcfg.OutputTopic,
		"dlq_topic", kcfg.DLQTopic,
		"group", kcfg.ConsumerGroup,
	)
}

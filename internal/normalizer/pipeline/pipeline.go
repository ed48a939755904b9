// Package pipeline normalizes raw records read from Kafka and publishes the
// stored form to the output topic.
package pipeline

import (
	"context"

	"fieldnorm/internal/normalizer/service"
	apperrors "fieldnorm/pkg/errors"
	"fieldnorm/pkg/kafka"
	"fieldnorm/pkg/logger"
	"fieldnorm/pkg/model"
	"fieldnorm/pkg/uuidv7"

	"github.com/google/uuid"
)

const (
	EventTypeRecordNormalized = "record.normalized"
	SchemaVersion             = "1"
	SourceName                = "fieldnorm"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type RecordPipeline struct {
	service   service.NormalizerService
	publisher Publisher
	log       *logger.Logger
}

func NewRecordPipeline(service service.NormalizerService, publisher Publisher, log *logger.Logger) *RecordPipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &RecordPipeline{
		service:   service,
		publisher: publisher,
		log:       log.With("component", "record-pipeline"),
	}
}

// Handle is a kafka.MessageHandler. Malformed or invalid records, and
// messages declaring a schema version other than SchemaVersion, fail
// permanently and go to the DLQ; storage and publish failures are retried.
//
// A record without an ID takes the event ID of its message when that is a
// version 7 UUID, so a redelivered message overwrites the same document.
func (p *RecordPipeline) Handle(ctx context.Context, msg kafka.Message) error {
	if len(msg.Value) == 0 {
		return kafka.NewPermanentError("invalid message", kafka.ErrEmptyValue)
	}

	if version, ok := msg.GetHeader(kafka.HeaderSchemaVersion); ok && version != SchemaVersion {
		return kafka.NewPermanentError("schema mismatch", nil).
			WithDetail("schema_version", version)
	}

	var rec model.Record
	if err := msg.DecodeValue(&rec); err != nil {
		return kafka.NewPermanentError("deserialization failed", err).
			WithDetail("offset", msg.Offset)
	}

	if rec.ID == "" {
		if id, err := uuid.Parse(msg.GetEventID()); err == nil && uuidv7.VersionOf(id) == uuidv7.Version {
			rec.ID = id.String()
		}
	}

	normalized, err := p.service.CreateRecord(ctx, &rec, model.SourceKafka)
	if err != nil {
		return classify(err)
	}

	correlationID := msg.GetCorrelationID()
	if correlationID == "" {
		correlationID = msg.GetEventID()
	}

	builder := kafka.NewMessage().
		WithKey(normalized.ID).
		WithValue(normalized).
		WithEventType(EventTypeRecordNormalized).
		WithSchemaVersion(SchemaVersion).
		WithSource(SourceName).
		WithCorrelationID(correlationID)
	if err := builder.Err(); err != nil {
		return kafka.NewPermanentError("invalid record", err)
	}

	if err := p.publisher.Publish(ctx, builder.Build()); err != nil {
		p.log.Warn("Failed to publish normalized record",
			"id", normalized.ID,
			"error", err,
		)
		return kafka.NewTransientError("publish normalized record", err)
	}

	p.log.Debug("Normalized record published",
		"id", normalized.ID,
		"offset", msg.Offset,
		"partition", msg.Partition,
	)
	return nil
}

// classify maps client errors to permanent failures and everything else to
// transient ones.
func classify(err error) error {
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() < 500 {
		return kafka.NewPermanentError("invalid record", err).
			WithDetail("code", appErr.Code).
			WithDetail("details", appErr.Details)
	}
	return kafka.NewTransientError("store record", err)
}

package service

import (
	"context"
	"errors"

	"fieldnorm/internal/normalizer/repository"
	"fieldnorm/internal/normalizer/validator"
	"fieldnorm/pkg/envcode"
	apperrors "fieldnorm/pkg/errors"
	"fieldnorm/pkg/fieldx"
	"fieldnorm/pkg/logger"
	"fieldnorm/pkg/metrics"
	"fieldnorm/pkg/model"
	"fieldnorm/pkg/sanitizer"
	"fieldnorm/pkg/uuidv7"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const anyFamily = "any"

// MaxDateRangeDays bounds the span DateRange will list.
const MaxDateRangeDays = 3660

type NormalizerService interface {
	GenerateID(ctx context.Context) *model.GenerateIDResponse
	DecodeTimestamp(ctx context.Context, req *model.DecodeTimestampRequest) (*model.DecodeTimestampResponse, error)

	Trim(ctx context.Context, req *model.TextRequest) *model.TextResponse
	CollapseWhitespace(ctx context.Context, req *model.TextRequest) *model.TextResponse
	StripMarkup(ctx context.Context, req *model.TextRequest) *model.TextResponse

	RecognizeCode(ctx context.Context, req *model.RecognizeCodeRequest) (*model.RecognizeCodeResponse, error)
	JoinNames(ctx context.Context, req *model.JoinNamesRequest) (*model.TextResponse, error)
	Address(ctx context.Context, req *model.AddressRequest) (*fieldx.Address, error)

	Digest(ctx context.Context, req *model.DigestRequest) (*model.DigestResponse, error)
	VerifyDigest(ctx context.Context, req *model.VerifyDigestRequest) (*model.VerifyDigestResponse, error)
	NewToken(ctx context.Context) (*model.TokenResponse, error)
	DateRange(ctx context.Context, req *model.DateRangeRequest) (*model.DateRangeResponse, error)
	Month(ctx context.Context, req *model.MonthRequest) (*model.MonthResponse, error)

	Normalize(ctx context.Context, rec *model.Record, source string) (*model.NormalizedRecord, error)
	CreateRecord(ctx context.Context, rec *model.Record, source string) (*model.NormalizedRecord, error)
	GetRecord(ctx context.Context, id string) (*model.NormalizedRecord, error)
	ListRecords(ctx context.Context, limit int, offset int64) ([]*model.NormalizedRecord, int64, error)
}

type normalizerService struct {
	repo      repository.RecordRepository
	validator *validator.RequestValidator
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func NewNormalizerService(
	repo repository.RecordRepository,
	validator *validator.RequestValidator,
	m *metrics.Metrics,
	log *logger.Logger,
) NormalizerService {
	return &normalizerService{
		repo:      repo,
		validator: validator,
		metrics:   m,
		log:       log,
	}
}

func (s *normalizerService) GenerateID(ctx context.Context) *model.GenerateIDResponse {
	id := uuidv7.Generate()
	s.metrics.IncrementIDsGenerated()

	resp := &model.GenerateIDResponse{ID: id.String()}
	if ts, ok := uuidv7.DecodeTimestamp(id); ok {
		resp.Timestamp = ts.String()
	}
	return resp
}

func (s *normalizerService) DecodeTimestamp(ctx context.Context, req *model.DecodeTimestampRequest) (*model.DecodeTimestampResponse, error) {
	if err := s.validate(req, "Identifier validation failed"); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid UUID: " + req.ID)
	}

	resp := &model.DecodeTimestampResponse{
		ID:      id.String(),
		Version: uuidv7.VersionOf(id),
	}

	ts, ok := uuidv7.DecodeTimestamp(id)
	s.metrics.ObserveTimestampDecode(ok)
	if ok {
		formatted := ts.String()
		resp.Timestamp = &formatted
	}
	return resp, nil
}

func (s *normalizerService) Trim(ctx context.Context, req *model.TextRequest) *model.TextResponse {
	return &model.TextResponse{Text: sanitizer.Trim(req.Text)}
}

func (s *normalizerService) CollapseWhitespace(ctx context.Context, req *model.TextRequest) *model.TextResponse {
	return &model.TextResponse{Text: sanitizer.CollapseWhitespace(req.Text)}
}

func (s *normalizerService) StripMarkup(ctx context.Context, req *model.TextRequest) *model.TextResponse {
	return &model.TextResponse{Text: sanitizer.StripMarkup(req.Text)}
}

// unknownFamily labels recognitions whose family names no code family.
const unknownFamily = "unknown"

// RecognizeCode reports an empty or unknown family as an unrecognized code
// rather than an error.
func (s *normalizerService) RecognizeCode(ctx context.Context, req *model.RecognizeCodeRequest) (*model.RecognizeCodeResponse, error) {
	code, ok := envcode.RecognizeByFamily(req.Text, req.Family)

	family := unknownFamily
	if f, known := envcode.ParseFamily(req.Family); known {
		family = f.String()
	}
	s.metrics.ObserveCodeRecognition(family, ok)

	resp := &model.RecognizeCodeResponse{Family: family, Valid: ok}
	if ok {
		resp.Code = &code
	}
	return resp, nil
}

func (s *normalizerService) JoinNames(ctx context.Context, req *model.JoinNamesRequest) (*model.TextResponse, error) {
	if err := s.validate(req, "Names validation failed"); err != nil {
		return nil, err
	}
	return &model.TextResponse{Text: fieldx.JoinNames(req.Names...)}, nil
}

func (s *normalizerService) Address(ctx context.Context, req *model.AddressRequest) (*fieldx.Address, error) {
	if err := s.validate(req, "Address validation failed"); err != nil {
		return nil, err
	}
	addr := fieldx.NewAddress(req.Address, req.City, req.PostalCode, req.Country, req.GPS, req.Type)
	return &addr, nil
}

// Normalize validates rec and derives its stored form without persisting it.
func (s *normalizerService) Normalize(ctx context.Context, rec *model.Record, source string) (*model.NormalizedRecord, error) {
	if err := s.validate(rec, "Record validation failed"); err != nil {
		return nil, err
	}

	id, err := s.recordID(rec)
	if err != nil {
		return nil, err
	}

	ts, ok := uuidv7.DecodeTimestamp(id)
	if !ok {
		return nil, apperrors.InvalidInput("Record ID timestamp is out of range").
			WithDetails(map[string]any{"id": id.String()})
	}

	normalized := &model.NormalizedRecord{
		ID:          id.String(),
		CreatedAt:   ts.Time(),
		Source:      source,
		Name:        fieldx.JoinNames(rec.FirstName, rec.MiddleName, rec.LastName),
		Description: sanitizer.StripMarkup(rec.Description),
		Tags:        sanitizer.NormalizeLabels(rec.Tags),
		Active:      rec.Active != nil && fieldx.ParseBool(sanitizer.Trim(rec.Active)),
		Quantity:    fieldx.ParseDigits(rec.Quantity),
	}

	if rec.Code != nil {
		normalized.Code, normalized.CodeFamily = s.recognizeRecordCode(*rec.Code, rec.CodeFamily)
	}

	if rec.HasAddress() {
		addr := fieldx.NewAddress(rec.Street, rec.City, rec.PostalCode, rec.Country, rec.GPS, rec.AddressType)
		normalized.Address = &addr
	}

	return normalized, nil
}

func (s *normalizerService) CreateRecord(ctx context.Context, rec *model.Record, source string) (*model.NormalizedRecord, error) {
	normalized, err := s.Normalize(ctx, rec, source)
	if err != nil {
		s.metrics.ObserveRecord(source, err)
		return nil, err
	}

	if err := s.repo.Upsert(ctx, normalized); err != nil {
		s.metrics.ObserveRecord(source, err)
		s.log.Error("Failed to store record",
			"id", normalized.ID,
			"source", source,
			"error", err,
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Timeout("Storing the record timed out")
		}
		return nil, apperrors.Internal("Failed to store record", err)
	}

	s.metrics.ObserveRecord(source, nil)
	s.log.Info("Record normalized successfully",
		"id", normalized.ID,
		"source", source,
		"code_family", normalized.CodeFamily,
	)
	return normalized, nil
}

func (s *normalizerService) GetRecord(ctx context.Context, id string) (*model.NormalizedRecord, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Record ID cannot be empty")
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Record", id)
		}
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Record ID must be a version 7 UUID")
		}
		s.log.Error("Failed to get record by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve record", err)
	}
	return rec, nil
}

func (s *normalizerService) ListRecords(ctx context.Context, limit int, offset int64) ([]*model.NormalizedRecord, int64, error) {
	var (
		count   int64
		records []*model.NormalizedRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		if err != nil {
			s.log.Error("Failed to count records", "error", err)
			return apperrors.Internal("Failed to count records", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		records, err = s.repo.FindAll(gctx, limit, offset)
		if err != nil {
			s.log.Error("Failed to list records",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve records", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return records, count, nil
}

// recordID returns the client-supplied ID when present. It must be a
// version 7 UUID so the creation instant can be read back from it.
func (s *normalizerService) recordID(rec *model.Record) (uuid.UUID, error) {
	if rec.ID == "" {
		return uuidv7.Generate(), nil
	}

	id, err := uuid.Parse(rec.ID)
	if err != nil || uuidv7.VersionOf(id) != uuidv7.Version {
		return uuid.Nil, apperrors.InvalidInput("Record ID must be a version 7 UUID").
			WithDetails(map[string]any{"id": rec.ID})
	}
	return id, nil
}

// recognizeRecordCode uses the declared family when there is one, otherwise
// the first family that accepts the code.
func (s *normalizerService) recognizeRecordCode(code string, family *string) (*string, string) {
	candidates := envcode.Families()
	label := anyFamily
	if family != nil {
		f, _ := envcode.ParseFamily(*family)
		candidates = []envcode.Family{f}
		label = f.String()
	}

	for _, f := range candidates {
		if canonical, ok := f.Recognize(code); ok {
			s.metrics.ObserveCodeRecognition(label, true)
			return &canonical, f.String()
		}
	}

	s.metrics.ObserveCodeRecognition(label, false)
	return nil, ""
}

func (s *normalizerService) validate(req any, message string) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		s.log.Debug(message, "error", verrs)
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Internal(message, err)
}

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "fieldnorm/pkg/errors"
	"fieldnorm/pkg/fieldx"
	"fieldnorm/pkg/model"
)

const idempotencyKeyHeader = "Idempotency-Key"

// APIError is a non-2xx answer from the normalizer API.
type APIError struct {
	StatusCode int
	apperrors.ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("normalizer API: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// RecordPage is one page of GET /api/v1/records.
type RecordPage struct {
	Records    []*model.NormalizedRecord `json:"data"`
	TotalCount int64                     `json:"total_count"`
	Limit      int                       `json:"limit"`
	Offset     int64                     `json:"offset"`
}

// NormalizerClient is a typed client for the normalizer HTTP API.
type NormalizerClient struct {
	http *HttpClient
}

func NewNormalizerClient(baseURL, signingSecret string) *NormalizerClient {
	c := NewHttpClient(baseURL)
	c.SigningSecret = signingSecret
	return &NormalizerClient{http: c}
}

func (c *NormalizerClient) GenerateID(ctx context.Context) (*model.GenerateIDResponse, error) {
	var out model.GenerateIDResponse
	return &out, c.post(ctx, "/api/v1/ids", nil, nil, http.StatusCreated, &out)
}

func (c *NormalizerClient) DecodeTimestamp(ctx context.Context, id string) (*model.DecodeTimestampResponse, error) {
	var out model.DecodeTimestampResponse
	req := model.DecodeTimestampRequest{ID: id}
	return &out, c.post(ctx, "/api/v1/ids/timestamp", req, nil, http.StatusOK, &out)
}

func (c *NormalizerClient) Trim(ctx context.Context, text *string) (string, error) {
	return c.text(ctx, "/api/v1/text/trim", text)
}

func (c *NormalizerClient) CollapseWhitespace(ctx context.Context, text *string) (string, error) {
	return c.text(ctx, "/api/v1/text/collapse", text)
}

func (c *NormalizerClient) StripMarkup(ctx context.Context, text *string) (string, error) {
	return c.text(ctx, "/api/v1/text/strip", text)
}

func (c *NormalizerClient) RecognizeCode(ctx context.Context, text, family string) (*model.RecognizeCodeResponse, error) {
	var out model.RecognizeCodeResponse
	req := model.RecognizeCodeRequest{Text: text, Family: family}
	return &out, c.post(ctx, "/api/v1/codes/recognize", req, nil, http.StatusOK, &out)
}

func (c *NormalizerClient) JoinNames(ctx context.Context, names ...*string) (string, error) {
	var out model.TextResponse
	err := c.post(ctx, "/api/v1/names/join", model.JoinNamesRequest{Names: names}, nil, http.StatusOK, &out)
	return out.Text, err
}

func (c *NormalizerClient) Address(ctx context.Context, req *model.AddressRequest) (*fieldx.Address, error) {
	var out fieldx.Address
	return &out, c.post(ctx, "/api/v1/addresses", req, nil, http.StatusOK, &out)
}

func (c *NormalizerClient) Digest(ctx context.Context, text string) (*model.DigestResponse, error) {
	var out model.DigestResponse
	return &out, c.post(ctx, "/api/v1/digests", model.DigestRequest{Text: &text}, nil, http.StatusOK, &out)
}

// VerifyDigest checks text against a base64 digest, a UUID digest, or both.
// Empty forms are not sent.
func (c *NormalizerClient) VerifyDigest(ctx context.Context, text, base64Digest, uuidDigest string) (bool, error) {
	var out model.VerifyDigestResponse
	req := model.VerifyDigestRequest{Text: &text, Base64: base64Digest, UUID: uuidDigest}
	err := c.post(ctx, "/api/v1/digests/verify", req, nil, http.StatusOK, &out)
	return out.Valid, err
}

func (c *NormalizerClient) NewToken(ctx context.Context) (string, error) {
	var out model.TokenResponse
	err := c.post(ctx, "/api/v1/tokens", nil, nil, http.StatusCreated, &out)
	return out.Token, err
}

// DateRange lists the days from start to end inclusive, both YYYY-MM-DD.
func (c *NormalizerClient) DateRange(ctx context.Context, start, end string) ([]string, error) {
	var out model.DateRangeResponse
	err := c.post(ctx, "/api/v1/dates/range", model.DateRangeRequest{Start: start, End: end}, nil, http.StatusOK, &out)
	return out.Dates, err
}

func (c *NormalizerClient) Month(ctx context.Context, date string) (*model.MonthResponse, error) {
	var out model.MonthResponse
	return &out, c.post(ctx, "/api/v1/dates/month", model.MonthRequest{Date: date}, nil, http.StatusOK, &out)
}

// CreateRecord submits rec. A non-empty idempotencyKey makes retries of the
// same call replay the first response.
func (c *NormalizerClient) CreateRecord(ctx context.Context, rec *model.Record, idempotencyKey string) (*model.NormalizedRecord, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{idempotencyKeyHeader: idempotencyKey}
	}

	var out model.NormalizedRecord
	return &out, c.post(ctx, "/api/v1/records", rec, headers, http.StatusCreated, &out)
}

func (c *NormalizerClient) GetRecord(ctx context.Context, id string) (*model.NormalizedRecord, error) {
	resp, err := c.http.GET(ctx, "/api/v1/records/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var out model.NormalizedRecord
	if err := resp.DecodeData(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NormalizerClient) ListRecords(ctx context.Context, limit int, offset int64) (*RecordPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.FormatInt(offset, 10))

	resp, err := c.http.GET(ctx, "/api/v1/records?"+query.Encode())
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}

	var page RecordPage
	if err := resp.DecodeJSON(&page); err != nil {
		return nil, fmt.Errorf("decode record page: %w", err)
	}
	return &page, nil
}

func (c *NormalizerClient) text(ctx context.Context, path string, text *string) (string, error) {
	var out model.TextResponse
	err := c.post(ctx, path, model.TextRequest{Text: text}, nil, http.StatusOK, &out)
	return out.Text, err
}

func (c *NormalizerClient) post(ctx context.Context, path string, body any, headers map[string]string, want int, out any) error {
	resp, err := c.http.POSTWithHeaders(ctx, path, body, headers)
	if err != nil {
		return err
	}
	if err := expect(resp, want); err != nil {
		return err
	}
	return resp.DecodeData(out)
}

func expect(resp *Response, want int) error {
	if resp.StatusCode == want {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := resp.DecodeJSON(&apiErr.ErrorResponse); err != nil || apiErr.Code == "" {
		apiErr.Message = string(resp.Body)
	}
	return apiErr
}

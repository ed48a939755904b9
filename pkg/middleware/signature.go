package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "fieldnorm/pkg/errors"
	httputil "fieldnorm/pkg/http"
	"fieldnorm/pkg/logger"
)

const SignatureHeader = "X-Signature-256"

// SignatureVerification requires an HMAC-SHA256 of the request body, hex
// encoded in X-Signature-256 with an optional "sha256=" prefix, on every
// request that carries a body.
func SignatureVerification(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresContentType(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			signature := extractSignature(r)
			if signature == "" {
				logAndReject(w, log, r, "Missing "+SignatureHeader+" header", nil)
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				logAndReject(w, log, r, "Failed to read request body", err)
				return
			}

			if !verifySignature(body, signature, secret) {
				logAndReject(w, log, r, "Invalid request signature", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractSignature(r *http.Request) string {
	header := r.Header.Get(SignatureHeader)
	if header == "" {
		return ""
	}

	signature, found := strings.CutPrefix(header, "sha256=")
	if found {
		return signature
	}

	return header
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}

func verifySignature(body []byte, receivedSignature string, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expectedSignature), []byte(strings.ToLower(receivedSignature)))
}

func logAndReject(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string, err error) {
	log.Warn("Request signature verification failed",
		"request_id", RequestIDFromContext(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"error", err,
	)

	var maxErr *http.MaxBytesError
	if err != nil && errors.As(err, &maxErr) {
		httputil.WriteError(w, apperrors.PayloadTooLarge(maxErr.Limit))
		return
	}
	httputil.WriteError(w, apperrors.Unauthorized(reason))
}

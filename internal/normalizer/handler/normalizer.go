package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fieldnorm/internal/normalizer/service"
	httputil "fieldnorm/pkg/http"
	"fieldnorm/pkg/logger"
	"fieldnorm/pkg/model"
)

type NormalizerHandler struct {
	service service.NormalizerService
	log     *logger.Logger
}

func NewNormalizerHandler(service service.NormalizerService, log *logger.Logger) *NormalizerHandler {
	return &NormalizerHandler{
		service: service,
		log:     log,
	}
}

func (h *NormalizerHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/ids", h.GenerateID)
	router.POST("/api/v1/ids/timestamp", h.DecodeTimestamp)

	router.POST("/api/v1/text/trim", h.Trim)
	router.POST("/api/v1/text/collapse", h.CollapseWhitespace)
	router.POST("/api/v1/text/strip", h.StripMarkup)

	router.POST("/api/v1/codes/recognize", h.RecognizeCode)
	router.POST("/api/v1/names/join", h.JoinNames)
	router.POST("/api/v1/addresses", h.Address)

	router.POST("/api/v1/digests", h.Digest)
	router.POST("/api/v1/digests/verify", h.VerifyDigest)
	router.POST("/api/v1/tokens", h.NewToken)
	router.POST("/api/v1/dates/range", h.DateRange)
	router.POST("/api/v1/dates/month", h.Month)

	router.POST("/api/v1/records", h.CreateRecord)
	router.GET("/api/v1/records", h.ListRecords)
	router.GET("/api/v1/records/:id", h.GetRecord)
}

func (h *NormalizerHandler) GenerateID(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteCreated(w, h.service.GenerateID(r.Context()))
}

func (h *NormalizerHandler) DecodeTimestamp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.DecodeTimestampRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	resp, err := h.service.DecodeTimestamp(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *NormalizerHandler) Trim(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.TextRequest
	if h.decode(w, r, &req, true) {
		httputil.WriteSuccess(w, h.service.Trim(r.Context(), &req))
	}
}

func (h *NormalizerHandler) CollapseWhitespace(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.TextRequest
	if h.decode(w, r, &req, true) {
		httputil.WriteSuccess(w, h.service.CollapseWhitespace(r.Context(), &req))
	}
}

func (h *NormalizerHandler) StripMarkup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.TextRequest
	if h.decode(w, r, &req, true) {
		httputil.WriteSuccess(w, h.service.StripMarkup(r.Context(), &req))
	}
}

func (h *NormalizerHandler) RecognizeCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RecognizeCodeRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	resp, err := h.service.RecognizeCode(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *NormalizerHandler) JoinNames(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.JoinNamesRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	resp, err := h.service.JoinNames(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *NormalizerHandler) Address(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AddressRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	resp, err := h.service.Address(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *NormalizerHandler) Digest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.DigestRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	resp, err := h.service.Digest(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *NormalizerHandler) VerifyDigest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.VerifyDigestRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	resp, err := h.service.VerifyDigest(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *NormalizerHandler) NewToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp, err := h.service.NewToken(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, resp)
}

func (h *NormalizerHandler) DateRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.DateRangeRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	resp, err := h.service.DateRange(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *NormalizerHandler) Month(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.MonthRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	resp, err := h.service.Month(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *NormalizerHandler) CreateRecord(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rec model.Record
	if !h.decode(w, r, &rec, false) {
		return
	}

	normalized, err := h.service.CreateRecord(r.Context(), &rec, model.SourceHTTP)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, normalized)
}

func (h *NormalizerHandler) GetRecord(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, err := h.service.GetRecord(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, rec)
}

func (h *NormalizerHandler) ListRecords(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, total, err := h.service.ListRecords(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WritePaginated(w, records, total, limit, offset)
}

func (h *NormalizerHandler) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	if err := httputil.DecodeJSON(r, v, allowEmpty); err != nil {
		h.log.Debug("Rejected request body",
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteError(w, err)
		return false
	}
	return true
}

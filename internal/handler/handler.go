// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"go.uber.org/zap"
)

const (
	codeNotFound           = "not_found"
	codeForbidden          = "forbidden"
	codeInvalidRequest     = "invalid_request"
	codeInvalidRequestBody = "invalid_request_body"
	codeCapacityExceeded   = "capacity_exceeded"
	codeConflict           = "conflict"
	codeUnauthorized       = "unauthorized"
	codeStoreUnavailable   = "store_unavailable"
	codeInternalError      = "internal_error"
)

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeBadBody(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body: "+err.Error())
}

// statusFor maps an error kind to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest, codeInvalidRequest
	case errors.Is(err, model.ErrCapacityExceeded):
		return http.StatusConflict, codeCapacityExceeded
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, codeConflict
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, codeStoreUnavailable
	default:
		return http.StatusInternalServerError, codeInternalError
	}
}

// respondErr writes err as a JSON error. Server-side failures are logged and
// their details withheld from the client.
func respondErr(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = http.StatusText(status)
	}
	writeError(w, status, code, msg)
}

// nonNil returns s, or an empty slice so that JSON renders [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

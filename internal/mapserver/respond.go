package mapserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Sh00ty/stadium-map/internal/models"
)

const maxBodySize = 1 << 20

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeError maps domain errors to status codes. notFound is the detail
// used for models.ErrNotFound.
func (srv *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeDetail(w, http.StatusNotFound, notFound)
	case errors.Is(err, models.ErrAlreadyExists),
		errors.Is(err, models.ErrInvalidReference),
		errors.Is(err, models.ErrInvalidArgument):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		srv.log.Error().Err(err).Msgf("%s %s failed", r.Method, r.URL.Path)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
	}
}

// decodeBody reports malformed json with 422, as validation errors are.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		writeDetail(w, http.StatusUnprocessableEntity, "request body is required")
		return false
	}
	writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe logs each request at debug and reports timing per status class.
func (srv *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := srv.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := srv.now().Sub(started)
		srv.metrics.Duration("http.request", elapsed)
		srv.metrics.Increment(fmt.Sprintf("http.status.%dxx", rec.status/100))
		srv.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request served")
	})
}

func (srv *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !srv.limiter.Allow() {
			srv.metrics.Increment("http.throttled")
			writeDetail(w, http.StatusTooManyRequests, "too many maintenance requests, retry later")
			return
		}
		next(w, r)
	}
}

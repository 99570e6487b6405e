// Package api serves the trip over HTTP: JSON endpoints for every screen, a
// websocket that streams state changes, and the Prometheus scrape endpoint.
package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sheikh-saqib/tripsync/internal/app"
	"github.com/sheikh-saqib/tripsync/internal/metrics"
	"github.com/sheikh-saqib/tripsync/internal/models"
)

// Server routes requests to the services of one App.
type Server struct {
	app    *app.App
	logger *slog.Logger
	mux    *http.ServeMux
	now    func() time.Time
}

// New builds the handler tree for a.
func New(a *app.App) *Server {
	s := &Server{app: a, logger: a.Logger, mux: http.NewServeMux(), now: time.Now}

	s.mux.HandleFunc("GET /health", s.health)

	s.mux.HandleFunc("GET /expenses", s.listExpenses)
	s.mux.HandleFunc("POST /expenses", s.addExpense)
	s.mux.HandleFunc("DELETE /expenses/{id}", s.removeExpense)
	s.mux.HandleFunc("GET /balances", s.balances)
	s.mux.HandleFunc("GET /settlement", s.settlement)

	s.mux.HandleFunc("GET /squad", s.listSquad)
	s.mux.HandleFunc("POST /squad", s.addMember)
	s.mux.HandleFunc("POST /squad/defaults", s.loadDefaultSquad)
	s.mux.HandleFunc("PUT /squad/{id}", s.renameMember)
	s.mux.HandleFunc("DELETE /squad/{id}", s.removeMember)

	s.mux.HandleFunc("GET /packing", s.listPacking)
	s.mux.HandleFunc("POST /packing", s.addPackingItem)
	s.mux.HandleFunc("POST /packing/{id}/toggle", s.togglePackingItem)
	s.mux.HandleFunc("DELETE /packing/{id}", s.deletePackingItem)

	s.mux.HandleFunc("GET /schedule", s.getSchedule)
	s.mux.HandleFunc("POST /schedule/{day}/items", s.saveScheduleItem)
	s.mux.HandleFunc("DELETE /schedule/{day}/items/{id}", s.deleteScheduleItem)
	s.mux.HandleFunc("POST /schedule/{day}/items/{id}/move", s.moveScheduleItem)
	s.mux.HandleFunc("PUT /schedule/{day}/items/{id}/photos", s.setPhotos)
	s.mux.HandleFunc("PUT /schedule/notes/{id}", s.setNote)

	s.mux.HandleFunc("GET /ws", s.stream)
	s.mux.Handle("GET /metrics", metrics.Handler(a.Registry))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request served",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusRecorder remembers the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &models.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

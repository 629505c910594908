package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"glowup/internal/booking"
	"glowup/internal/catalog"
	"glowup/internal/config"
	"glowup/internal/domain"
	"glowup/internal/export"
	"glowup/internal/metrics"
	"glowup/internal/models"
	"glowup/internal/store"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking API: the public catalog and booking
// submission, the admin list/transition/stream surface, and the advice
// proxy.
type HTTPServer struct {
	cfg      config.ServerConfig
	bookings *booking.Service
	store    domain.BookingStore
	catalog  *catalog.Catalog
	advisor  domain.Advisor
	exporter *export.Exporter
	guard    *Guard
	logger   *zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(
	cfg config.ServerConfig,
	bookings *booking.Service,
	bookingStore domain.BookingStore,
	cat *catalog.Catalog,
	advisor domain.Advisor,
	exporter *export.Exporter,
	guard *Guard,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		store:    bookingStore,
		catalog:  cat,
		advisor:  advisor,
		exporter: exporter,
		guard:    guard,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/services", srv.handleServices)
	mux.HandleFunc("/api/v1/artists", srv.handleArtists)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingSubpath)
	mux.HandleFunc("/api/v1/advice", srv.handleAdvice)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(guard.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the configured root handler. Exposed for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("services")
	writeJSON(w, http.StatusOK, map[string]any{"services": s.catalog.Services()})
}

func (s *HTTPServer) handleArtists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("artists")
	writeJSON(w, http.StatusOK, map[string]any{"artists": s.catalog.Artists()})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_create")

	var b models.Booking
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// The store owns id and createdAt; ignore whatever the client sent.
	b.ID = ""

	if err := s.bookings.Create(r.Context(), &b); err != nil {
		if errors.Is(err, booking.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("create booking failed")
		writeError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"booking": b})
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")
	if !s.guard.IsAdmin(r) {
		writeError(w, http.StatusUnauthorized, "admin token required")
		return
	}

	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings failed")
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("q")
	filtered := booking.Filter(bookings, status, search)
	booking.SortByCreatedAtDesc(filtered)

	writeJSON(w, http.StatusOK, map[string]any{"bookings": filtered})
}

// handleBookingSubpath routes /api/v1/bookings/stream, /api/v1/bookings/export
// and /api/v1/bookings/<id>/status.
func (s *HTTPServer) handleBookingSubpath(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	switch {
	case rest == "stream":
		s.streamBookings(w, r)
	case rest == "export":
		s.exportBookings(w, r)
	case strings.HasSuffix(rest, "/status"):
		id := strings.TrimSuffix(rest, "/status")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.updateStatus(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) updateStatus(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("bookings_status")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.guard.IsAdmin(r) {
		writeError(w, http.StatusUnauthorized, "admin token required")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.bookings.Transition(r.Context(), id, body.Status)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": body.Status})
	case errors.Is(err, booking.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, store.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrUpdateInFlight):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Str("id", id).Msg("status update failed")
		writeError(w, http.StatusInternalServerError, "failed to update status")
	}
}

// streamBookings exposes the synchronization channel over SSE. Every
// delivery is the full collection, re-sorted newest first; duplicate
// deliveries are expected and harmless for the consumer.
func (s *HTTPServer) streamBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_stream")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.guard.IsAdmin(r) {
		writeError(w, http.StatusUnauthorized, "admin token required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	deliveries := make(chan []models.Booking, 8)
	cancel, err := s.store.Subscribe(r.Context(), func(bookings []models.Booking) {
		select {
		case deliveries <- bookings:
		default:
			// Slow consumer; the next delivery carries the full
			// collection anyway.
		}
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("subscribe failed")
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case bookings := <-deliveries:
			booking.SortByCreatedAtDesc(bookings)
			data, err := json.Marshal(bookings)
			if err != nil {
				s.logger.Error().Err(err).Msg("encode stream delivery")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *HTTPServer) exportBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.guard.IsAdmin(r) {
		writeError(w, http.StatusUnauthorized, "admin token required")
		return
	}

	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings for export failed")
		writeError(w, http.StatusInternalServerError, "failed to export bookings")
		return
	}
	booking.SortByCreatedAtDesc(bookings)

	filePath, err := s.exporter.WriteBookings(bookings)
	if err != nil {
		s.logger.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "failed to export bookings")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(filePath)))
	http.ServeFile(w, r, filePath)
}

func (s *HTTPServer) handleAdvice(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("advice")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.advisor.Advise(r.Context(), body.Message)
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.store.Backend(),
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps the SSE stream working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

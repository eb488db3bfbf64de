// Package api serves location inference results and spending summaries
// over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Veraticus/receipt-atlas/internal/engine"
	"github.com/Veraticus/receipt-atlas/internal/export"
	"github.com/Veraticus/receipt-atlas/internal/model"
	"github.com/Veraticus/receipt-atlas/internal/spending"
)

// Server answers API requests. Every request reads a fresh receipt snapshot
// and runs its own inference; nothing is cached between requests.
type Server struct {
	engine  *engine.LocationEngine
	source  engine.ReceiptSource
	origins []string
}

// NewServer creates a server. An empty origins list allows any origin.
func NewServer(eng *engine.LocationEngine, source engine.ReceiptSource, origins []string) *Server {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		engine:  eng,
		source:  source,
		origins: origins,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", s.handleLocations)
			r.Get("/geojson", s.handleGeoJSON)
			r.Get("/{key}/records", s.handleRecords)
		})
		r.Route("/date", func(r chi.Router) {
			r.Get("/sort_by_year", s.handleSpending(spending.ByYear))
			r.Get("/sort_by_week", s.handleSpending(spending.ByWeekday))
			r.Get("/sort_by_month", s.handleSpending(spending.ByMonth))
			r.Get("/total_by_date", s.handleTotalByDate)
			r.Get("/insights", s.handleInsights)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := s.httpServer(addr)
	return serve(ctx, srv, srv.ListenAndServe)
}

// ListenAndServeTLS is ListenAndServe over HTTPS with the given certificate.
func (s *Server) ListenAndServeTLS(ctx context.Context, addr string, cert tls.Certificate) error {
	srv := s.httpServer(addr)
	srv.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	return serve(ctx, srv, func() error { return srv.ListenAndServeTLS("", "") })
}

func (s *Server) httpServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func serve(ctx context.Context, srv *http.Server, listen func() error) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", srv.Addr, "tls", srv.TLSConfig != nil)
		errCh <- listen()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	result, ok := s.export(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	result, ok := s.export(w, r)
	if !ok {
		return
	}

	data, err := result.GeoJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, ok := s.export(w, r)
	if !ok {
		return
	}

	records, found := result.Records[key]
	if !found {
		writeError(w, http.StatusNotFound, errors.New("unknown location "+key))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSpending(summarize func([]model.Receipt) spending.Summary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		receipts, err := s.source.ListReceipts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, summarize(receipts))
	}
}

func (s *Server) handleTotalByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := spending.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	receipts, err := s.source.ListReceipts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	total, err := spending.TotalOnDate(receipts, date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.source.ListReceipts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, spending.BuildInsights(receipts))
}

// export runs inference for one request, writing an error response when it
// fails.
func (s *Server) export(w http.ResponseWriter, r *http.Request) (*export.Result, bool) {
	run, err := s.engine.Detect(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return export.Build(run.Set, run.Report.Result), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

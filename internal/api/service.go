// Package api serves the local HTTP surface: ingestion for the platform
// shims, timer control, history, settings, exports and the event stream.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/bandarsiri8/ubertimetracker/internal/api/sse"
	"github.com/bandarsiri8/ubertimetracker/internal/db/sqlite"
	"github.com/bandarsiri8/ubertimetracker/internal/export"
	"github.com/bandarsiri8/ubertimetracker/internal/source"
	"github.com/bandarsiri8/ubertimetracker/internal/status"
	"github.com/bandarsiri8/ubertimetracker/internal/timer"
)

// Exporter renders (and optionally uploads) one month. Implemented by
// export.Exporter.
type Exporter interface {
	ExportMonth(ctx context.Context, yearMonth string, upload bool) (*export.Result, error)
}

// Service is the HTTP API over the tracker core.
type Service struct {
	version     string
	aggregator  *status.Aggregator
	machine     *timer.Machine
	sessions    *sqlite.SessionStore
	pauses      *sqlite.PauseStore
	settings    *sqlite.SettingsStore
	ingest      *source.NotificationIngest
	exporter    Exporter
	broadcaster *sse.Broadcaster
	router      chi.Router
}

// Options carries the service's collaborators.
type Options struct {
	Version     string
	Aggregator  *status.Aggregator
	Machine     *timer.Machine
	Sessions    *sqlite.SessionStore
	Pauses      *sqlite.PauseStore
	Settings    *sqlite.SettingsStore
	Ingest      *source.NotificationIngest
	Exporter    Exporter
	Broadcaster *sse.Broadcaster
}

// NewService assembles the router with all routes mounted.
func NewService(opts Options) *Service {
	svc := &Service{
		version:     opts.Version,
		aggregator:  opts.Aggregator,
		machine:     opts.Machine,
		sessions:    opts.Sessions,
		pauses:      opts.Pauses,
		settings:    opts.Settings,
		ingest:      opts.Ingest,
		exporter:    opts.Exporter,
		broadcaster: opts.Broadcaster,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	svc.router = router
	svc.setupRoutes()
	return svc
}

// Router exposes the mounted routes for the HTTP server and tests.
func (s *Service) Router() http.Handler {
	return s.router
}

func (s *Service) setupRoutes() {
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/debuglog", s.handleDebugLog)

		r.Post("/observations/screen", s.handleScreenObservation)
		r.Post("/observations/notification", s.handleNotificationObservation)

		r.Post("/timer/start", s.timerHandler(s.machine.Start))
		r.Post("/timer/pause", s.timerHandler(s.machine.Pause))
		r.Post("/timer/resume", s.timerHandler(s.machine.Resume))
		r.Post("/timer/stop", s.timerHandler(s.machine.Stop))

		r.Get("/sessions", s.handleSessionsRange)
		r.Get("/sessions/month/{month}", s.handleSessionsMonth)

		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handlePatchSettings)

		r.Post("/export/{month}", s.handleExport)

		r.Get("/events", s.broadcaster.Handle)
	})
}

// Serve runs the HTTP server on addr until ctx is cancelled.
func (s *Service) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("API listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

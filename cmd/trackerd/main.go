// Package main provides the tracker daemon entry point.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bandarsiri8/ubertimetracker/internal/api"
	"github.com/bandarsiri8/ubertimetracker/internal/api/sse"
	"github.com/bandarsiri8/ubertimetracker/internal/bridge"
	"github.com/bandarsiri8/ubertimetracker/internal/config"
	"github.com/bandarsiri8/ubertimetracker/internal/db/sqlite"
	"github.com/bandarsiri8/ubertimetracker/internal/export"
	"github.com/bandarsiri8/ubertimetracker/internal/source"
	"github.com/bandarsiri8/ubertimetracker/internal/status"
	"github.com/bandarsiri8/ubertimetracker/internal/timer"
	"github.com/bandarsiri8/ubertimetracker/internal/upload"
	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	addr := flag.String("addr", "", "API listen address (default: config or 127.0.0.1:7420)")
	dataDir := flag.String("data-dir", "", "Data directory (default: ~/.ubertimetracker)")
	spoolDir := flag.String("spool-dir", "", "Screen-dump spool directory (default: <data-dir>/spool)")
	offlinePolicy := flag.String("offline-policy", "", "What OFFLINE does to the timer: pause or stop")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *spoolDir != "" {
		cfg.SpoolDir = *spoolDir
	}
	if *offlinePolicy != "" {
		cfg.OfflinePolicy = *offlinePolicy
	}

	dbPath := config.DBPath()
	if *dataDir != "" {
		dbPath = filepath.Join(*dataDir, "ubertimetracker.db")
		cfg.SpoolDir = filepath.Join(*dataDir, "spool")
		cfg.ExportDir = filepath.Join(*dataDir, "exports")
	}

	if err := config.EnsureAll(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure data directories")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down")
		cancel()
	}()

	store, err := sqlite.NewStore(sqlite.StoreConfig{
		Path:     dbPath,
		MaxConns: cfg.MaxConns,
		WALMode:  true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize SQLite store")
	}
	defer store.Close()

	sessions := sqlite.NewSessionStore(store)
	pauses := sqlite.NewPauseStore(store)
	settings := sqlite.NewSettingsStore(store)

	aggregator := status.NewAggregator()
	broadcaster := sse.NewBroadcaster()

	machine := timer.NewMachine(
		&timer.StoreGateway{SessionStore: sessions, PauseStore: pauses},
		timer.WithDebugLog(aggregator.DebugLog()),
	)
	defer machine.Close()
	machine.OnTransition = func(snap timer.Snapshot) {
		broadcaster.Broadcast(sse.Event{Type: "timer", Payload: snap})
	}
	machine.OnTick = func(elapsed time.Duration) {
		broadcaster.Broadcast(sse.Event{Type: "tick", Payload: map[string]int64{
			"elapsed_seconds": int64(elapsed.Seconds()),
		}})
	}

	if err := machine.Reconcile(ctx, timer.ColdStartPolicy(cfg.ColdStart)); err != nil {
		log.Error().Err(err).Msg("Cold-start reconciliation failed")
	}

	var uploader export.Uploader
	if s3, err := upload.NewS3Uploader(ctx, cfg.Upload); err != nil {
		log.Warn().Err(err).Msg("Cloud uploader unavailable")
	} else if s3 != nil {
		uploader = s3
		log.Info().Str("bucket", cfg.Upload.Bucket).Msg("Cloud uploader enabled")
	}
	exporter := export.NewExporter(sessions, pauses, cfg.ExportDir, uploader)

	drv := bridge.New(machine, bridge.OfflinePolicy(cfg.OfflinePolicy), settings)
	drv.AfterStop = func(ctx context.Context, stoppedAt time.Time) error {
		_, err := exporter.ExportMonth(ctx, stoppedAt.Format("2006-01"), true)
		return err
	}

	spool, err := source.NewSpoolWatcher(cfg.SpoolDir, aggregator)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create spool watcher")
	}
	if err := spool.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start spool watcher")
	}
	defer spool.Stop()

	svc := api.NewService(api.Options{
		Version:     Version,
		Aggregator:  aggregator,
		Machine:     machine,
		Sessions:    sessions,
		Pauses:      pauses,
		Settings:    settings,
		Ingest:      source.NewNotificationIngest(aggregator),
		Exporter:    exporter,
		Broadcaster: broadcaster,
	})

	// Committed status changes fan out to the event stream and the bridge.
	bridgeCh := make(chan models.ChangeEvent, 16)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(bridgeCh)
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case event := <-aggregator.Events():
				broadcaster.Broadcast(sse.Event{Type: "status", Payload: event})
				select {
				case bridgeCh <- event:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})
	g.Go(func() error {
		return drv.Run(gctx, bridgeCh)
	})
	g.Go(func() error {
		return svc.Serve(gctx, cfg.ListenAddr)
	})

	log.Info().
		Str("addr", cfg.ListenAddr).
		Str("spool", cfg.SpoolDir).
		Str("offlinePolicy", cfg.OfflinePolicy).
		Str("version", Version).
		Msg("Tracker daemon started")

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("Daemon error")
	}
}

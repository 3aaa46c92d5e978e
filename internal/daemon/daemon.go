package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/healthsync-app/healthsync/internal/api"
	"github.com/healthsync-app/healthsync/internal/app/adherence"
	"github.com/healthsync-app/healthsync/internal/app/analytics"
	"github.com/healthsync-app/healthsync/internal/app/score"
	"github.com/healthsync-app/healthsync/internal/app/streak"
	"github.com/healthsync-app/healthsync/internal/app/tracker"
	"github.com/healthsync-app/healthsync/internal/app/xp"
	"github.com/healthsync-app/healthsync/internal/domain"
	_ "github.com/healthsync-app/healthsync/internal/infra/metrics" // register Prometheus metrics
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
)

// Daemon is the core HealthSync runtime. It wires together all
// services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Server *api.Server
	Log    *zap.Logger

	Streaks   *streak.Service
	Engine    *xp.Engine
	Adherence *adherence.Calculator
	Tracker   *tracker.Service
	Scores    *score.Calculator
	Analytics *analytics.Service

	rollover *Rollover
	cancel   context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	storeDir := cfg.Store.Dir
	if storeDir == "" {
		storeDir = healthsyncHome()
	}
	db, err := sqlite.Open(storeDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	engine, err := xp.NewEngine(db, domain.DefaultLevelTable(), cfg.Rewards)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init xp engine: %w", err)
	}

	adh := adherence.NewCalculator(db)
	streaks := streak.NewService(db)
	trk := tracker.NewService(db, streaks, engine, adh)
	scores := score.NewCalculator(db, adh)
	ana := analytics.NewService(db, adh)

	srv := api.NewServer(db, streaks, engine, adh, trk, scores, ana, log)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	d := &Daemon{
		Config:    cfg,
		DB:        db,
		Server:    srv,
		Log:       log,
		Streaks:   streaks,
		Engine:    engine,
		Adherence: adh,
		Tracker:   trk,
		Scores:    scores,
		Analytics: ana,
	}

	rollover, err := NewRollover(db, adh, engine, scores, cfg.Engine, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init rollover job: %w", err)
	}
	d.rollover = rollover

	return d, nil
}

// Serve starts the HTTP server and the scheduled jobs, and blocks
// until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.rollover.Start()

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		d.rollover.Stop()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	d.Log.Info("healthsync serving",
		zap.String("addr", addr),
		zap.Bool("metrics", d.Config.Telemetry.Prometheus),
	)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.rollover != nil {
		d.rollover.Stop()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.Log != nil {
		_ = d.Log.Sync()
	}
}

// newLogger builds the daemon logger from config. Unknown levels fall
// back to info.
func newLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			level = zapcore.InfoLevel
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err == nil {
			zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.File)
		}
	}
	return zcfg.Build()
}

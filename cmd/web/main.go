// cmd/web/main.go
//
// Kallio waitlist – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Console bootstrap logger, then configuration (conf/.env → global.yaml
//     → WAITLIST_* env).
//
//  2. Daily rotating file logger (tees to console when running in a TTY).
//
//  3. Resolve `vault:` secret references when VAULT_ADDR is set.
//
//  4. Open the database pool and, when enabled, run embedded migrations.
//
//  5. Optional GeoIP reader, form guard, and the chi middleware stack.
//
//  6. Expose Prometheus /metrics and mount every registered component.
//
//  7. Serve until SIGINT or SIGTERM, then drain in-flight requests.
//
// Flags
// -----
//
//	-migrate=up|down|status   run one migration command and exit
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/waitlist/internal/component"
	"github.com/yanizio/waitlist/internal/config"
	"github.com/yanizio/waitlist/internal/database"
	"github.com/yanizio/waitlist/internal/form"
	"github.com/yanizio/waitlist/internal/logger"
	"github.com/yanizio/waitlist/internal/middleware"
	"github.com/yanizio/waitlist/internal/requestinfo"
	"github.com/yanizio/waitlist/internal/server"
	"github.com/yanizio/waitlist/internal/vault"
	"github.com/yanizio/waitlist/migrations"

	_ "github.com/yanizio/waitlist/components/health"
	_ "github.com/yanizio/waitlist/components/waitlist"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	boot := logger.Bootstrap()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatalw("load config", "err", err)
	}

	log, err := logger.New(logger.Options{
		Dir:   cfg.Log.Dir,
		Level: cfg.Log.Level,
		Tee:   cfg.Log.Console || runningInTTY(),
	})
	if err != nil {
		boot.Fatalw("start logger", "err", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *migrateCmd); err != nil {
		log.Errorw("waitlist exited", "err", err)
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
	log.Infow("waitlist stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, migrateCmd string) error {
	//
	// ── 1.  Secrets ─────────────────────────────────────────────────────
	//
	if cfg.HasSecretRefs() {
		if !vault.Configured() {
			log.Warnw("config holds vault references but VAULT_ADDR is not set")
		} else {
			vc, err := vault.New(ctx, log, cfg.Vault.CacheTTL)
			if err != nil {
				return err
			}
			if err := config.ResolveSecrets(ctx, cfg, vc); err != nil {
				return err
			}
			log.Infow("secrets resolved from vault")
		}
	}

	//
	// ── 2.  Database ────────────────────────────────────────────────────
	//
	dsn, err := cfg.Database.ConnString()
	if err != nil {
		return err
	}
	opts := database.DefaultOptions()
	opts.MaxOpenConns = cfg.Database.MaxOpenConns
	opts.MaxIdleConns = cfg.Database.MaxIdleConns
	opts.ConnMaxLifetime = cfg.Database.ConnMaxLifetime

	db, err := database.OpenWithOptions(ctx, cfg.Database.Driver, dsn, opts)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Infow("database online", "driver", cfg.Database.Driver)

	m := database.NewMigrator(db.DB, cfg.Database.Driver, migrations.FS, log)
	if migrateCmd != "" {
		return m.Run(ctx, migrateCmd)
	}
	if cfg.Database.Migrate {
		if err := m.Up(ctx); err != nil {
			return err
		}
	}

	//
	// ── 3.  Request enrichment and form guard ───────────────────────────
	//
	geo, err := requestinfo.OpenGeo(cfg.GeoIP.DBPath)
	if err != nil {
		log.Warnw("geoip disabled", "path", cfg.GeoIP.DBPath, "err", err)
	}
	if geo != nil {
		defer geo.Close()
	}

	guard, err := form.NewGuard(form.GuardOptions{
		Secret:  cfg.Security.CSRFKey,
		MinFill: cfg.Security.MinFillTime,
		MaxAge:  cfg.Security.MaxFormAge,
	}, log)
	if err != nil {
		return err
	}

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(requestinfo.NewEnricher(geo, log).Middleware)

	r.Handle("/metrics", promhttp.Handler())

	env := component.Env{
		Ctx:    ctx,
		Config: cfg,
		DB:     db,
		Log:    log,
		Guard:  guard,
	}
	if err := component.Mount(r, env); err != nil {
		return err
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r, server.Timeouts{
		Read:     cfg.HTTP.ReadTimeout,
		Write:    cfg.HTTP.WriteTimeout,
		Idle:     cfg.HTTP.IdleTimeout,
		Shutdown: cfg.HTTP.ShutdownTimeout,
	}, log)
	return srv.Run(ctx)
}

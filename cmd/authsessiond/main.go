// Command authsessiond serves the session engine over HTTP: password login,
// token refresh and rotation, logout, bulk revocation, account management,
// health, and Prometheus metrics. Credentials live in PostgreSQL, session
// state in Redis.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	authsessions "github.com/joaofns/authsessions"
	"github.com/joaofns/authsessions/metrics/export/prometheus"
	"github.com/joaofns/authsessions/notify"
	pgdir "github.com/joaofns/authsessions/userdir/postgres"
)

type config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	PostgresDSN string `env:"POSTGRES_DSN,required"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret       string        `env:"JWT_SECRET,required"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"authsessiond"`
	AccessTTL       time.Duration `env:"ACCESS_TTL" envDefault:"8h"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"8h"`
	CachePrefix     string        `env:"CACHE_PREFIX"`

	DefaultRole string `env:"DEFAULT_ROLE" envDefault:"Admin"`

	LoginThrottle   bool          `env:"LOGIN_THROTTLE" envDefault:"true"`
	IPThrottle      bool          `env:"IP_THROTTLE" envDefault:"false"`
	RefreshThrottle bool          `env:"REFRESH_THROTTLE" envDefault:"true"`
	MaxLogin        int           `env:"MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LoginCooldown   time.Duration `env:"LOGIN_COOLDOWN" envDefault:"15m"`
	MaxRefresh      int           `env:"MAX_REFRESH_ATTEMPTS" envDefault:"20"`
	RefreshCooldown time.Duration `env:"REFRESH_COOLDOWN" envDefault:"1m"`

	NotifyLogins bool `env:"NOTIFY_LOGINS" envDefault:"false"`
	AuditLog     bool `env:"AUDIT_LOG" envDefault:"true"`

	ProxyHeader string `env:"PROXY_HEADER"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------- credential directory ----------
	manager, err := pgdir.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()

	if err := manager.RunMigrations(ctx); err != nil {
		return err
	}
	logger.Info("postgres ready")

	// ---------- session cache ----------
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	logger.Info("redis ready", "addr", cfg.RedisAddr)

	// ---------- engine ----------
	engine, err := buildEngine(cfg, rdb, manager)
	if err != nil {
		return err
	}
	defer engine.Close()

	// ---------- http ----------
	exporter := prometheus.NewPrometheusExporter(engine)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(engine, exporter, cfg.ProxyHeader, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildEngine(cfg config, rdb redis.UniversalClient, manager *pgdir.Manager) (*authsessions.Engine, error) {
	engineCfg := authsessions.DefaultConfig()
	engineCfg.JWT.Secret = []byte(cfg.JWTSecret)
	engineCfg.JWT.AccessTTL = cfg.AccessTTL
	engineCfg.JWT.Issuer = cfg.JWTIssuer
	engineCfg.Session.CachePrefix = cfg.CachePrefix
	engineCfg.Session.Lifetime = cfg.SessionLifetime
	engineCfg.RateLimit.EnableLoginThrottle = cfg.LoginThrottle
	engineCfg.RateLimit.EnableIPThrottle = cfg.IPThrottle
	engineCfg.RateLimit.EnableRefreshThrottle = cfg.RefreshThrottle
	engineCfg.RateLimit.MaxLoginAttempts = cfg.MaxLogin
	engineCfg.RateLimit.LoginCooldownDuration = cfg.LoginCooldown
	engineCfg.RateLimit.MaxRefreshAttempts = cfg.MaxRefresh
	engineCfg.RateLimit.RefreshCooldownDuration = cfg.RefreshCooldown
	engineCfg.Account.DefaultRole = cfg.DefaultRole
	engineCfg.Notify.Enabled = cfg.NotifyLogins
	engineCfg.Audit.Enabled = cfg.AuditLog

	builder := authsessions.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithDirectory(pgdir.NewRepository(manager.Conn())).
		WithUnitOfWork(manager).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true)

	if cfg.NotifyLogins {
		builder = builder.WithPublisher(notify.NewRedisPublisher(rdb))
	}
	if cfg.AuditLog {
		builder = builder.WithAuditSink(authsessions.NewJSONWriterSink(os.Stdout))
	}

	return builder.Build()
}

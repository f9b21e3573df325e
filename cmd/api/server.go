package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/bookshelf-api/internal/api/handlers"
	mw "github.com/5w1tchy/bookshelf-api/internal/api/middlewares"
	"github.com/5w1tchy/bookshelf-api/internal/api/router"
	"github.com/5w1tchy/bookshelf-api/internal/config"
	"github.com/5w1tchy/bookshelf-api/internal/logger"
	"github.com/5w1tchy/bookshelf-api/internal/maintenance"
	"github.com/5w1tchy/bookshelf-api/internal/registry"
	"github.com/5w1tchy/bookshelf-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/bookshelf-api/internal/snapshot"
	"github.com/5w1tchy/bookshelf-api/internal/storage/s3"
	"github.com/5w1tchy/bookshelf-api/internal/store/books"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to .env file")
	flag.Parse()

	if err := run(*envFile); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Format:      cfg.Log.Format,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Log.Level),
	})
	slog.SetDefault(log)
	for _, w := range cfg.Warnings() {
		log.Warn("config", "warning", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	reg := registry.New(store, registry.WithLogger(log))

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}

	chain := []mw.Middleware{
		mw.RequestID,
		mw.AccessLog(log),
		mw.Recovery,
		mw.Cors(cfg.Server.AllowedOrigins),
		mw.ResponseTime,
		mw.SecurityHeaders(cfg.App.StrictSecurity),
		mw.HPP(mw.DefaultHPPOptions()),
		mw.BodySizeLimit(cfg.Server.MaxBodyBytes),
	}
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		if err := pingRedis(ctx, rdb, 2*time.Second); err != nil {
			log.Warn("redis unreachable, rate limits fail open until it recovers", "error", err)
		} else {
			log.Info("connected to redis")
		}
		rl := cfg.RateLimit
		tb := mw.NewRedisTokenBucket(rdb, rl.TokenRate, rl.TokenBurst, mw.PerIPKey("tb"))
		sw := mw.NewRedisSlidingWindow(rdb, rl.WindowLimit, rl.Window, mw.PerIPKey("sw"))
		chain = append(chain, tb.Middleware, sw.Middleware)
	}
	chain = append(chain, mw.Compression)

	var exporter *snapshot.Exporter
	var snapshotsDone <-chan struct{}
	if cfg.Snapshot.Enabled() {
		exporter, err = newExporter(ctx, cfg.Snapshot, reg, log)
		if err != nil {
			return err
		}
		snapshotsDone = maintenance.Start(ctx, "snapshot", cfg.Snapshot.Interval, exporter.Run, log)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           mw.Apply(router.Router(reg, pinger), chain...),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server is running", "addr", server.Addr, "store", cfg.Store.Driver, "tls", cfg.Server.TLS())
		var err error
		if cfg.Server.TLS() {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	if exporter != nil {
		<-snapshotsDone
		if key, err := exporter.Export(shutdownCtx); err != nil {
			log.Error("final snapshot failed", "error", err)
		} else {
			log.Info("final snapshot written", "key", key)
		}
	}
	return nil
}

// openStore returns the configured book store. db is nil for the memory store.
func openStore(ctx context.Context, c config.StoreConfig, log *slog.Logger) (registry.Store, *sql.DB, error) {
	if c.Driver != config.StorePostgres {
		log.Info("using in-memory book store")
		return books.NewMemoryStore(), nil, nil
	}

	db, err := sqlconnect.Connect(ctx, c.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	pg := books.NewPostgresStore(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("using postgres book store")
	return pg, db, nil
}

func newRedis(c config.RedisConfig) (*redis.Client, error) {
	if c.URL != "" {
		// e.g. rediss://default:<token>@host:port
		opt, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = time.Second
		opt.WriteTimeout = time.Second
		return redis.NewClient(opt), nil
	}

	opt := &redis.Options{
		Addr:         c.Addr,
		Username:     c.User,
		Password:     c.Password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
	if c.TLS {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opt), nil
}

func pingRedis(ctx context.Context, rdb *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

func newExporter(ctx context.Context, c config.SnapshotConfig, src snapshot.Source, log *slog.Logger) (*snapshot.Exporter, error) {
	client, err := s3.NewClient(ctx, s3.Config{
		Bucket:          c.Bucket,
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		PathStyle:       c.PathStyle,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return snapshot.NewExporter(src, client, c.Prefix, c.Keep, log), nil
}

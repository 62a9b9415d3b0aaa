// Command authserver runs the authentication service: the session engine
// over HTTP, backed by Postgres with an optional Redis lookup cache.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authcore "github.com/veloraweb/authcore"
	"github.com/veloraweb/authcore/httpapi"
	"github.com/veloraweb/authcore/userstore"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	devLogging := flag.Bool("dev", false, "human-readable logging")
	flag.Parse()

	logger, err := buildLogger(*devLogging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}

	store := userstore.NewPostgres(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	var lookup authcore.UserStore = store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		lookup = userstore.NewCache(store, client, userstore.DefaultCacheTTL, logger)
		logger.Info("user lookup cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	engine, err := buildEngine(cfg, lookup)
	if err != nil {
		return err
	}

	if err := bootstrapAdmin(ctx, cfg, engine, store, logger); err != nil {
		return err
	}

	mux := http.NewServeMux()
	httpapi.NewHandler(engine, logger, store).Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if cfg.MetricsEnabled == nil || *cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func buildEngine(cfg *serverConfig, lookup authcore.UserStore) (*authcore.Engine, error) {
	core := authcore.DefaultConfig()
	core.JWT.Secret = []byte(cfg.JWT.Secret)
	if cfg.JWT.Issuer != "" {
		core.JWT.Issuer = cfg.JWT.Issuer
	}
	if cfg.JWT.Leeway != 0 {
		core.JWT.Leeway = time.Duration(cfg.JWT.Leeway)
	}
	if cfg.Session.CookieName != "" {
		core.Session.CookieName = cfg.Session.CookieName
	}
	if cfg.Session.RefreshThreshold != 0 {
		core.Session.RefreshThreshold = time.Duration(cfg.Session.RefreshThreshold)
	}
	if cfg.Session.CookieSecure != nil {
		core.Session.CookieSecure = *cfg.Session.CookieSecure
	}
	if cfg.MetricsEnabled != nil {
		core.Metrics.Enabled = *cfg.MetricsEnabled
	}
	return authcore.New().WithConfig(core).WithUserStore(lookup).Build()
}

// bootstrapAdmin seeds the first admin account on an empty users table so
// a fresh deployment is reachable without manual SQL.
func bootstrapAdmin(ctx context.Context, cfg *serverConfig, engine *authcore.Engine, store *userstore.Postgres, logger *zap.Logger) error {
	admin := cfg.BootstrapAdmin
	if admin.Email == "" || admin.Password == "" {
		return nil
	}

	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := engine.Hasher().Hash(admin.Password)
	if err != nil {
		return err
	}

	username := admin.Username
	if username == "" {
		username = admin.Email
	}
	user, err := store.Create(ctx, userstore.NewUser{
		Email:        admin.Email,
		Username:     username,
		FullName:     admin.FullName,
		PasswordHash: hash,
		Role:         authcore.RoleAdmin,
		Active:       true,
	})
	if err != nil {
		return err
	}

	logger.Info("bootstrapped initial admin",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)
	return nil
}

// Command server runs the chemconsole identity, directory, and presence
// service. Backends are chosen from configuration: PostgreSQL and Redis when
// configured, in-memory stores otherwise.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"chemconsole/internal/activity"
	"chemconsole/internal/directory"
	"chemconsole/internal/identity/guard"
	"chemconsole/internal/identity/models"
	"chemconsole/internal/identity/provider"
	"chemconsole/internal/identity/resolver"
	"chemconsole/internal/identity/session"
	"chemconsole/internal/identity/store/profile"
	"chemconsole/internal/identity/token"
	"chemconsole/internal/platform/config"
	"chemconsole/internal/platform/health"
	"chemconsole/internal/platform/logger"
	"chemconsole/internal/platform/metrics"
	"chemconsole/internal/platform/middleware"
	platformredis "chemconsole/internal/platform/redis"
	"chemconsole/internal/presence"
	presencestore "chemconsole/internal/presence/store"
	"chemconsole/internal/roles"
	transport "chemconsole/internal/transport/http"
	"chemconsole/migrations"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New()
	m := metrics.New()

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		profileStore  resolver.ProfileStore
		listerStore   directory.ProfileLister
		activityStore activity.EventStore
	)
	if db != nil {
		pg := profile.NewPostgres(db)
		profileStore, listerStore = pg, pg
		activityStore = activity.NewPostgresStore(db)
	} else {
		mem := profile.NewInMemory()
		profileStore, listerStore = mem, mem
		activityStore = activity.NewInMemoryStore()
	}

	var deletionGuard guard.DeletionGuard
	var presenceStore presence.Store
	if redisClient != nil {
		deletionGuard = guard.NewRedis(redisClient.Client, cfg.Resolver.DeletionGuardTTL)
		presenceStore = presencestore.NewRedis(redisClient.Client)
	} else {
		deletionGuard = guard.NewInMemory(guard.WithWindow(cfg.Resolver.DeletionGuardTTL))
		presenceStore = presencestore.NewInMemory()
	}

	tokens := token.NewService(cfg.JWTSigningKey, "chemconsole", 24*time.Hour)
	idp := provider.New(tokens, provider.WithLogger(log))
	seedDevAccounts(idp, cfg, log)

	companies := directory.NewStaticCompanies([]roles.Company{
		{Name: "Synthos", Website: "https://synthos.io"},
		{Name: "Polychem", Website: "https://www.polychem.com"},
		{Name: "Novachem", Website: "https://novachem.de"},
	})

	res := resolver.New(profileStore, deletionGuard,
		resolver.WithLogger(log),
		resolver.WithMetrics(m),
		resolver.WithCompanySource(companies),
		resolver.WithTimeouts(cfg.Resolver.LookupTimeout, cfg.Resolver.CreateTimeout),
	)

	recorder := activity.NewRecorder(activityStore, activity.WithLogger(log))
	defer recorder.Close()

	controller := session.New(idp, res, deletionGuard,
		session.WithLogger(log),
		session.WithMetrics(m),
		session.WithActivityRecorder(recorder),
		session.WithSafetyTimeout(cfg.Resolver.SafetyTimeout),
	)
	controller.Init(context.Background())
	defer controller.Teardown()

	dir := directory.New(listerStore,
		directory.WithLogger(log),
		directory.WithMetrics(m),
	)
	presenceSvc := presence.New(presenceStore,
		presence.WithLogger(log),
		presence.WithMetrics(m),
		presence.WithTTL(cfg.Presence.TTL),
		presence.WithSummarizer(recorder, cfg.Presence.ActivityWindow),
	)

	healthHandler := health.New()
	if db != nil {
		healthHandler.RegisterCheck("postgres", db.Ping)
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			return redisClient.Health(context.Background())
		})
	}

	router := transport.NewRouter(transport.RouterDeps{
		Auth:      transport.NewAuthHandler(controller, res, log),
		Users:     transport.NewUsersHandler(dir, log),
		Presence:  transport.NewPresenceHandler(presenceSvc, log),
		Health:    healthHandler,
		Validator: sessionValidator(tokens),
		Logger:    log,
		Metrics:   m,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}

	if redisClient != nil {
		go recordRedisPoolStats(redisClient)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func sessionValidator(tokens *token.Service) middleware.SessionValidator {
	return token.NewMiddlewareAdapter(tokens)
}

// openDatabase connects and migrates PostgreSQL when configured. A nil
// return with a nil error means in-memory stores.
func openDatabase(cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return nil, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("database ready")
	return db, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	mg, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// seedDevAccounts registers local sign-in identities. Production deployments
// leave DEV_ACCOUNT_PASSWORD unset and integrate a real identity provider.
func seedDevAccounts(idp *provider.Provider, cfg *config.Config, log *slog.Logger) {
	if cfg.DevAccountPassword == "" {
		return
	}
	idp.AddAccount("admin@chemconsole.io", cfg.DevAccountPassword, models.Claims{
		FirstName: "Platform", LastName: "Admin", Role: roles.RoleGlobalAdmin,
	})
	idp.AddAccount("manager@synthos.io", cfg.DevAccountPassword, models.Claims{
		FirstName: "Synthos", LastName: "Manager", Role: "Synthos Admin", CompanyID: "company-synthos",
	})
	idp.AddAccount("employee@synthos.io", cfg.DevAccountPassword, models.Claims{
		FirstName: "Synthos", LastName: "Employee", Role: roles.RoleEmployee, CompanyID: "company-synthos",
	})
	log.Warn("development accounts seeded", "count", 3)
}

func recordRedisPoolStats(client *platformredis.Client) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		client.RecordPoolStats()
	}
}

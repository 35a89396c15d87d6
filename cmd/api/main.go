package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/bookshelf/internal/auth"
	"github.com/crucial707/bookshelf/internal/config"
	"github.com/crucial707/bookshelf/internal/db"
	"github.com/crucial707/bookshelf/internal/handlers"
	"github.com/crucial707/bookshelf/internal/middleware"
	"github.com/crucial707/bookshelf/internal/repo"
	"github.com/crucial707/bookshelf/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg, os.Stdout))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Migrate(cfg.MigrationURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var limiter *middleware.IPRateLimiter
	if cfg.AuthRatePerMinute > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)
	}

	jobsCtx, stopJobs := context.WithCancel(ctx)
	jobsDone, err := scheduler.Start(jobsCtx, slog.Default(), housekeepingJobs(cfg, repo.NewActivityRepo(database), limiter)...)
	if err != nil {
		stopJobs()
		return err
	}
	defer func() {
		stopJobs()
		<-jobsDone
	}()

	router, err := newRouter(database, cfg, limiter)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
		slog.Info("starting server", "addr", srv.Addr, "tls", useTLS)
		if useTLS {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter wires repositories, the auth service and all routes. A nil
// limiter leaves /token and /users unthrottled.
func newRouter(database *sql.DB, cfg config.Config, limiter *middleware.IPRateLimiter) (http.Handler, error) {
	hasher, err := auth.NewPasswordHasher(cfg.PasswordScheme,
		auth.WithBcryptCost(cfg.BcryptCost),
		auth.WithSHA256Rounds(cfg.SHA256CryptRounds),
	)
	if err != nil {
		return nil, err
	}
	users := repo.NewUserRepo(database)
	authSvc := auth.NewService(
		users,
		hasher,
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL),
		auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTPreviousSecrets),
		slog.Default(),
	)

	activity := &handlers.ActivityRecorder{Repo: repo.NewActivityRepo(database)}
	authH := &handlers.AuthHandler{Auth: authSvc}
	userH := &handlers.UserHandler{}
	bookH := &handlers.BookHandler{Repo: repo.NewBookRepo(database), Activity: activity}
	authorH := &handlers.AuthorHandler{Repo: repo.NewAuthorRepo(database), Activity: activity}
	activityH := &handlers.ActivityHandler{Repo: activity.Repo}
	healthH := &handlers.HealthHandler{DB: database}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(slog.Default()))
	r.Use(middleware.Recoverer(slog.Default()))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(cfg.MaxBodyBytes))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", healthH.Health)
	r.Get("/ready", healthH.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/token", authH.Token)
		r.Post("/users", authH.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(authSvc))

		r.Get("/users/me", userH.Me)

		r.Get("/books", bookH.ListBooks)
		r.Post("/books/create", bookH.CreateBook)
		r.Delete("/books/delete/{id}", bookH.DeleteBook)

		r.Get("/authors", authorH.ListAuthors)
		r.Post("/authors/create", authorH.CreateAuthor)

		r.Get("/activity", activityH.ListActivity)
	})

	return r, nil
}

// housekeepingJobs returns the background jobs enabled by cfg.
func housekeepingJobs(cfg config.Config, activity *repo.ActivityRepo, limiter *middleware.IPRateLimiter) []scheduler.Job {
	var jobs []scheduler.Job
	if !strings.EqualFold(cfg.ActivityPruneSchedule, "off") {
		jobs = append(jobs, scheduler.Job{
			Name: "prune-activity",
			Spec: cfg.ActivityPruneSchedule,
			Run: func(ctx context.Context) error {
				n, err := activity.Prune(ctx, time.Now().Add(-cfg.ActivityRetention))
				if err != nil {
					return err
				}
				slog.Info("pruned activity log", "deleted", n)
				return nil
			},
		})
	}
	if limiter != nil {
		jobs = append(jobs, scheduler.Job{
			Name: "sweep-rate-limiter",
			Spec: "@every 10m",
			Run: func(context.Context) error {
				limiter.Sweep(10 * time.Minute)
				return nil
			},
		})
	}
	return jobs
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

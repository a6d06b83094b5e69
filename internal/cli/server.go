package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	api "github.com/kaaratech/mcq-assessment/internal/api/http"
	"github.com/kaaratech/mcq-assessment/internal/attempt"
	"github.com/kaaratech/mcq-assessment/internal/audit"
	"github.com/kaaratech/mcq-assessment/internal/auth"
	"github.com/kaaratech/mcq-assessment/internal/catalog"
	"github.com/kaaratech/mcq-assessment/internal/config"
	"github.com/kaaratech/mcq-assessment/internal/db"
	"github.com/kaaratech/mcq-assessment/internal/identity"
	"github.com/kaaratech/mcq-assessment/internal/ranking"
	"github.com/kaaratech/mcq-assessment/internal/rbac"
)

func newServeCmd(configPath, addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *addr)
		},
	}
}

func runServer(ctx context.Context, configPath, addrFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.HTTPAddr = addrFlag
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	students := identity.NewSQLStore(dbh)
	questions := catalog.NewSQLStore(dbh)

	var source catalog.Source
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		source = catalog.NewRedisCache(rdb, questions, cfg.CatalogTTL)
	} else {
		source = catalog.NewMemoryCache(questions, cfg.CatalogTTL)
	}

	attempts := attempt.NewService(attempt.NewSQLStore(dbh), source, cfg.HardLimit, cfg.Grace).
		WithAudit(audit.NewEventRepo(dbh))
	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenExpiry, students)
	results := ranking.NewService(dbh, source)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/token", api.LoginHandler(authSvc))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc, cfg.AdminEmail))

		pr.With(rbac.Require("quiz:take")).
			Get("/questions", api.QuestionsHandler(attempts))
		pr.With(rbac.Require("quiz:status")).
			Get("/quiz-status", api.StatusHandler(attempts))
		pr.With(rbac.Require("quiz:submit")).
			Post("/submit", api.SubmitHandler(attempts))

		pr.With(rbac.Require("results:view")).
			Get("/admin/results", api.ResultsHandler(results))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return server.Shutdown(shutdownCtx)
}

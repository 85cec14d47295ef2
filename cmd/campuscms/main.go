// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"campuscms/internal/config"
	"campuscms/internal/handler"
	"campuscms/internal/imaging"
	"campuscms/internal/imghost"
	"campuscms/internal/logging"
	"campuscms/internal/middleware"
	"campuscms/internal/render"
	"campuscms/internal/scheduler"
	"campuscms/internal/service"
	"campuscms/internal/session"
	"campuscms/internal/store"
	"campuscms/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers standard CRUD routes for a dashboard resource.
// Routes: GET /, GET /new, POST /, GET /{id}, POST /{id}, POST /{id}/delete
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + handler.RouteParamID
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(baseID, h.EditForm)
	r.Post(baseID, h.Update) // HTML forms can't send PUT
	r.Post(baseID+handler.RouteSuffixDelete, h.Delete)
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Campus CMS - campus news and events site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSCMS_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSCMS_DB_PATH           SQLite database path (default: ./data/campuscms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSCMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUSCMS_IMAGE_HOST_KEY    API key for the image hosting service (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("campuscms %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the audit log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	auditHandler := logging.NewAuditHandler(textHandler, db)
	logger = slog.New(auditHandler)
	slog.SetDefault(logger)
	slog.Info("audit log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		SiteName:       cfg.SiteName,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Start the tag join reconciliation scheduler
	sched := scheduler.New(db, logger, cfg.ReconcileSchedule)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Image upload pipeline: local processing, external hosting
	imageClient := imghost.New(cfg.ImageHostURL, cfg.ImageHostKey)
	if imageClient.Enabled() {
		slog.Info("image hosting enabled", "url", cfg.ImageHostURL)
	} else {
		slog.Warn("image hosting disabled: no API key configured")
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	// Handlers
	contentService := service.NewContentService(db)
	frontendHandler := handler.NewFrontendHandler(contentService, renderer)
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	dashboardHandler := handler.NewDashboardHandler(db, renderer)
	articlesHandler := handler.NewArticlesHandler(db, renderer, sessionManager)
	eventsHandler := handler.NewEventsHandler(db, renderer, sessionManager)
	tagsHandler := handler.NewTagsHandler(db, renderer, sessionManager)
	uploadHandler := handler.NewUploadHandler(imaging.NewProcessor(), imageClient)
	healthHandler := handler.NewHealthHandler(db)

	// Router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Public frontend routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalLoadUser(sessionManager, db))

		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteArticles, frontendHandler.ListArticles)
		r.Get(handler.RouteArticles+handler.RouteTagName, frontendHandler.ArticlesByTag)
		r.Get(handler.RouteArticles+handler.RouteParamSlug, frontendHandler.ArticleDetail)
		r.Get(handler.RouteEvents, frontendHandler.ListEvents)
		r.Get(handler.RouteEvents+handler.RouteTagName, frontendHandler.EventsByTag)
		r.Get(handler.RouteEvents+handler.RouteParamID, frontendHandler.EventDetail)
	})

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RedirectIfAuthenticated(sessionManager))
			r.Get(handler.RouteLogin, authHandler.LoginForm)
			r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
			r.Get(handler.RouteRegister, authHandler.RegisterForm)
			r.Post(handler.RouteRegister, authHandler.Register)
		})

		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Dashboard routes - session gated
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireAuth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))

		r.Get(handler.RouteRoot, dashboardHandler.Index)

		registerCRUD(r, handler.RouteArticles, crudHandlers{
			List: articlesHandler.List, NewForm: articlesHandler.NewForm, Create: articlesHandler.Create,
			EditForm: articlesHandler.EditForm, Update: articlesHandler.Update, Delete: articlesHandler.Delete,
		})
		registerCRUD(r, handler.RouteEvents, crudHandlers{
			List: eventsHandler.List, NewForm: eventsHandler.NewForm, Create: eventsHandler.Create,
			EditForm: eventsHandler.EditForm, Update: eventsHandler.Update, Delete: eventsHandler.Delete,
		})

		r.Get(handler.RouteTags, tagsHandler.List)
		r.Post(handler.RouteTags, tagsHandler.Create)
		r.Post(handler.RouteTags+handler.RouteParamID+handler.RouteSuffixDelete, tagsHandler.Delete)

		r.Post(handler.RouteUploadImage, uploadHandler.UploadImage)
	})

	r.Get("/health", healthHandler.Health)

	// Static file serving: cache for 1 year
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticHandler := middleware.StaticCache(31536000)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/*", staticHandler)

	r.NotFound(frontendHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

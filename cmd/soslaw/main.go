// Copyright (c) 2026 The SOSLAW Authors
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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/cache"
	"github.com/soslaw/soslaw-web/internal/config"
	"github.com/soslaw/soslaw-web/internal/geoip"
	"github.com/soslaw/soslaw-web/internal/guard"
	"github.com/soslaw/soslaw-web/internal/handler"
	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/logging"
	"github.com/soslaw/soslaw-web/internal/mail"
	"github.com/soslaw/soslaw-web/internal/middleware"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/query"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/scheduler"
	"github.com/soslaw/soslaw-web/internal/service"
	"github.com/soslaw/soslaw-web/internal/session"
	"github.com/soslaw/soslaw-web/internal/store"
	"github.com/soslaw/soslaw-web/internal/version"
	"github.com/soslaw/soslaw-web/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "SOSLAW web - legal consultancy site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOSLAW_SESSION_SECRET   Session and CSRF key material (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOSLAW_API_BASE_URL     Backend REST API (default: http://localhost:5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOSLAW_DB_PATH          SQLite database path (default: ./data/soslaw.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOSLAW_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOSLAW_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOSLAW_REDIS_URL        Redis URL for a shared query cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOSLAW_GEOIP_DB_PATH    GeoLite2 country database for language hints (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SOSLAW_RESEND_API_KEY   Resend key for conference confirmation emails (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsDevelopment())
	slog.SetDefault(logger)

	if err := i18n.Init(logger, cfg.DefaultLang); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
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

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	sessionStore := session.NewStore(db, cfg.IsDevelopment())

	api := apiclient.New(apiclient.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		UserAgent: "soslaw-web/" + version.Version,
		Logger:    logger,
		OnUnauthorized: func(ctx context.Context) {
			logger.InfoContext(ctx, "backend rejected token, ending session")
		},
	})
	services := service.New(api)

	sessions := session.NewManager(session.Config{
		Auth:          services.Auth,
		Store:         sessionStore,
		SecureCookie:  !cfg.IsDevelopment(),
		LogoutTimeout: cfg.LogoutTimeout,
		LoginPath:     "/login",
		Logger:        logger,
	})

	queryCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.QueryStaleTime,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() {
		if err := queryCache.Close(); err != nil {
			slog.Error("error closing query cache", "error", err)
		}
	}()
	queries := query.New(queryCache, cfg.QueryStaleTime, cfg.QueryScopeKey(), logger)

	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("GeoIP disabled", "path", cfg.GeoIPDBPath, "error", err)
		}
	}
	defer func() { _ = geo.Close() }()

	mailer := mail.New(cfg.ResendAPIKey, cfg.MailFrom, logger)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionStore,
		IsDev:          cfg.IsDevelopment(),
		Version:        version.Version,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	deps := handler.Deps{
		Renderer: renderer,
		Services: services,
		Queries:  queries,
		Logger:   logger,
	}
	conferences := store.NewConferences(db)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()
	rateLimiter := middleware.NewRateLimiter(20, 40)

	sched := scheduler.New(logger)

	publicHandler := handler.NewPublicHandler(deps, conferences, mailer)
	publicHandler.SetSite(cfg.SiteURL, cfg.IsDevelopment())
	authHandler := handler.NewAuthHandler(deps, sessions, loginProtection)
	clientHandler := handler.NewClientHandler(deps)
	dashboardHandler := handler.NewDashboardHandler(deps, sched, conferences)
	usersHandler := handler.NewUsersHandler(deps)
	requestsHandler := handler.NewRequestsHandler(deps)
	rolesHandler := handler.NewRolesHandler(deps)
	faqsHandler := handler.NewFAQsHandler(deps)
	healthHandler := handler.NewHealthHandler(db, func(ctx context.Context) error {
		_, err := services.Roles.PublicList(ctx)
		return err
	})

	if err := registerJobs(sched, cfg, publicHandler, geo, rateLimiter); err != nil {
		return fmt.Errorf("registering jobs: %w", err)
	}
	sched.Start()
	defer sched.Stop()

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

	// Probes and metrics skip sessions, CSRF and rate limiting.
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/robots.txt", publicHandler.Robots)
	r.Get("/sitemap.xml", publicHandler.Sitemap)

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	// One year; asset URLs carry the version.
	r.Handle("/static/*", middleware.StaticCache(31536000)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Middleware())
		r.Use(sessionStore.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey(), cfg.IsDevelopment())))
		r.Use(middleware.Language(geo))
		r.Use(sessions.Middleware)
		r.Use(middleware.LogContext)

		// /health shows details to signed-in admins, so it needs the session.
		r.Get("/health", healthHandler.Health)

		routes(r, guard.New(renderer.Loading()), routeHandlers{
			public:    publicHandler,
			auth:      authHandler,
			client:    clientHandler,
			dashboard: dashboardHandler,
			users:     usersHandler,
			requests:  requestsHandler,
			roles:     rolesHandler,
			faqs:      faqsHandler,
			login:     loginProtection,
		})

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			renderer.Error(w, req, http.StatusNotFound)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "api", cfg.APIBaseURL, "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// registerJobs adds the background jobs shown on the dashboard settings page.
func registerJobs(sched *scheduler.Scheduler, cfg *config.Config, public *handler.PublicHandler, geo *geoip.Lookup, rl *middleware.RateLimiter) error {
	if err := sched.Add("warm_public_queries", "Refresh cached roles, FAQs and services",
		cfg.WarmupSchedule, 30*time.Second, public.Warm); err != nil {
		return err
	}
	if cfg.GeoIPEnabled() {
		if err := sched.Add("reload_geoip", "Reload the GeoIP country database",
			"@daily", time.Minute, func(context.Context) error { return geo.Reload() }); err != nil {
			return err
		}
	}
	return sched.Add("prune_rate_limits", "Drop per-IP rate limiters when too many are tracked",
		"@every 10m", 5*time.Second, func(context.Context) error {
			if rl.Prune(10000) {
				slog.Info("rate limiter state pruned")
			}
			return nil
		})
}

type routeHandlers struct {
	public    *handler.PublicHandler
	auth      *handler.AuthHandler
	client    *handler.ClientHandler
	dashboard *handler.DashboardHandler
	users     *handler.UsersHandler
	requests  *handler.RequestsHandler
	roles     *handler.RolesHandler
	faqs      *handler.FAQsHandler
	login     *middleware.LoginProtection
}

func routes(r chi.Router, g *guard.Guard, h routeHandlers) {
	// Public site
	r.Get("/", h.public.Home)
	r.Get("/about", h.public.About)
	r.Get("/roles/{slug}", h.public.Role)
	r.Get("/contact", h.public.ContactForm)
	r.Post("/contact", h.public.Contact)
	r.Get("/conference", h.public.ConferenceForm)
	r.Post("/conference", h.public.Conference)
	r.Get("/lang/{lang}", h.public.SetLanguage)

	// Auth
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.With(h.login.Middleware()).Get("/login", h.auth.LoginForm)
		r.With(h.login.Middleware()).Post("/login", h.auth.LoginSubmit)
		r.Get("/register", h.auth.RegisterForm)
		r.Post("/register", h.auth.RegisterSubmit)
		r.Post("/logout", h.auth.Logout)
		r.Get("/verify-email", h.auth.VerifyEmail)
		r.Post("/verify-email/resend", h.auth.ResendVerification)
		r.Get("/verify-email/{token}", h.auth.ConfirmEmail)
		r.Get("/forgot-password", h.auth.ForgotPasswordForm)
		r.Post("/forgot-password", h.auth.ForgotPassword)
		r.Get("/reset-password/{token}", h.auth.ResetPasswordForm)
		r.Post("/reset-password/{token}", h.auth.ResetPassword)
	})

	// Client area: any signed-in user.
	r.Route("/client", func(r chi.Router) {
		r.Use(g.Require(guard.Options{RequireAuth: true}))
		r.Get("/", h.client.Overview)
		r.Get("/requests", h.client.Requests)
		r.Get("/requests/new", h.client.NewRequestForm)
		r.Post("/requests", h.client.CreateRequest)
		r.Get("/requests/{id}/payment", h.client.PaymentForm)
		r.Post("/requests/{id}/payment", h.client.Pay)
		r.Get("/library", h.client.Library)
		r.Get("/settings", h.client.SettingsForm)
		r.Post("/settings", h.client.ChangePassword)
	})

	// Staff dashboard
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(g.Require(guard.Options{RequireAuth: true, AllowedRoles: model.StaffRoles}))

		r.Get("/", h.dashboard.Index)
		r.Get("/notifications", h.dashboard.Notifications)
		r.Get("/settings", h.dashboard.Settings)
		r.Post("/settings/password", h.dashboard.ChangePassword)

		r.Get("/contacts", h.requests.Contacts)
		r.Post("/contacts/{id}/status", h.requests.ContactStatus)
		r.Post("/contacts/{id}/reply", h.requests.ContactReply)
		r.Post("/contacts/{id}/delete", h.requests.ContactDelete)

		r.Get("/service-requests", h.requests.ServiceRequests)
		r.Post("/service-requests/{id}/status", h.requests.ServiceRequestStatus)
		r.Post("/service-requests/{id}/payment-status", h.requests.ServiceRequestPaymentStatus)
		r.Post("/service-requests/{id}/assign", h.requests.ServiceRequestAssign)
		r.Post("/service-requests/{id}/delete", h.requests.ServiceRequestDelete)

		r.Get("/consultations", h.requests.Consultations)
		r.Post("/consultations/{id}/status", h.requests.ConsultationStatus)
		r.Post("/consultations/{id}/delete", h.requests.ConsultationDelete)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(g.Require(guard.Options{RequireAuth: true, AllowedRoles: []string{model.RoleAdmin}}))

			r.Get("/users", h.users.List)
			r.Get("/users/new", h.users.NewForm)
			r.Post("/users", h.users.Create)
			r.Get("/users/{id}/edit", h.users.EditForm)
			r.Post("/users/{id}", h.users.Update)
			r.Post("/users/{id}/delete", h.users.Delete)
			r.Post("/users/{id}/activate", h.users.Activate)
			r.Get("/consultants", h.users.Consultants)

			r.Get("/roles", h.roles.List)
			r.Get("/roles/new", h.roles.NewForm)
			r.Get("/roles/slug-check", h.roles.CheckSlug)
			r.Post("/roles", h.roles.Create)
			r.Get("/roles/{id}/edit", h.roles.EditForm)
			r.Post("/roles/{id}", h.roles.Update)
			r.Post("/roles/{id}/delete", h.roles.Delete)
			r.Post("/roles/{id}/status", h.roles.SetStatus)
			r.Post("/roles/{id}/order", h.roles.SetOrder)

			r.Get("/faqs", h.faqs.List)
			r.Get("/faqs/new", h.faqs.NewForm)
			r.Post("/faqs", h.faqs.Create)
			r.Post("/faqs/preview", h.faqs.Preview)
			r.Get("/faqs/{id}/edit", h.faqs.EditForm)
			r.Post("/faqs/{id}", h.faqs.Update)
			r.Post("/faqs/{id}/delete", h.faqs.Delete)

			r.Get("/conferences", h.dashboard.Conferences)
			r.Post("/settings/jobs/{name}", h.dashboard.RunJob)
			r.Post("/settings/cache/clear", h.dashboard.ClearCache)
		})
	})
}

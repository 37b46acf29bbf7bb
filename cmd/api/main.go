// Command api serves the TLWD Foundation website and admin dashboard API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tlwd-backend/internal/common/pagination"
	appConfig "tlwd-backend/internal/config"
	pgRepo "tlwd-backend/internal/infra/adapter/persistence/postgres"
	"tlwd-backend/internal/infra/db"
	"tlwd-backend/internal/infra/notifier"
	"tlwd-backend/internal/infra/payment"
	"tlwd-backend/internal/infra/storage"
	"tlwd-backend/internal/observability/logging"
	"tlwd-backend/internal/observability/metrics"
	"tlwd-backend/internal/observability/tracing"
	"tlwd-backend/pkg/config"
	"tlwd-backend/pkg/security/csp"

	applicationUC "tlwd-backend/internal/usecase/application"
	commentUC "tlwd-backend/internal/usecase/comment"
	contactUC "tlwd-backend/internal/usecase/contact"
	contentUC "tlwd-backend/internal/usecase/content"
	dashboardUC "tlwd-backend/internal/usecase/dashboard"
	donationUC "tlwd-backend/internal/usecase/donation"
	"tlwd-backend/internal/usecase/notify"
	settingUC "tlwd-backend/internal/usecase/setting"
	subscriberUC "tlwd-backend/internal/usecase/subscriber"

	hhttp "tlwd-backend/internal/handler/http"
	happlication "tlwd-backend/internal/handler/http/application"
	hauth "tlwd-backend/internal/handler/http/auth"
	hcontact "tlwd-backend/internal/handler/http/contact"
	hcontent "tlwd-backend/internal/handler/http/content"
	hdashboard "tlwd-backend/internal/handler/http/dashboard"
	hdonation "tlwd-backend/internal/handler/http/donation"
	"tlwd-backend/internal/handler/http/middleware"
	hproxy "tlwd-backend/internal/handler/http/proxy"
	"tlwd-backend/internal/handler/http/requestid"
	hsetting "tlwd-backend/internal/handler/http/setting"
	hsubscriber "tlwd-backend/internal/handler/http/subscriber"
	"tlwd-backend/internal/handler/http/upload"
	authservice "tlwd-backend/internal/service/auth"
)

func main() {
	_ = godotenv.Load()
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	secret := validateJWTSecret(logger)
	shutdownTracing := tracing.Init(config.GetEnvBool("TRACING_ENABLED", false), "tlwd-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	components := setupServer(ctx, logger, database, secret, getVersion())
	runServer(ctx, cancel, logger, components)

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error("tracer shutdown failed", slog.Any("error", err))
	}
}

// validateJWTSecret rejects a missing, short or well-known signing secret.
func validateJWTSecret(logger *slog.Logger) string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	// セキュリティ: 最小32文字（256ビット）を強制
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	for _, weak := range []string{"secret", "password", "test", "admin", "default"} {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
	return secret
}

// initDatabase opens the pool and creates the schema.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// ServerComponents holds what runServer starts and stops.
type ServerComponents struct {
	Addr     string
	Handler  http.Handler
	Limiters []*hhttp.RateLimiter
	Notify   notify.Service
}

// setupServer wires repositories, services and routes.
func setupServer(ctx context.Context, logger *slog.Logger, database *sql.DB, secret, version string) *ServerComponents {
	frontendURL := config.GetEnvString("FRONTEND_URL", "https://tlwdfoundation.org")
	templates := notifier.Templates{
		FrontendURL: frontendURL,
		AdminEmail:  config.GetEnvString("ADMIN_EMAIL", "admin@tlwd.org"),
	}
	paginationCfg := pagination.LoadFromEnv()
	uploads := upload.Parser{MaxBytes: int64(config.GetEnvInt("UPLOAD_MAX_BYTES", int(upload.DefaultMaxBytes)))}

	types, err := appConfig.LoadContentTypes(os.Getenv("CONTENT_TYPES_FILE"))
	if err != nil {
		logger.Error("failed to load content types", slog.Any("error", err))
		os.Exit(1)
	}

	mailer := newMailer(logger)
	assets := newAssetStore(logger)

	// 認証
	users := pgRepo.NewUserRepo(database)
	tokens := authservice.NewTokens(secret, config.GetEnvDuration("JWT_TTL", 7*24*time.Hour))
	authSvc := authservice.NewAuthService(users, tokens)
	authSvc.Logger = logger
	seedSuperAdmin(ctx, logger, authSvc)

	subscriberSvc := &subscriberUC.Service{
		Repo:          pgRepo.NewSubscriberRepo(database),
		Mailer:        mailer,
		Templates:     templates,
		MaxConcurrent: config.GetEnvPositiveInt("BROADCAST_MAX_CONCURRENT", 5),
		Pagination:    paginationCfg,
		Logger:        logger,
	}
	events := notify.NewService([]notify.Listener{
		&notify.Announcer{Broadcaster: subscriberSvc, FrontendURL: frontendURL, Logger: logger},
	}, config.GetEnvPositiveInt("NOTIFY_MAX_CONCURRENT", 4), logger)

	secretKey := os.Getenv("PAYSTACK_SECRET_KEY")
	if secretKey == "" {
		logger.Warn("PAYSTACK_SECRET_KEY not set, donation checkout will fail")
	}
	donationRepo := pgRepo.NewDonationRepo(database)
	donationSvc := &donationUC.Service{
		Repo: donationRepo,
		Gateway: payment.NewPaystack(payment.PaystackConfig{
			SecretKey:   secretKey,
			BaseURL:     os.Getenv("PAYSTACK_BASE_URL"),
			CallbackURL: config.GetEnvString("PAYSTACK_CALLBACK_URL", frontendURL+"/donate/verify"),
			Timeout:     config.GetEnvDuration("PAYSTACK_TIMEOUT", 15*time.Second),
		}, logger),
		Mailer:    mailer,
		Templates: templates,
		Logger:    logger,
	}

	contentRepo := pgRepo.NewContentRepo(database)
	commentSvc := &commentUC.Service{Repo: pgRepo.NewCommentRepo(database), Posts: contentRepo}
	applicationRepo := pgRepo.NewApplicationRepo(database)
	subscriberRepo := pgRepo.NewSubscriberRepo(database)

	// Rate limits: auth and public writes
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	extractor := middleware.NewIPExtractor(proxyConfig)
	if proxyConfig.Enabled {
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	}
	window := config.GetEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute)
	authLimiter := hhttp.NewRateLimiter("auth", config.GetEnvPositiveInt("RATE_LIMIT_AUTH", 10), window, extractor)
	publicLimiter := hhttp.NewRateLimiter("public", config.GetEnvPositiveInt("RATE_LIMIT_PUBLIC", 30), window, extractor)

	admin := hauth.Admin(tokens)
	mux := http.NewServeMux()

	for _, ct := range types.All() {
		svc := &contentUC.Service{
			Type:   ct,
			Repo:   contentRepo,
			Assets: assets,
			Events: events,
			Logger: logger,
		}
		opts := hcontent.Options{
			Pagination: paginationCfg,
			Uploads:    uploads,
			Admin:      admin,
			Limit:      publicLimiter.Limit,
			Logger:     logger,
		}
		if ct.Name == commentUC.PostType {
			svc.DeleteHooks = append(svc.DeleteHooks, commentSvc.DeleteForPost)
			opts.Comments = commentSvc
		}
		hcontent.Register(mux, svc, opts)
	}

	hauth.Register(mux, authSvc, authLimiter.Limit, logger)
	hdonation.Register(mux, donationSvc, paginationCfg, admin, publicLimiter.Limit, logger)
	hsubscriber.Register(mux, subscriberSvc, paginationCfg, upload.Parser{MaxBytes: uploads.MaxBytes, Accept: upload.CSV},
		admin, publicLimiter.Limit, logger)
	happlication.Register(mux, &applicationUC.Service{
		Repo:          applicationRepo,
		Opportunities: contentRepo,
		Assets:        assets,
		Mailer:        mailer,
		Templates:     templates,
		Logger:        logger,
	}, uploads, admin, publicLimiter.Limit, logger)
	hsetting.Register(mux, &settingUC.Service{Repo: pgRepo.NewSettingRepo(database)}, admin)
	hcontact.Register(mux, &contactUC.Service{
		Repo:      pgRepo.NewContactRepo(database),
		Mailer:    mailer,
		Templates: templates,
	}, publicLimiter.Limit, logger)
	hdashboard.Register(mux, &dashboardUC.Service{
		Donations:    donationRepo,
		Applications: applicationRepo,
		Subscribers:  subscriberRepo,
		Content:      contentRepo,
	}, admin)
	hproxy.Register(mux, hproxy.NewPDFHandler(logger))

	// ヘルスチェック（認証不要）
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Listeners: events, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	logger.Info("routes registered", slog.Any("content_types", types.Names()))

	return &ServerComponents{
		Addr:     ":" + config.GetEnvString("PORT", "5000"),
		Handler:  applyMiddleware(logger, mux, frontendURL, uploads.MaxBytes),
		Limiters: []*hhttp.RateLimiter{authLimiter, publicLimiter},
		Notify:   events,
	}
}

func seedSuperAdmin(ctx context.Context, logger *slog.Logger, svc *authservice.AuthService) {
	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Warn("SUPER_ADMIN_EMAIL or SUPER_ADMIN_PASSWORD not set, skipping admin seed")
		return
	}
	created, err := svc.SeedSuperAdmin(ctx, config.GetEnvString("SUPER_ADMIN_NAME", "Super Admin"), email, password)
	if err != nil {
		logger.Error("failed to seed super admin", slog.Any("error", err))
		os.Exit(1)
	}
	if created {
		logger.Info("super admin created", slog.String("email", email))
	}
}

func newMailer(logger *slog.Logger) notifier.Mailer {
	key := os.Getenv("RESEND_API_KEY")
	if key == "" {
		logger.Warn("RESEND_API_KEY not set, emails are logged instead of sent")
		return notifier.NewNoOpMailer(logger)
	}
	return notifier.NewResendMailer(notifier.ResendConfig{
		APIKey:            key,
		From:              config.GetEnvString("MAIL_FROM", "TLWD Foundation <noreply@tlwd.org>"),
		Timeout:           config.GetEnvDuration("MAIL_TIMEOUT", 10*time.Second),
		RequestsPerSecond: config.GetEnvFloat("MAIL_RATE_PER_SECOND", 2),
		Burst:             config.GetEnvInt("MAIL_BURST", 5),
	}, logger)
}

// newAssetStore prefers CLOUDINARY_URL over the split variables.
func newAssetStore(logger *slog.Logger) contentUC.AssetStore {
	cfg := storage.CloudinaryConfig{
		CloudName:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		APIKey:     os.Getenv("CLOUDINARY_API_KEY"),
		APISecret:  os.Getenv("CLOUDINARY_API_SECRET"),
		RootFolder: config.GetEnvString("CLOUDINARY_ROOT_FOLDER", "TLWDF"),
	}
	if raw := os.Getenv("CLOUDINARY_URL"); raw != "" {
		parsed, err := storage.ParseCloudinaryURL(raw)
		if err != nil {
			logger.Error("invalid CLOUDINARY_URL", slog.Any("error", err))
			os.Exit(1)
		}
		parsed.RootFolder = cfg.RootFolder
		cfg = parsed
	}
	if !cfg.Configured() {
		logger.Warn("cloudinary not configured, uploads are discarded")
		return storage.NewNoopStore()
	}
	store, err := storage.NewCloudinary(cfg, logger)
	if err != nil {
		logger.Error("failed to create cloudinary client", slog.Any("error", err))
		os.Exit(1)
	}
	return store
}

// applyMiddleware wraps the mux, outermost first:
// CORS → Request ID → Tracing → Recovery → Logging → Input validation → Security headers → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler, frontendURL string, uploadMax int64) http.Handler {
	origins := config.GetEnvStringList("CORS_ALLOWED_ORIGINS", middleware.DefaultAllowedOrigins)
	policy := middleware.NewOriginPolicy(origins, frontendURL, os.Getenv("ADMIN_URL"))
	corsConfig := middleware.DefaultCORSConfig(policy, logger)
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", policy.GetAllowedOrigins()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods))

	security := middleware.SecurityHeaders(middleware.SecurityConfig{
		DefaultPolicy: csp.APIPolicy(config.GetEnvStringList("CSP_FRAME_ANCESTORS", nil)...),
		HSTS:          config.GetEnvBool("HSTS_ENABLED", true),
	})

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = security(chain)
	chain = hhttp.InputValidation(uploadMax + 1<<20)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	chain = middleware.CORS(corsConfig)(chain)
	return chain
}

// runServer blocks until SIGINT or SIGTERM, then drains requests and events.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, components *ServerComponents) {
	interval := config.GetEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)
	for _, l := range components.Limiters {
		go l.RunCleanup(ctx, interval, logger)
	}

	srv := &http.Server{
		Addr:              components.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris 対策
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ConnState: func(_ net.Conn, state http.ConnState) {
			switch state {
			case http.StateNew:
				metrics.ActiveConnections.Inc()
			case http.StateHijacked, http.StateClosed:
				metrics.ActiveConnections.Dec()
			}
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", components.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down server...", slog.String("signal", fmt.Sprint(sig)))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	// 配信中のニュースレターを待つ
	if err := components.Notify.Shutdown(shutdownCtx); err != nil {
		logger.Error("notify shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}

package main

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	adminhandler "servease/backend/internal/admin/handler"
	adminrepo "servease/backend/internal/admin/repository"
	adminservice "servease/backend/internal/admin/service"
	"servease/backend/internal/audit"
	auditrepo "servease/backend/internal/audit/repository"
	authhandler "servease/backend/internal/auth/handler"
	authservice "servease/backend/internal/auth/service"
	"servease/backend/internal/blocklist"
	blocklistrepo "servease/backend/internal/blocklist/repository"
	bookinghandler "servease/backend/internal/booking/handler"
	bookingrepo "servease/backend/internal/booking/repository"
	bookingservice "servease/backend/internal/booking/service"
	cataloghandler "servease/backend/internal/catalog/handler"
	catalogrepo "servease/backend/internal/catalog/repository"
	catalogservice "servease/backend/internal/catalog/service"
	cityhandler "servease/backend/internal/city/handler"
	cityrepo "servease/backend/internal/city/repository"
	"servease/backend/internal/config"
	"servease/backend/internal/db"
	"servease/backend/internal/devotp"
	devotphandler "servease/backend/internal/devotp/handler"
	healthhandler "servease/backend/internal/health/handler"
	kychandler "servease/backend/internal/kyc/handler"
	kycrepo "servease/backend/internal/kyc/repository"
	kycservice "servease/backend/internal/kyc/service"
	"servease/backend/internal/logger"
	"servease/backend/internal/notification"
	otprepo "servease/backend/internal/otp/repository"
	paymenthandler "servease/backend/internal/payment/handler"
	paymentrepo "servease/backend/internal/payment/repository"
	paymentservice "servease/backend/internal/payment/service"
	"servease/backend/internal/ratelimit"
	rolerepo "servease/backend/internal/role/repository"
	roleservice "servease/backend/internal/role/service"
	"servease/backend/internal/security"
	"servease/backend/internal/server"
	"servease/backend/internal/server/middleware"
	sessionrepo "servease/backend/internal/session/repository"
	"servease/backend/internal/telemetry"
	telemetryotel "servease/backend/internal/telemetry/otel"
	"servease/backend/internal/telemetry/producer"
	tenanthandler "servease/backend/internal/tenant/handler"
	tenantrepo "servease/backend/internal/tenant/repository"
	userrepo "servease/backend/internal/user/repository"
)

const serviceName = "servease-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	conn := db.Wrap(sqlDB)

	tokens, err := newTokenProvider(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: serviceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return err
	}
	providers.SetGlobal()
	instruments, err := telemetryotel.NewHTTPInstruments()
	if err != nil {
		return err
	}

	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kafka := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.EventsKafkaTopic); kafka != nil {
		defer kafka.Close()
		emitters = append(emitters, kafka)
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokersList()), zap.String("topic", cfg.EventsKafkaTopic))
	}
	events := telemetry.Fanout(emitters...)

	redisClient, err := newRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		log.Info("throttles backed by redis")
	}
	limiter := newLimiter(ctx, redisClient, "servease:ratelimit", cfg.RateLimitRequests, cfg.RateLimitWindowDuration())
	otpLimiter := newLimiter(ctx, redisClient, "servease:otp-verify", cfg.OTPVerifyAttempts, cfg.OTPTTL())

	var mailer notification.Mailer
	if cfg.MailAPIKey != "" {
		mailer = notification.NewHTTPMailer(cfg.MailAPIKey, cfg.MailAPIURL, cfg.MailFromEmail, cfg.MailFromName, cfg.OTPExpiryMinutes)
	} else {
		log.Warn("MAIL_API_KEY not set; emails are logged instead of sent")
		mailer = notification.NewLogMailer(log)
	}

	var devStore devotp.Store
	var devHandler *devotphandler.Handler
	if cfg.OTPReturnToClient {
		mem := devotp.NewMemoryStore()
		devStore, devHandler = mem, devotphandler.New(mem)
		log.Warn("dev OTP mode enabled; codes are served from GET /api/v1/dev/otp")
	}

	users := userrepo.NewPostgresRepository(conn)
	roles := rolerepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)
	blocklists := blocklistrepo.NewPostgresRepository(conn)
	tenants := tenantrepo.NewPostgresRepository(conn)
	catalog := catalogrepo.NewPostgresRepository(conn)
	kycs := kycrepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(audits, middleware.GetClientIP)

	hasher := security.NewHasher(cfg.Argon2MemoryKiB, cfg.Argon2Iterations, cfg.Argon2Parallelism)
	authSvc := authservice.NewAuthService(
		users,
		otprepo.NewPostgresRepository(conn),
		sessionrepo.NewPostgresRepository(conn),
		mailer,
		hasher,
		tokens,
		cfg.OTPTTL(),
		devStore,
		auditLogger,
	)
	kycSvc := kycservice.NewKYCService(kycs, users, mailer)
	adminSvc := adminservice.NewAdminService(users, roles, adminrepo.NewPostgresRepository(conn), audits)

	router := server.NewRouter(server.Deps{
		Logger:          log,
		Tokens:          tokens,
		Permissions:     roles,
		Blocklist:       blocklists,
		Tenants:         tenants,
		Audit:           auditLogger,
		Events:          events,
		Instruments:     instruments,
		TrustedProxies:  cfg.TrustedProxies,
		Limiter:         limiter,
		RateLimit:       cfg.RateLimitRequests,
		RateLimitWindow: cfg.RateLimitWindowDuration(),
		OTPLimiter:      otpLimiter,
		OTPAttempts:     cfg.OTPVerifyAttempts,
		OTPWindow:       cfg.OTPTTL(),
		CORSOrigins:     cfg.CORSOriginsList(),

		Auth:     authhandler.New(authSvc),
		Admin:    adminhandler.New(adminSvc, roleservice.NewRoleService(roles), kycSvc, blocklist.NewService(blocklists)),
		KYC:      kychandler.New(kycSvc),
		Catalog:  cataloghandler.New(catalogservice.NewCatalogService(catalog, users)),
		Bookings: bookinghandler.New(bookingservice.NewBookingService(bookingrepo.NewPostgresRepository(conn), catalog, users)),
		Payments: paymenthandler.New(paymentservice.NewPaymentService(paymentrepo.NewPostgresRepository(conn))),
		Cities:   cityhandler.New(cityrepo.NewPostgresRepository(conn)),
		Tenant:   tenanthandler.New(tenants),
		DevOTP:   devHandler,
		Health:   healthhandler.New(sqlDB),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      75 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	// In-flight async emits finish before the providers flush.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("otel shutdown", zap.Error(err))
	}
	log.Info("http server stopped")
	return nil
}

// newTokenProvider loads the configured JWT key pair. Outside production a missing pair is
// replaced by an ephemeral key, so tokens do not survive a restart.
func newTokenProvider(cfg *config.Config, log *zap.Logger) (*security.TokenProvider, error) {
	var (
		signer crypto.Signer
		pub    crypto.PublicKey
		err    error
	)
	if cfg.JWTPrivateKey != "" && cfg.JWTPublicKey != "" {
		signer, pub, err = security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
		if err != nil {
			return nil, err
		}
	} else {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required in production")
		}
		signer, err = security.GenerateEphemeralKey()
		if err != nil {
			return nil, err
		}
		pub = signer.Public()
		log.Warn("JWT keys not configured; using an ephemeral signing key")
	}
	return security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
}

// newRedisClient connects to REDIS_URL, or returns nil when it is unset. The client is closed
// when ctx is done.
func newRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()
	return client, nil
}

// newLimiter returns a Redis fixed-window limiter under prefix when client is set, else a
// per-process one.
func newLimiter(ctx context.Context, client *redis.Client, prefix string, limit int, window time.Duration) ratelimit.Limiter {
	if client != nil {
		return ratelimit.NewRedisLimiter(client, prefix, limit, window)
	}
	mem := ratelimit.NewMemoryLimiter(limit, window)
	mem.StartCleanup(ctx, window)
	return mem
}

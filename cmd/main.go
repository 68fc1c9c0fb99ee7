package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpcontext "github.com/cuisports/sportsreg/internal/api/http/context"
	"github.com/cuisports/sportsreg/internal/api/http/router"
	httpserver "github.com/cuisports/sportsreg/internal/api/http/server"
	"github.com/cuisports/sportsreg/internal/config"
	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/mailer"
	"github.com/cuisports/sportsreg/internal/metrics"
	"github.com/cuisports/sportsreg/internal/model"
	"github.com/cuisports/sportsreg/internal/password"
	"github.com/cuisports/sportsreg/internal/regno"
	"github.com/cuisports/sportsreg/internal/repository/memory"
	"github.com/cuisports/sportsreg/internal/repository/postgres"
	redisrepo "github.com/cuisports/sportsreg/internal/repository/redis"
	"github.com/cuisports/sportsreg/internal/server"
	"github.com/cuisports/sportsreg/internal/service"
	storage "github.com/cuisports/sportsreg/internal/storage/minio"
	"github.com/cuisports/sportsreg/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)
	m := metrics.New()

	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set, admin endpoints will reject every request")
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)

	pendingRepo, closePending, err := newPendingStore(ctx, cfg, db)
	if err != nil {
		logger.Fatal("failed to initialize pending store", "backend", cfg.Pending.Backend, "error", err)
	}
	defer closePending()

	storageClient, err := storage.New(ctx, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	otpMailer, err := newMailer(cfg.SMTP, logger)
	if err != nil {
		logger.Fatal("failed to initialize mailer", "error", err)
	}

	codec := regno.NewCodec()
	hasher := password.NewBcrypt(cfg.Bcrypt.Cost)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	otpService := service.NewOTP(otpMailer, logger, m)
	registrationService := service.NewRegistration(userRepo, pendingRepo, storageClient, hasher, otpService, codec, cfg.Pending.TTL, logger, m)
	authService := service.NewAuth(userRepo, hasher, tokenManager, codec, logger, m)

	r := router.New(registrationService, authService, db, httpcontext.NewManager(), m, router.Options{
		AdminToken:     cfg.AdminToken,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}, logger)
	httpServer := httpserver.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP)

	logAppVersion()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server on", "address", httpServer.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := httpServer.Start(sl); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if purgeable, ok := pendingRepo.(model.ExpiredPurger); ok {
		purger := service.NewPurger(purgeable, cfg.Pending.PurgeInterval, logger, m)
		g.Go(func() error {
			return purger.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received interruption signal, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped with error", "error", err)
	}
	logger.Info("shutdown complete")
}

func newPendingStore(ctx context.Context, cfg *config.Config, db *postgres.Connection) (model.PendingStore, func(), error) {
	switch cfg.Pending.Backend {
	case config.PendingBackendRedis:
		client, err := redisrepo.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return redisrepo.NewPendingRepository(client), func() { _ = client.Close() }, nil
	case config.PendingBackendMemory:
		return memory.NewPendingRepository(), func() {}, nil
	default:
		return postgres.NewPendingRepository(db), func() {}, nil
	}
}

func newMailer(cfg config.SMTP, logger *logger.Logger) (model.Mailer, error) {
	if cfg.Host == "" {
		logger.Warn("SMTP host not configured, one-time codes are logged at debug level only")
		return mailer.NewLog(logger), nil
	}

	smtpMailer, err := mailer.NewSMTP(mailer.Options{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		From:     cfg.From,
	})
	if err != nil {
		return nil, err
	}
	return smtpMailer, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

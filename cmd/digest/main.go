package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tendorai/internal/config"
	"tendorai/internal/infra/db"
	"tendorai/internal/infra/mail"
	"tendorai/internal/infra/token"
	"tendorai/internal/usecase"
	digestworker "tendorai/internal/workers/digest"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	once := flag.Bool("once", false, "run a single digest batch and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	store, err := db.NewStore(cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("failed to init store", zap.Error(err))
	}

	service, err := buildDigestService(cfg, store, logger)
	if err != nil {
		logger.Fatal("failed to init digest service", zap.Error(err))
	}
	runner := digestworker.NewRunner(service, cfg.DigestCron, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *once {
		runner.RunOnce(ctx)
		return
	}

	if err := runner.Start(ctx); err != nil {
		logger.Fatal("invalid digest schedule", zap.Error(err))
	}
	<-ctx.Done()
	runner.Stop()
}

func buildDigestService(cfg config.Config, store *db.Store, logger *zap.Logger) (*usecase.DigestService, error) {
	vendorRepo := db.NewVendorRepository(store.DB)
	productRepo := db.NewProductRepository(store.DB)
	mentionRepo := db.NewMentionRepository(store.DB)
	digestRepo := db.NewDigestRepository(store.DB)

	signer, err := token.NewUnsubscribeSigner(cfg.EmailSigningKey)
	if err != nil {
		return nil, err
	}
	sender, err := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, logger)
	if err != nil {
		return nil, err
	}

	visibility := usecase.NewVisibilityService(vendorRepo, productRepo, mentionRepo)
	return usecase.NewDigestService(
		vendorRepo,
		mentionRepo,
		visibility,
		digestRepo,
		mail.NewDigestRenderer(),
		sender,
		signer,
		cfg.FrontendBaseURL,
		cfg.BackendBaseURL,
		logger,
	), nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

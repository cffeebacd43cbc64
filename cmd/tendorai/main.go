package main

import (
	"log"

	"tendorai/internal/config"
	"tendorai/internal/infra/db"
	httpinfra "tendorai/internal/infra/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
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

	srv, err := httpinfra.NewServer(cfg, store, logger)
	if err != nil {
		logger.Fatal("failed to init server", zap.Error(err))
	}
	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := srv.Run(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
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

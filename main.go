package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"stocks-trader/app"
	"stocks-trader/config"
	"stocks-trader/logger"
)

func main() {
	cfg := config.MustLoad()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("starting stocks trader", zap.String("env", cfg.Env))

	application, err := app.New(zl, cfg)
	if err != nil {
		zl.Fatal("failed to init app", zap.Error(err))
	}

	go func() {
		if err := application.Run(); err != nil {
			zl.Error("failed to run app", zap.Error(err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	application.Stop()
	zl.Info("stopped")
}

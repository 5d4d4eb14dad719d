package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/JerryNyoike/lishp"
)

func main() {
	cfg := lishp.ConfigFromEnv()
	if err := cfg.SetupLogging(); err != nil {
		log.Fatalf("bad LISHP_LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}

	core, err := lishp.NewCore(cfg)
	if err != nil {
		log.Fatalf("failed to start core: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"sock":    cfg.SockPath,
		"history": cfg.HistoryPath,
		"http":    cfg.HTTPAddr,
	}).Info("lishp core listening")
	core.Run(ctx)
	log.Info("shut down")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/config"
	"github.com/folio-social/folio-backend/internal/bootstrap"
	cronjob "github.com/folio-social/folio-backend/internal/connections/cron"
	"github.com/folio-social/folio-backend/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker <sync|sync-once|sync-user <uid>>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start services", zap.Error(err))
	}
	defer app.Close()

	switch os.Args[1] {
	case "sync":
		runScheduler(ctx, app, logger)
	case "sync-once":
		sched, err := cronjob.NewScheduler(app.Connections, cfg.Sync.Schedule, cfg.Sync.Lookback, logger)
		if err != nil {
			logger.Fatal("scheduler", zap.Error(err))
		}
		if _, err := sched.RunOnce(ctx); err != nil {
			os.Exit(1)
		}
	case "sync-user":
		if len(os.Args) < 3 {
			log.Fatal("usage: worker sync-user <uid>")
		}
		repairs, err := app.Connections.SyncAcceptedConnections(ctx, os.Args[2])
		if err != nil {
			logger.Fatal("sync failed", zap.String("uid", os.Args[2]), zap.Error(err))
		}
		logger.Info("sync finished", zap.String("uid", os.Args[2]), zap.Int("repairs", repairs))
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runScheduler(ctx context.Context, app *bootstrap.App, logger *zap.Logger) {
	sched, err := cronjob.NewScheduler(app.Connections, app.Config.Sync.Schedule, app.Config.Sync.Lookback, logger)
	if err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}
	sched.Start()
	<-ctx.Done()
	logger.Info("stopping scheduler")
	<-sched.Stop().Done()
}

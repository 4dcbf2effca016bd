package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/gateway/stripegw"
	"github.com/billforge/billforge/internal/gateway/testgw"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/notifier"
	"github.com/billforge/billforge/internal/notifier/webhooknotifier"
	pubsubMemory "github.com/billforge/billforge/internal/pubsub/memory"
	"github.com/billforge/billforge/internal/repository/postgres"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/types"
)

var runOnce = flag.Bool("run-once", false, "Run one lifecycle pass and exit")

func main() {
	flag.Parse()

	// Load .env for local development; env vars win in deployment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		lg.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer db.Close()

	gw, err := newGateway(cfg, lg)
	if err != nil {
		lg.Fatalf("Failed to initialize payment gateway: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := newNotifier(ctx, cfg, lg)
	if err != nil {
		lg.Fatalf("Failed to initialize notifier: %v", err)
	}

	params := service.NewServiceParams(
		lg, cfg,
		postgres.NewPlanRepository(db),
		postgres.NewCouponRepository(db),
		postgres.NewRedemptionRepository(db),
		postgres.NewSubscriptionRepository(db),
		gw,
		n,
		subscription.AcceptAllOwnerResolver{},
	)
	lifecycle := service.NewLifecycleService(params)

	if *runOnce {
		if err := runPass(ctx, lifecycle, lg); err != nil {
			lg.Fatalf("Lifecycle pass failed: %v", err)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Scheduler.ExpirySchedule, func() {
		if err := runPass(ctx, lifecycle, lg); err != nil {
			lg.Errorw("lifecycle pass failed", "error", err)
		}
	}); err != nil {
		lg.Fatalf("Invalid expiry schedule %q: %v", cfg.Scheduler.ExpirySchedule, err)
	}
	c.Start()
	lg.Infow("billing daemon started", "expiry_schedule", cfg.Scheduler.ExpirySchedule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	lg.Infow("shutting down")
	<-c.Stop().Done()
}

// runPass flags overdue subscriptions into grace and then expires everything
// whose expire date has arrived. Per-subscription failures are already
// collected into the batch results; they do not abort the pass.
func runPass(ctx context.Context, lifecycle service.LifecycleService, lg *logger.Logger) error {
	today := types.Today()

	overdue, err := lifecycle.ProcessOverdue(ctx, today)
	if err != nil {
		return err
	}

	expired, err := lifecycle.ExpireDueSubscriptions(ctx, today)
	if err != nil {
		return err
	}

	lg.Infow("lifecycle pass complete",
		"overdue_processed", overdue.Processed,
		"overdue_failed", overdue.Failed,
		"expired_processed", expired.Processed,
		"expired_failed", expired.Failed)
	return nil
}

func newGateway(cfg *config.Configuration, lg *logger.Logger) (gateway.Gateway, error) {
	switch cfg.Gateway.Provider {
	case "stripe":
		return stripegw.NewGateway(cfg, lg)
	default:
		return testgw.NewGateway(lg), nil
	}
}

// newNotifier builds the enabled notification path. The gochannel pubsub is
// in-process, so the consumer draining the topic starts here alongside the
// publisher.
func newNotifier(ctx context.Context, cfg *config.Configuration, lg *logger.Logger) (notifier.Notifier, error) {
	if !cfg.Webhook.Enabled {
		return notifier.NewLogNotifier(lg), nil
	}

	ps := pubsubMemory.NewPubSub(lg)
	consumer := webhooknotifier.NewConsumer(ps, cfg, webhooknotifier.LogHandler(lg), lg)
	if err := consumer.Start(ctx); err != nil {
		return nil, err
	}
	return webhooknotifier.NewNotifier(ps, cfg, lg), nil
}

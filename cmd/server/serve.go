package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/router"
	"github.com/iliyamo/venue-booking/internal/sweeper"
)

func newServeCmd() *cobra.Command {
	var (
		memory  bool
		migrate bool
		broker  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the hold sweeper and the confirmation consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, serveOptions{memory: memory, migrate: migrate, broker: broker})
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "use a seeded in-memory store instead of MySQL")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending schema migrations on start")
	cmd.Flags().BoolVar(&broker, "broker", true, "publish and consume confirmations through RabbitMQ")
	return cmd
}

type serveOptions struct {
	memory  bool
	migrate bool
	broker  bool
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger, opts serveOptions) error {
	st, err := openStorage(ctx, cfg, opts.memory, opts.migrate, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn("redis unavailable; rate limiting and caching disabled", zap.Error(err))
	} else {
		defer func() { _ = rdb.Close() }()
		st.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var notifier booking.Notifier = booking.NotifierFunc(func(_ context.Context, n booking.Notification) error {
		log.Info("booking confirmed", zap.String("booking_id", n.Booking.ID), zap.String("org_id", n.Booking.OrgID))
		return nil
	})
	if opts.broker {
		notifier = queue.NewPublisher(cfg.AMQPURL, log)
	}
	svc := booking.NewService(st.store, notifier, log, nil)

	sw, err := sweeper.New(svc, cfg.SweepSchedule, log)
	if err != nil {
		return err
	}

	e := router.New(router.Deps{
		Service:             svc,
		Log:                 log,
		Redis:               rdb,
		RateLimit:           config.LoadRateLimitConfig(),
		Cache:               config.LoadCacheConfig(),
		JWTSecret:           cfg.JWTSecret,
		StripeWebhookSecret: cfg.StripeWebhookSecret,
		Checks:              st.checks,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", ":"+cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sw.Start()
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return sw.Stop(stopCtx)
	})
	if opts.broker {
		consumer := queue.NewConsumer(cfg.AMQPURL, queue.LogMailer{Log: log},
			rate.NewLimiter(rate.Limit(cfg.NotifyRatePerSec), 1), log)
		g.Go(func() error { return consumer.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

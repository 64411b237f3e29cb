package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	merchantApplication "github.com/rcarvalho-pb/paywave-go/internal/application/merchant"
	"github.com/rcarvalho-pb/paywave-go/internal/application/contracts"
	"github.com/rcarvalho-pb/paywave-go/internal/application/notify"
	"github.com/rcarvalho-pb/paywave-go/internal/application/reconcile"
	"github.com/rcarvalho-pb/paywave-go/internal/application/withdrawal"
	"github.com/rcarvalho-pb/paywave-go/internal/application/worker"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/event"
	"github.com/rcarvalho-pb/paywave-go/internal/domain/webhook"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/config"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/metrics"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/eventbus"
	httpapi "github.com/rcarvalho-pb/paywave-go/internal/infrastructure/http"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/kafka"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/korapay"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/lock"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/mail"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/outbox"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/persistence/sqldb"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, outbox dispatcher and notification worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			logger, err := logging.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *logging.ZapLogger) error {
	counters := &metrics.Counters{}

	db, err := sqldb.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := sqldb.RunMigrations(ctx, db); err != nil {
		return err
	}

	merchants := sqldb.NewMerchantRepository(db)
	settlements := sqldb.NewSettlementRepository(db)
	payouts := korapay.NewClient(cfg.Korapay.BaseURL, cfg.Korapay.SecretKey, cfg.Korapay.Timeout)

	locker, closeLocker := newLocker(cfg, logger)
	defer closeLocker()

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	notifier := &notify.Notifier{
		Mailer:  newMailer(cfg, logger),
		Log:     sqldb.NewDeliveryLog(db),
		Logger:  logger,
		Metrics: counters,
	}

	var sink reconcile.Notifier = notifier
	var queue *worker.NotificationQueue
	if cfg.Notify.Async {
		retry := &worker.RetryScheduler{
			MaxRetry:  cfg.Notify.MaxRetry,
			BaseDelay: cfg.Notify.BaseDelay,
			MaxDelay:  cfg.Notify.MaxDelay,
		}
		queue = worker.NewNotificationQueue(notifier, retry, logger, counters, 256)
		queue.Start(ctx, cfg.Notify.Workers)
		sink = queue
	}

	processor := &reconcile.Processor{
		Verifier: webhook.NewVerifier(cfg.Webhook.Secret),
		Resolver: &reconcile.Resolver{Repo: settlements},
		Dispatcher: &reconcile.Dispatcher{
			Repo:    settlements,
			Payouts: payouts,
			Logger:  logger,
			Metrics: counters,
		},
		Merchants: merchants,
		Locker:    locker,
		Notifier:  sink,
		Logger:    logger,
		Metrics:   counters,
	}

	dispatcher := &outbox.Dispatcher{
		Repo:         sqldb.NewOutboxRepository(db),
		Publisher:    publisher,
		Logger:       logger,
		Metrics:      counters,
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
	}
	go dispatcher.Run(ctx)

	router := httpapi.NewRouter(httpapi.Handlers{
		Webhook: &httpapi.WebhookHandler{
			Processor:       processor,
			SignatureHeader: cfg.Webhook.SignatureHeader,
		},
		Merchant: &httpapi.MerchantHandler{
			Service: &merchantApplication.Service{Repo: merchants},
		},
		Withdrawal: &httpapi.WithdrawalHandler{
			Service: &withdrawal.Service{
				Merchants:   merchants,
				Settlements: settlements,
				Payouts:     payouts,
				Logger:      logger,
			},
		},
		Auth:    &httpapi.Authenticator{Secret: []byte(cfg.Auth.JWTSecret)},
		Metrics: counters,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server running", map[string]any{"port": cfg.Server.Port})
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

	logger.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", map[string]any{"error": err.Error()})
	}
	if queue != nil {
		queue.Wait()
	}

	logger.Info("stopped", map[string]any{"counters": counters.Snapshot()})
	return nil
}

func newLocker(cfg *config.Config, logger logging.Logger) (contracts.Locker, func()) {
	if cfg.Redis.Addr == "" {
		logger.Info("using in-process settlement locks", nil)
		return lock.NewMemoryLocker(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	logger.Info("using redis settlement locks", map[string]any{"addr": cfg.Redis.Addr})
	return lock.NewRedisLocker(client, cfg.Redis.LockTTL), func() { client.Close() }
}

func newPublisher(cfg *config.Config, logger logging.Logger) (contracts.EventPublisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		bus := eventbus.NewInMemoryBus()
		audit := func(_ context.Context, evt event.Event) error {
			logger.Info("settlement event", map[string]any{
				"event-type": string(evt.Type),
				"key":        evt.Key,
			})
			return nil
		}
		bus.Subscribe(event.SettlementApplied, audit)
		bus.Subscribe(event.SettlementFailed, audit)
		bus.Subscribe(event.PayoutFailed, audit)
		return bus, func() {}, nil
	}

	pub, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Error("kafka producer close failed", map[string]any{"error": err.Error()})
		}
	}, nil
}

func newMailer(cfg *config.Config, logger logging.Logger) notify.Mailer {
	if cfg.SMTP.Host == "" {
		return &mail.LogMailer{Logger: logger}
	}
	return mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
}

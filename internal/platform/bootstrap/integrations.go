package bootstrap

import (
	"context"
	"log/slog"

	rediscache "github.com/SscSPs/money_tracker_ledger/internal/adapters/cache/redis"
	"github.com/SscSPs/money_tracker_ledger/internal/adapters/events/kafka"
	"github.com/SscSPs/money_tracker_ledger/internal/core/ports/publishers"
	"github.com/SscSPs/money_tracker_ledger/internal/handlers"
	"github.com/SscSPs/money_tracker_ledger/internal/middleware"
	"github.com/SscSPs/money_tracker_ledger/internal/platform/config"
	"github.com/SscSPs/money_tracker_ledger/internal/utils"
)

// Integrations holds the optional collaborators around the core ledger.
// Every one of them is skipped when its configuration is empty.
type Integrations struct {
	Publisher publishers.ChangePublisher
	Extras    handlers.Extras
	closers   []func()
}

// Close shuts integrations down in reverse order of creation.
func (in *Integrations) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}

// OpenIntegrations connects Redis, Kafka and PostHog and builds the rate limiter.
// An unreachable Redis is logged and idempotency keys are disabled.
func OpenIntegrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Integrations, error) {
	in := &Integrations{Publisher: publishers.NoopPublisher{}}

	if cfg.RedisAddr != "" {
		client, err := rediscache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("Redis unavailable, idempotency keys disabled", slog.String("error", err.Error()))
		} else {
			in.Extras.Idempotency = rediscache.NewIdempotencyStore(client, cfg.IdempotencyTTL)
			in.closers = append(in.closers, func() { client.Close() })
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		in.Publisher = publisher
		in.closers = append(in.closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Error("Failed to flush ledger change publisher", slog.String("error", err.Error()))
			}
		})
		logger.Info("Publishing ledger changes", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaTopic))
	}

	if cfg.RateLimit != "" {
		l, err := middleware.NewLimiter(cfg.RateLimit)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.Extras.Limiter = l
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	if posthogClient.IsInitialized() {
		in.Extras.Posthog = posthogClient
		in.closers = append(in.closers, posthogClient.Close)
	}

	return in, nil
}

package bootstrap

import (
	"context"
	"log/slog"
	"testing"

	"github.com/SscSPs/money_tracker_ledger/internal/core/ports/publishers"
	"github.com/SscSPs/money_tracker_ledger/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_Memory(t *testing.T) {
	storage, err := OpenStorage(context.Background(), &config.Config{StorageDriver: config.StorageMemory}, true)
	require.NoError(t, err)
	defer storage.Close()

	assert.NotNil(t, storage.Repos.AccountRepo)
	assert.NotNil(t, storage.Repos.TxManager)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	_, err := OpenStorage(context.Background(), &config.Config{StorageDriver: "mongo"}, false)
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestOpenIntegrations_AllDisabled(t *testing.T) {
	in, err := OpenIntegrations(context.Background(), &config.Config{}, slog.Default())
	require.NoError(t, err)
	defer in.Close()

	assert.IsType(t, publishers.NoopPublisher{}, in.Publisher)
	assert.Nil(t, in.Extras.Idempotency)
	assert.Nil(t, in.Extras.Limiter)
	assert.Nil(t, in.Extras.Posthog)
}

func TestOpenIntegrations_RateLimit(t *testing.T) {
	in, err := OpenIntegrations(context.Background(), &config.Config{RateLimit: "10-S"}, slog.Default())
	require.NoError(t, err)
	defer in.Close()
	assert.NotNil(t, in.Extras.Limiter)

	_, err = OpenIntegrations(context.Background(), &config.Config{RateLimit: "lots"}, slog.Default())
	assert.Error(t, err)
}

package market

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"farmlink/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(latency time.Duration) *simulatedInfoProvider {
	cfg := &config.Config{GenAI: &config.GenAIConfig{MarketInfoLatency: latency}}

	return NewSimulatedInfoProvider(Params{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).(*simulatedInfoProvider)
}

func TestSimulatedInfoProvider_MarketInformation(t *testing.T) {
	provider := newProvider(time.Millisecond)

	info, err := provider.MarketInformation(context.Background(), "Fresh Tomatoes")

	require.NoError(t, err)
	assert.Equal(t, "Simulated market information for Fresh Tomatoes: High demand, prices are up 10%", info)
}

func TestSimulatedInfoProvider_DefaultLatency(t *testing.T) {
	provider := NewSimulatedInfoProvider(Params{
		Config: &config.Config{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).(*simulatedInfoProvider)

	assert.Equal(t, 500*time.Millisecond, provider.latency)
}

func TestSimulatedInfoProvider_HonoursCancellation(t *testing.T) {
	provider := newProvider(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.MarketInformation(ctx, "Fresh Tomatoes")

	assert.ErrorIs(t, err, context.Canceled)
}

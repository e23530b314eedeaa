// Package market answers market-information lookups used during price prediction.
package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"farmlink/config"
	"farmlink/internal/domain/service"

	"go.uber.org/fx"
)

const defaultLatency = 500 * time.Millisecond

// Params defines the dependencies for the simulated provider
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

type simulatedInfoProvider struct {
	latency time.Duration
	logger  *slog.Logger
}

// NewSimulatedInfoProvider builds a provider with a fixed answer and a fixed delay.
// No real market feed is wired; the answer is a canned demand signal.
func NewSimulatedInfoProvider(params Params) service.MarketInfoProvider {
	latency := defaultLatency
	if params.Config.GenAI != nil && params.Config.GenAI.MarketInfoLatency > 0 {
		latency = params.Config.GenAI.MarketInfoLatency
	}

	return &simulatedInfoProvider{
		latency: latency,
		logger:  params.Logger,
	}
}

// MarketInformation waits for the configured latency and returns a fixed demand note.
func (p *simulatedInfoProvider) MarketInformation(ctx context.Context, productName string) (string, error) {
	timer := time.NewTimer(p.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	p.logger.DebugContext(ctx, "Served simulated market information", slog.String("product", productName))

	return fmt.Sprintf("Simulated market information for %s: High demand, prices are up 10%%", productName), nil
}

package genai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"farmlink/config"
	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

const (
	// One call plus three retries
	defaultAttempts = 4
	defaultDelay    = 2 * time.Second

	minTrendPoints = 6
	maxTrendPoints = 8

	maxImageTokens = 4096
)

// Params defines the dependencies of the gateway.
type Params struct {
	fx.In

	Config     *config.Config
	Model      llms.Model
	MarketInfo service.MarketInfoProvider
	Logger     *slog.Logger
}

// Gateway implements service.InsightGateway over a langchaingo model.
type Gateway struct {
	model      llms.Model
	marketInfo service.MarketInfoProvider
	limiter    *rate.Limiter
	clock      clock.Clock
	attempts   int
	delay      time.Duration
	timeout    time.Duration
	logger     *slog.Logger
}

// NewGateway creates the gateway from configuration.
func NewGateway(params Params) *Gateway {
	g := &Gateway{
		model:      params.Model,
		marketInfo: params.MarketInfo,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		clock:      clock.WallClock,
		attempts:   defaultAttempts,
		delay:      defaultDelay,
		logger:     params.Logger,
	}

	if cfg := params.Config.GenAI; cfg != nil {
		if cfg.RateLimit > 0 {
			burst := cfg.Burst
			if burst <= 0 {
				burst = 1
			}
			g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
		}
		if cfg.PriceRetry.Attempts > 0 {
			g.attempts = cfg.PriceRetry.Attempts
		}
		if cfg.PriceRetry.Delay > 0 {
			g.delay = cfg.PriceRetry.Delay
		}
		g.timeout = cfg.Timeout
	}

	return g
}

func (g *Gateway) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, g.logger)
}

// PredictPrice asks for a listing price. The model may call getMarketInformation once
// before answering; the whole exchange is retried with a fixed delay.
func (g *Gateway) PredictPrice(ctx context.Context, req service.PriceRequest) (*entity.PricePrediction, error) {
	var prediction *entity.PricePrediction

	err := g.observe("price", func() error {
		return retry.Call(retry.CallArgs{
			Func: func() error {
				var err error
				prediction, err = g.predictPriceOnce(ctx, req)

				return err
			},
			IsFatalError: func(err error) bool {
				return ctx.Err() != nil
			},
			NotifyFunc: func(err error, attempt int) {
				g.log(ctx).WarnContext(ctx, "Price prediction attempt failed",
					slog.Int("attempt", attempt),
					slog.Any("error", err),
				)
			},
			Attempts: g.attempts,
			Delay:    g.delay,
			Clock:    g.clock,
			Stop:     ctx.Done(),
		})
	})
	if err != nil {
		return nil, gatewayError(retry.LastError(err), "price prediction failed")
	}

	return prediction, nil
}

func (g *Gateway) predictPriceOnce(ctx context.Context, req service.PriceRequest) (*entity.PricePrediction, error) {
	prompt, err := pricePrompt.Format(map[string]any{
		"productName":        req.ProductName,
		"productDescription": req.ProductDescription,
		"marketTrends":       req.MarketTrends,
		"logisticsCost":      strconv.FormatFloat(req.LogisticsCost, 'f', 2, 64),
		"distanceToMarket":   strconv.FormatFloat(req.DistanceToMarket, 'f', 2, 64),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render price prompt")
	}

	parts := []llms.ContentPart{llms.TextContent{Text: prompt}}
	if image, ok := imagePart(req.ProductImage); ok {
		parts = append(parts, image)
	}
	messages := []llms.MessageContent{{Role: llms.ChatMessageTypeHuman, Parts: parts}}

	choice, err := g.generate(ctx, messages, llms.WithTools([]llms.Tool{marketInfoToolDef}))
	if err != nil {
		return nil, err
	}

	if len(choice.ToolCalls) > 0 {
		messages = append(messages, g.runTools(ctx, choice.ToolCalls)...)

		// Tools are not offered again, so the model has to answer.
		choice, err = g.generate(ctx, messages, llms.WithJSONMode())
		if err != nil {
			return nil, err
		}
	}

	var out entity.PricePrediction
	if err := decodeJSON(choice.Content, &out); err != nil {
		return nil, err
	}
	if out.PredictedPrice <= 0 {
		return nil, errors.Errorf("predicted price must be positive, got %v", out.PredictedPrice)
	}

	return &out, nil
}

// runTools executes the requested tool calls and returns the assistant turn plus one tool
// response per call.
func (g *Gateway) runTools(ctx context.Context, calls []llms.ToolCall) []llms.MessageContent {
	assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	responses := make([]llms.MessageContent, 0, len(calls))

	for _, call := range calls {
		assistant.Parts = append(assistant.Parts, call)

		content := g.callTool(ctx, call)
		responses = append(responses, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: call.ID,
				Name:       call.FunctionCall.Name,
				Content:    content,
			}},
		})
	}

	return append([]llms.MessageContent{assistant}, responses...)
}

func (g *Gateway) callTool(ctx context.Context, call llms.ToolCall) string {
	if call.FunctionCall == nil || call.FunctionCall.Name != marketInfoTool {
		return "unknown tool"
	}
	toolCallsTotal.WithLabelValues(marketInfoTool).Inc()

	var args struct {
		ProductName string `json:"productName"`
	}
	if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &args); err != nil {
		return "invalid arguments: " + err.Error()
	}

	info, err := g.marketInfo.MarketInformation(ctx, args.ProductName)
	if err != nil {
		g.log(ctx).WarnContext(ctx, "Market information lookup failed", slog.Any("error", err))

		return "market information unavailable"
	}

	return info
}

// MarketTrends asks for a trend narrative and a 6-8 point monthly price history.
func (g *Gateway) MarketTrends(ctx context.Context, productName string) (*entity.MarketTrends, error) {
	var out entity.MarketTrends

	err := g.observe("trends", func() error {
		prompt, err := trendsPrompt.Format(map[string]any{"productName": productName})
		if err != nil {
			return errors.Wrap(err, "failed to render trends prompt")
		}

		choice, err := g.generate(ctx, []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		}, llms.WithJSONMode())
		if err != nil {
			return err
		}
		if err := decodeJSON(choice.Content, &out); err != nil {
			return err
		}

		if n := len(out.PriceHistory); n > maxTrendPoints {
			out.PriceHistory = out.PriceHistory[n-maxTrendPoints:]
		} else if n < minTrendPoints {
			return errors.Errorf("expected at least %d price points, got %d", minTrendPoints, n)
		}

		return nil
	})
	if err != nil {
		return nil, gatewayError(err, "market trends failed")
	}

	return &out, nil
}

// RecommendProducts asks which catalog products suit the buyer's history.
func (g *Gateway) RecommendProducts(ctx context.Context, req service.RecommendationRequest) ([]entity.Recommendation, error) {
	var out struct {
		Recommendations []entity.Recommendation `json:"recommendations"`
	}

	err := g.observe("recommendations", func() error {
		history, err := json.Marshal(req.OrderHistory)
		if err != nil {
			return errors.WithStack(err)
		}
		catalog, err := json.Marshal(req.Catalog)
		if err != nil {
			return errors.WithStack(err)
		}

		prompt, err := recommendPrompt.Format(map[string]any{
			"orderHistory":   string(history),
			"productCatalog": string(catalog),
		})
		if err != nil {
			return errors.Wrap(err, "failed to render recommendation prompt")
		}

		choice, err := g.generate(ctx, []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		}, llms.WithJSONMode())
		if err != nil {
			return err
		}

		return decodeJSON(choice.Content, &out)
	})
	if err != nil {
		return nil, gatewayError(err, "recommendations failed")
	}

	if out.Recommendations == nil {
		return []entity.Recommendation{}, nil
	}

	return out.Recommendations, nil
}

// GenerateProductImage asks for an SVG illustration of the product and returns it as a
// base64 data URI. Text models answer with markup, so the picture is vector art rather than
// a photograph.
func (g *Gateway) GenerateProductImage(ctx context.Context, productName string) (*entity.ProductImage, error) {
	var uri string

	err := g.observe("image", func() error {
		prompt, err := imagePrompt.Format(map[string]any{"productName": productName})
		if err != nil {
			return errors.Wrap(err, "failed to render image prompt")
		}

		choice, err := g.generate(ctx, []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		}, llms.WithMaxTokens(maxImageTokens))
		if err != nil {
			return err
		}

		uri, err = svgDataURI(choice.Content)

		return err
	})
	if err != nil {
		return nil, gatewayError(err, "image generation failed")
	}

	return &entity.ProductImage{ImageDataURI: uri}, nil
}

// generate performs one rate-limited round trip and returns the first choice.
func (g *Gateway) generate(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentChoice, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "generate content")
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, errors.New("model returned no choices")
	}

	return resp.Choices[0], nil
}

func (g *Gateway) observe(kind string, fn func() error) error {
	start := time.Now()
	err := fn()
	requestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	requestsTotal.WithLabelValues(kind, result).Inc()

	return err
}

func gatewayError(cause error, message string) error {
	if cause == nil {
		cause = errors.New(message)
	}

	return errors.Wrap(domainerrors.ErrGatewayFailed.WithDetails(message+": "+cause.Error()), message)
}

var marketInfoToolDef = llms.Tool{
	Type: "function",
	Function: &llms.FunctionDefinition{
		Name:        marketInfoTool,
		Description: "Retrieves current market information for a given product.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"productName": map[string]any{
					"type":        "string",
					"description": "The name of the product.",
				},
			},
			"required": []string{"productName"},
		},
	},
}

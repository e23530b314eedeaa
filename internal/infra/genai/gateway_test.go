package genai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"farmlink/config"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type scriptedReply struct {
	resp *llms.ContentResponse
	err  error
}

// scriptedModel replays canned replies and records every request.
type scriptedModel struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests [][]llms.MessageContent
	options  []llms.CallOptions
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.requests = append(m.requests, messages)
	m.options = append(m.options, opts)

	if len(m.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]

	return reply.resp, reply.err
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.requests)
}

func text(content string) scriptedReply {
	return scriptedReply{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}}
}

func failure(msg string) scriptedReply {
	return scriptedReply{err: errors.New(msg)}
}

type stubMarketInfo struct {
	asked []string
}

func (s *stubMarketInfo) MarketInformation(_ context.Context, productName string) (string, error) {
	s.asked = append(s.asked, productName)

	return "Simulated market information for " + productName + ": High demand, prices are up 10%", nil
}

func newTestGateway(model llms.Model, info service.MarketInfoProvider) *Gateway {
	cfg := &config.Config{GenAI: &config.GenAIConfig{}}
	cfg.GenAI.PriceRetry.Delay = time.Millisecond

	return NewGateway(Params{
		Config:     cfg,
		Model:      model,
		MarketInfo: info,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

var priceRequest = service.PriceRequest{
	ProductName:        "Mangoes",
	ProductDescription: "Sweet alphonso mangoes",
	ProductImage:       "data:image/png;base64,aGVsbG8=",
	MarketTrends:       "rising",
	LogisticsCost:      100,
	DistanceToMarket:   20,
}

func TestGateway_PredictPrice_DirectAnswer(t *testing.T) {
	model := &scriptedModel{replies: []scriptedReply{text(`{"predictedPrice": 118.5, "reasoning": "strong demand"}`)}}
	g := newTestGateway(model, &stubMarketInfo{})

	got, err := g.PredictPrice(context.Background(), priceRequest)

	require.NoError(t, err)
	assert.Equal(t, &entity.PricePrediction{PredictedPrice: 118.5, Reasoning: "strong demand"}, got)
	require.Equal(t, 1, model.calls())
	require.Len(t, model.options[0].Tools, 1)
	assert.Equal(t, marketInfoTool, model.options[0].Tools[0].Function.Name)

	parts := model.requests[0][0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, llms.BinaryContent{MIMEType: "image/png", Data: []byte("hello")}, parts[1])
}

func TestGateway_PredictPrice_ToolRound(t *testing.T) {
	model := &scriptedModel{replies: []scriptedReply{
		{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   "call_1",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      marketInfoTool,
					Arguments: `{"productName": "Mangoes"}`,
				},
			}},
		}}}},
		text("```json\n{\"predictedPrice\": 130, \"reasoning\": \"prices up 10%\"}\n```"),
	}}
	info := &stubMarketInfo{}
	g := newTestGateway(model, info)

	got, err := g.PredictPrice(context.Background(), priceRequest)

	require.NoError(t, err)
	assert.InDelta(t, 130, got.PredictedPrice, 1e-9)
	assert.Equal(t, []string{"Mangoes"}, info.asked)

	require.Equal(t, 2, model.calls())
	assert.Empty(t, model.options[1].Tools)
	assert.True(t, model.options[1].JSONMode)

	second := model.requests[1]
	require.Len(t, second, 3)
	assert.Equal(t, llms.ChatMessageTypeAI, second[1].Role)
	assert.Equal(t, llms.ChatMessageTypeTool, second[2].Role)
	response, ok := second[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_1", response.ToolCallID)
	assert.Contains(t, response.Content, "High demand")
}

func TestGateway_PredictPrice_Retries(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		model := &scriptedModel{replies: []scriptedReply{
			failure("503 overloaded"),
			text("not json"),
			text(`{"predictedPrice": 90, "reasoning": "ok"}`),
		}}
		g := newTestGateway(model, &stubMarketInfo{})

		got, err := g.PredictPrice(context.Background(), priceRequest)

		require.NoError(t, err)
		assert.InDelta(t, 90, got.PredictedPrice, 1e-9)
		assert.Equal(t, 3, model.calls())
	})

	t.Run("gives up after one call and three retries", func(t *testing.T) {
		model := &scriptedModel{replies: []scriptedReply{
			failure("503"), failure("503"), failure("503"), failure("503"), text(`{"predictedPrice": 1}`),
		}}
		g := newTestGateway(model, &stubMarketInfo{})

		_, err := g.PredictPrice(context.Background(), priceRequest)

		assert.ErrorIs(t, err, domainerrors.ErrGatewayFailed)
		assert.Equal(t, 4, model.calls())
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		model := &scriptedModel{replies: []scriptedReply{
			text(`{"predictedPrice": 0}`), text(`{"predictedPrice": -1}`), text(`{"predictedPrice": 0}`), text(`{"predictedPrice": 0}`),
		}}
		g := newTestGateway(model, &stubMarketInfo{})

		_, err := g.PredictPrice(context.Background(), priceRequest)
		assert.ErrorIs(t, err, domainerrors.ErrGatewayFailed)
	})
}

func TestGateway_PredictPrice_CancelledContext(t *testing.T) {
	model := &scriptedModel{replies: []scriptedReply{failure("503"), failure("503"), failure("503")}}
	g := newTestGateway(model, &stubMarketInfo{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.PredictPrice(ctx, priceRequest)
	assert.ErrorIs(t, err, domainerrors.ErrGatewayFailed)
	assert.Zero(t, model.calls())
}

func trendsReply(points int) scriptedReply {
	history := ""
	for i := range points {
		if i > 0 {
			history += ","
		}
		history += fmt.Sprintf(`{"date": "M%d", "price": %d}`, i+1, 30+i)
	}

	return text(fmt.Sprintf(`{"trendSummary": "steady", "priceHistory": [%s]}`, history))
}

func TestGateway_MarketTrends(t *testing.T) {
	tests := []struct {
		name      string
		points    int
		wantLen   int
		wantFirst string
		wantErr   bool
	}{
		{name: "six points", points: 6, wantLen: 6, wantFirst: "M1"},
		{name: "eight points", points: 8, wantLen: 8, wantFirst: "M1"},
		{name: "too many keeps the latest", points: 10, wantLen: 8, wantFirst: "M3"},
		{name: "too few", points: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &scriptedModel{replies: []scriptedReply{trendsReply(tt.points)}}
			g := newTestGateway(model, &stubMarketInfo{})

			got, err := g.MarketTrends(context.Background(), "Mangoes")

			assert.Equal(t, 1, model.calls())
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrGatewayFailed)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, "steady", got.TrendSummary)
			require.Len(t, got.PriceHistory, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got.PriceHistory[0].Date)
			assert.True(t, model.options[0].JSONMode)
		})
	}
}

func TestGateway_MarketTrends_NoRetry(t *testing.T) {
	model := &scriptedModel{replies: []scriptedReply{failure("503"), trendsReply(6)}}
	g := newTestGateway(model, &stubMarketInfo{})

	_, err := g.MarketTrends(context.Background(), "Mangoes")

	assert.ErrorIs(t, err, domainerrors.ErrGatewayFailed)
	assert.Equal(t, 1, model.calls())
}

func TestGateway_RecommendProducts(t *testing.T) {
	model := &scriptedModel{replies: []scriptedReply{
		text(`{"recommendations": [{"productId": "prod_1", "reason": "bought often"}]}`),
	}}
	g := newTestGateway(model, &stubMarketInfo{})

	got, err := g.RecommendProducts(context.Background(), service.RecommendationRequest{
		OrderHistory: []entity.OrderHistoryEntry{{ProductID: "prod_1", Quantity: 10, OrderDate: "2024-05-01"}},
		Catalog:      []service.CatalogEntry{{ProductID: "prod_1", Name: "Organic Tomatoes", Price: 40, Rating: 4.5}},
	})

	require.NoError(t, err)
	assert.Equal(t, []entity.Recommendation{{ProductID: "prod_1", Reason: "bought often"}}, got)

	prompt := model.requests[0][0].Parts[0].(llms.TextContent).Text
	assert.Contains(t, prompt, `"productId":"prod_1"`)
	assert.Contains(t, prompt, `"rating":4.5`)
}

func TestGateway_RecommendProducts_Malformed(t *testing.T) {
	model := &scriptedModel{replies: []scriptedReply{text("I would suggest tomatoes")}}
	g := newTestGateway(model, &stubMarketInfo{})

	_, err := g.RecommendProducts(context.Background(), service.RecommendationRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrGatewayFailed)
}

func TestImagePart(t *testing.T) {
	tests := []struct {
		name  string
		image string
		want  llms.ContentPart
		ok    bool
	}{
		{"data uri", "data:image/jpeg;base64,aGVsbG8=", llms.BinaryContent{MIMEType: "image/jpeg", Data: []byte("hello")}, true},
		{"url", "https://picsum.photos/600/400", llms.ImageURLContent{URL: "https://picsum.photos/600/400"}, true},
		{"not base64", "data:image/png,hello", nil, false},
		{"bad payload", "data:image/png;base64,%%%", nil, false},
		{"empty", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := imagePart(tt.image)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_MarketTrends_PromptCarriesSeasonalGuidance(t *testing.T) {
	model := &scriptedModel{replies: []scriptedReply{trendsReply(6)}}
	g := newTestGateway(model, &stubMarketInfo{})

	_, err := g.MarketTrends(context.Background(), "Onions")
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	part, ok := model.requests[0][0].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Contains(t, part.Text, "Prices rise in off-seasons and fall during harvest seasons.")
	assert.Contains(t, part.Text, `"Jan 24", "price": 30`)
	assert.Contains(t, part.Text, "Answer for Onions")
	assert.NotContains(t, part.Text, "{{")
}

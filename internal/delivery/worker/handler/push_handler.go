package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"farmlink/config"
	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/constants"
	"farmlink/internal/domain/service"
	"farmlink/internal/errors"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "farmlink",
	Subsystem: "notifier",
	Name:      "notifications_total",
	Help:      "Topic notifications sent by the notifier, by event type and result.",
}, []string{"type", "result"})

const (
	// Redeliveries of one event arrive within Pub/Sub's retry window
	deliveredCacheSize = 10000
	deliveredTTL       = 24 * time.Hour
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// newRetryableError wraps an error as retryable
func newRetryableError(err error) error {
	return &retryableError{err: err}
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// topicMessage is one FCM topic delivery derived from a market event.
type topicMessage struct {
	topic string
	title string
	body  string
}

// PushHandler turns pushed market events into FCM topic notifications
type PushHandler struct {
	verifyPushAuth  bool
	verifyToken     func(req *http.Request) error
	logger          *slog.Logger
	notificationSvc service.NotificationService
	// delivered remembers event_id|topic pairs already sent, so a redelivered event
	// only retries the topics that failed.
	delivered *expirable.LRU[string, struct{}]
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config          *config.Config
	Logger          *slog.Logger
	NotificationSvc service.NotificationService
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Determine if we need to verify push auth based on config
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth:  verifyPushAuth,
		verifyToken:     verifyPubSubToken,
		logger:          params.Logger,
		notificationSvc: params.NotificationSvc,
		delivered:       expirable.NewLRU[string, struct{}](deliveredCacheSize, nil, deliveredTTL),
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	// Verify Pub/Sub token in production for Google provider
	if h.verifyPushAuth {
		if err := h.verifyToken(c.Request()); err != nil {
			h.logger.Warn("[Notifier] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	// Malformed messages are acknowledged so Pub/Sub does not redeliver them
	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Notifier] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusOK)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Notifier] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusOK)
	}

	var event service.MarketEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Notifier] Failed to parse market event", slog.Any("error", err))

		return c.NoContent(http.StatusOK)
	}

	// Priority: message attributes > event field > existing context
	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	ctx, reqLogger := deliverycontext.WithRequest(ctx, requestID, h.logger)

	reqLogger.Info("[Notifier] Processing market event",
		slog.String("event_id", event.EventID),
		slog.String("type", string(event.Type)),
	)

	if err := h.processEvent(ctx, &event); err != nil {
		reqLogger.Error("[Notifier] Failed to process market event",
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		// Return 503 for retryable errors to trigger Pub/Sub retry
		// Return 200 for non-retryable errors to prevent infinite retries
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Notifier] Market event processed", slog.String("event_id", event.EventID))

	return c.NoContent(http.StatusOK)
}

// extractRequestID extracts request_id from message attributes, event, or generates a new one
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.MarketEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	// From RequestIDMiddleware via X-Request-Id header
	if requestID := deliverycontext.RequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// processEvent sends every topic message the event maps to
func (h *PushHandler) processEvent(ctx context.Context, event *service.MarketEvent) error {
	messages, err := topicMessages(event)
	if err != nil {
		return err
	}

	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)
	data := notificationData(event)

	var failed []error
	for _, msg := range messages {
		key := event.EventID + "|" + msg.topic
		if event.EventID != "" && h.delivered.Contains(key) {
			notificationsTotal.WithLabelValues(string(event.Type), "duplicate").Inc()
			logger.Debug("[Notifier] Topic already notified for event", slog.String("topic", msg.topic))

			continue
		}

		if sendErr := h.notificationSvc.SendToTopic(ctx, msg.topic, msg.title, msg.body, data); sendErr != nil {
			notificationsTotal.WithLabelValues(string(event.Type), "error").Inc()
			logger.Error("[Notifier] Failed to send topic notification",
				slog.String("topic", msg.topic),
				slog.Any("error", sendErr),
			)
			failed = append(failed, sendErr)

			continue
		}
		notificationsTotal.WithLabelValues(string(event.Type), "success").Inc()
		if event.EventID != "" {
			h.delivered.Add(key, struct{}{})
		}
	}

	if len(failed) > 0 {
		return newRetryableError(errors.Wrapf(errors.Join(failed...), "%d of %d topic sends failed", len(failed), len(messages)))
	}

	return nil
}

// topicMessages maps a market event onto the topics it should reach
func topicMessages(event *service.MarketEvent) ([]topicMessage, error) {
	switch event.Type {
	case service.MarketEventProductListed:
		if event.FarmerID == "" {
			return nil, errors.New("product_listed event without farmer id")
		}

		return []topicMessage{{
			topic: service.FollowersTopic(event.FarmerID),
			title: "New produce available",
			body:  fmt.Sprintf("%s just listed %s", event.FarmerName, event.ProductName),
		}}, nil
	case service.MarketEventOrderPlaced:
		farmerIDs := slices.Compact(slices.Sorted(slices.Values(event.FarmerIDs)))
		messages := make([]topicMessage, 0, len(farmerIDs))
		for _, farmerID := range farmerIDs {
			if strings.TrimSpace(farmerID) == "" {
				continue
			}
			messages = append(messages, topicMessage{
				topic: service.SalesTopic(farmerID),
				title: "New order received",
				body:  fmt.Sprintf("%s placed order %s", event.MarketmanName, event.OrderID),
			})
		}

		return messages, nil
	default:
		return nil, errors.Errorf("unknown event type %q", event.Type)
	}
}

func notificationData(event *service.MarketEvent) map[string]string {
	data := map[string]string{
		"event_id": event.EventID,
		"type":     string(event.Type),
	}
	if event.FarmerID != "" {
		data["farmer_id"] = event.FarmerID
	}
	if event.ProductID != "" {
		data["product_id"] = event.ProductID
	}
	if event.OrderID != "" {
		data["order_id"] = event.OrderID
		data["total"] = fmt.Sprintf("%.2f", event.Total)
	}

	return data
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is the URL of this endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http" // For local development
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := idtoken.Validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}

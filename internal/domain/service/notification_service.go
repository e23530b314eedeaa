package service

import (
	"context"
)

// NotificationService defines the interface for push notification services
type NotificationService interface {
	// SendToTopic sends a push notification to every device subscribed to topic
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}

// FollowersTopic is the topic a marketman's device subscribes to when following a farmer.
func FollowersTopic(farmerID string) string {
	return "farmer-" + farmerID + "-followers"
}

// SalesTopic is the topic a farmer's own devices subscribe to for sale alerts.
func SalesTopic(farmerID string) string {
	return "farmer-" + farmerID + "-sales"
}

package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// PushSender delivers a push notification to one device token.
type PushSender interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMPushSender sends through Firebase Cloud Messaging.
type FCMPushSender struct {
	client fcmClient
}

func NewFCMPushSender(client *messaging.Client) *FCMPushSender {
	return &FCMPushSender{client: client}
}

func (s *FCMPushSender) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send failed: %w", err)
	}
	return nil
}

package fcm

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates a new FCM client for the given Firebase project.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("fcm: project ID is required")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &Client{
		messagingClient: messagingClient,
	}, nil
}

// NewClientWithToken creates an FCM client that authenticates every request
// with an already minted bearer token instead of resolving credentials itself.
func NewClientWithToken(ctx context.Context, projectID string, token *oauth2.Token, opts ...option.ClientOption) (*Client, error) {
	if token == nil || token.AccessToken == "" {
		return nil, errors.New("fcm: access token is required")
	}
	opts = append([]option.ClientOption{option.WithTokenSource(oauth2.StaticTokenSource(token))}, opts...)
	return NewClient(ctx, projectID, opts...)
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title string
	Body  string
	Data  map[string]string // Custom data payload
}

// SendToDevice sends a push notification to a specific device token and
// returns the message name assigned by FCM.
func (c *Client) SendToDevice(ctx context.Context, token string, notification NotificationData) (string, error) {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification.Data,
	}

	response, err := c.messagingClient.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}
	return response, nil
}

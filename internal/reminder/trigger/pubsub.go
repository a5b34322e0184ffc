package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"reminders-backend/internal/reminder/domain"
	"reminders-backend/internal/reminder/usecase"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Message is the payload Cloud Scheduler publishes. Empty fields take the
// same defaults as the HTTP query parameters.
type Message struct {
	Kind string `json:"kind"`
	Slot string `json:"slot"`
}

// Service runs a reminder dispatch for every message on a subscription.
type Service struct {
	pubsubClient    *pubsub.Client
	reminderUsecase usecase.ReminderUsecase
	subName         string
	log             *zap.Logger
}

func NewService(
	ctx context.Context,
	projectID, subName string,
	reminderUsecase usecase.ReminderUsecase,
	log *zap.Logger,
	opts ...option.ClientOption,
) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &Service{
		pubsubClient:    client,
		reminderUsecase: reminderUsecase,
		subName:         subName,
		log:             log.With(zap.String("subscription", subName)),
	}, nil
}

// Start blocks receiving messages until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check subscription %s: %w", s.subName, err)
	}
	if !exists {
		return fmt.Errorf("subscription %s does not exist", s.subName)
	}

	// One invocation at a time.
	sub.ReceiveSettings.MaxOutstandingMessages = 1

	s.log.Info("listening for reminder triggers")
	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handle(ctx, msg.ID, msg.Data)
		// Always ack: a failed dispatch is not redelivered.
		msg.Ack()
	})
}

func (s *Service) Close() error {
	return s.pubsubClient.Close()
}

func (s *Service) handle(ctx context.Context, msgID string, data []byte) {
	log := s.log.With(zap.String("message_id", msgID))

	req, err := DecodeMessage(data)
	if err != nil {
		log.Warn("invalid reminder trigger", zap.ByteString("data", data), zap.Error(err))
		return
	}

	summary, err := s.reminderUsecase.Run(ctx, req)
	if err != nil {
		log.Error("triggered reminder failed", zap.String("request", req.String()), zap.Error(err))
		return
	}
	log.Info("triggered reminder finished",
		zap.String("request", req.String()),
		zap.String("run_id", summary.RunID),
		zap.Int("sent", summary.Sent),
	)
}

// DecodeMessage turns a trigger payload into a validated request.
func DecodeMessage(data []byte) (domain.Request, error) {
	var m Message
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return domain.Request{}, fmt.Errorf("decode trigger: %w", err)
		}
	}
	return domain.ParseRequest(m.Kind, m.Slot)
}

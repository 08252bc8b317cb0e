// Package chat stores team chat messages and publishes them for realtime
// delivery. The subscribe side lives at the platform edge; this service only
// persists and publishes.
package chat

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/sage/pkg/metrics"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/redis"
)

// MessageRepo defines the chat message persistence the service needs
type MessageRepo interface {
	Create(ctx context.Context, tenantID, channel, userID, body string) (*models.ChatMessage, error)
	ListByChannel(ctx context.Context, tenantID, channel string, page, pageSize int) (*models.ChatMessageListResponse, error)
}

// Service handles chat message posting and history
type Service struct {
	messages      MessageRepo
	client        *redis.Client
	channelPrefix string
	logger        ectologger.Logger
}

// NewService creates a new chat service
func NewService(messages MessageRepo, client *redis.Client, channelPrefix string, logger ectologger.Logger) *Service {
	return &Service{
		messages:      messages,
		client:        client,
		channelPrefix: channelPrefix,
		logger:        logger,
	}
}

// Post persists a message and publishes it on the channel's pub/sub feed. The
// persisted row is the source of truth; a failed publish is logged and the
// post still succeeds.
func (s *Service) Post(ctx context.Context, tenantID, userID string, req models.PostChatMessageRequest) (*models.ChatMessage, error) {
	ctx, span := tracing.StartSpan(ctx, "chat.Service.Post")
	defer span.End()

	msg, err := s.messages.Create(ctx, tenantID, req.Channel, userID, req.Body)
	if err != nil {
		return nil, err
	}

	metrics.RecordChatMessage(tenantID)

	payload, _ := json.Marshal(msg)
	channel := s.channelPrefix + tenantID + ":" + req.Channel
	if err := s.client.Publish(ctx, channel, payload); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"channel": channel,
		}).Warn("Failed to publish chat message")
	}

	return msg, nil
}

// History returns a channel's messages, newest first.
func (s *Service) History(ctx context.Context, tenantID, channel string, page, pageSize int) (*models.ChatMessageListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "chat.Service.History")
	defer span.End()

	return s.messages.ListByChannel(ctx, tenantID, channel, page, pageSize)
}

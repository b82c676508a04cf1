package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/config"
	"github.com/spec-kit/messaging-service/internal/events"
)

// Broadcaster fans events out to external subscribers.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService relays domain events to logs and, when configured, to a
// pub/sub channel.
type NotificationService struct {
	dispatcher  events.Dispatcher
	broadcaster Broadcaster
	logger      *zap.Logger
	cfg         config.NotificationConfig
}

// NewNotificationService creates the service. broadcaster may be nil.
func NewNotificationService(dispatcher events.Dispatcher, broadcaster Broadcaster, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		logger:      loggerOrNop(logger),
		cfg:         cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDraftCreated, n.handleDraftEvent)
	n.dispatcher.Subscribe(events.EventDraftUpdated, n.handleDraftEvent)
	n.dispatcher.Subscribe(events.EventDraftDeleted, n.handleDraftEvent)
	n.dispatcher.Subscribe(events.EventDraftSent, n.handleDraftSent)
	n.dispatcher.Subscribe(events.EventMessageCreated, n.handleMessageCreated)
	n.dispatcher.Subscribe(events.EventMessageDeleted, n.handleMessageDeleted)
}

func (n *NotificationService) handleDraftEvent(ctx context.Context, event events.Event) error {
	n.logger.Debug(string(event.Type), zap.Int64("draft_id", event.EntityID), zap.Any("payload", event.Payload))
	return n.broadcast(ctx, event)
}

func (n *NotificationService) handleDraftSent(ctx context.Context, event events.Event) error {
	n.logger.Info("DraftSent", zap.Int64("draft_id", event.EntityID), zap.Any("payload", event.Payload))
	return n.broadcast(ctx, event)
}

func (n *NotificationService) handleMessageCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("MessageCreated", zap.Int64("message_id", event.EntityID), zap.Any("payload", event.Payload))
	return n.broadcast(ctx, event)
}

func (n *NotificationService) handleMessageDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("MessageDeleted", zap.Int64("message_id", event.EntityID))
	return n.broadcast(ctx, event)
}

func (n *NotificationService) broadcast(ctx context.Context, event events.Event) error {
	if n.broadcaster == nil || strings.TrimSpace(n.cfg.RedisChannel) == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if err := n.broadcaster.Publish(ctx, n.cfg.RedisChannel, payload); err != nil {
		return fmt.Errorf("broadcast %s event: %w", event.Type, err)
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"aegis-review-be/internal/dto"
	"aegis-review-be/internal/pkg/logger"
	"aegis-review-be/internal/websocket"
)

type IFeedConsumerService interface {
	Consume(ctx context.Context) error
}

// feedConsumerService drains the in-process feed topic and hands each
// message to the websocket hub for session fan-out.
type feedConsumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	logger    logger.ILogger
}

func NewFeedConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	log logger.ILogger,
) IFeedConsumerService {
	return &feedConsumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		logger:    log,
	}
}

func (fs *feedConsumerService) Consume(ctx context.Context) error {
	messages, err := fs.pubSub.Subscribe(ctx, fs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			fs.processMessage(msg)
		}
	}()

	return nil
}

func (fs *feedConsumerService) processMessage(msg *message.Message) {
	var feed dto.SessionFeedMessage
	if err := json.Unmarshal(msg.Payload, &feed); err != nil {
		fs.logger.Error("FeedConsumer", "Failed to unmarshal feed message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads never become valid, do not retry
		return
	}

	if feed.SessionId == "" {
		fs.logger.Warn("FeedConsumer", "Feed message without session id dropped", nil)
		msg.Ack()
		return
	}

	fs.hub.SendToSession(feed.SessionId, msg.Payload)
	msg.Ack()
}

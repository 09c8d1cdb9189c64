package service

import (
	"context"
	"encoding/json"
	"time"

	"esperit-be/internal/pkg/logger"
	"esperit-be/pkg/events"
	pktNats "esperit-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const LedgerEventsTopic = "ledger-events"

// IEventPublisher posts ledger telemetry onto the in-process bus. Publishing
// is best effort; a full bus must never fail the request that produced the
// event.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type eventPublisher struct {
	topic  string
	pubSub message.Publisher
	log    logger.ILogger
}

func NewEventPublisher(topic string, pubSub message.Publisher, log logger.ILogger) IEventPublisher {
	return &eventPublisher{
		topic:  topic,
		pubSub: pubSub,
		log:    log,
	}
}

type eventEnvelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func (p *eventPublisher) Publish(_ context.Context, event events.Event) {
	data, err := json.Marshal(eventEnvelope{
		Type:    event.EventType(),
		Payload: event.Payload(),
	})
	if err != nil {
		p.log.Warn("telemetry", "failed to marshal event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := p.pubSub.Publish(p.topic, msg); err != nil {
		p.log.Warn("telemetry", "failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

// ITelemetryConsumerService drains the in-process bus, records each ledger
// event and forwards it to NATS when an external bus is configured.
type ITelemetryConsumerService interface {
	Consume(ctx context.Context) error
}

type telemetryConsumerService struct {
	topic   string
	pubSub  message.Subscriber
	natsPub *pktNats.Publisher // nil when NATS is not reachable
	log     logger.ILogger
}

func NewTelemetryConsumerService(
	topic string,
	pubSub message.Subscriber,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) ITelemetryConsumerService {
	return &telemetryConsumerService{
		topic:   topic,
		pubSub:  pubSub,
		natsPub: natsPub,
		log:     log,
	}
}

func (s *telemetryConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topic)
	if err != nil {
		return err
	}

	for msg := range messages {
		var env eventEnvelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			s.log.Warn("telemetry", "dropping malformed event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}

		s.log.Info("telemetry", "ledger event", map[string]interface{}{
			"type":    env.Type,
			"payload": env.Payload,
		})

		if s.natsPub != nil {
			ev := events.BaseEvent{Type: env.Type, Data: env.Payload, OccurredAt: time.Now()}
			if err := s.natsPub.Publish(ctx, ev); err != nil {
				s.log.Warn("telemetry", "failed to forward event to NATS", map[string]interface{}{
					"type":  env.Type,
					"error": err.Error(),
				})
			}
		}
		msg.Ack()
	}

	return nil
}

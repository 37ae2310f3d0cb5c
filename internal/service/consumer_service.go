package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"ai-jobagent-be/internal/pkg/mailer"
	"ai-jobagent-be/internal/repository/specification"
	"ai-jobagent-be/internal/repository/unitofwork"
	"ai-jobagent-be/internal/websocket"
	"ai-jobagent-be/pkg/events"
	"ai-jobagent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// notificationEnvelope is the internal wire format between the NATS
// bridge and the local processing loop.
type notificationEnvelope struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService turns durable agent lifecycle events into user
// notifications. NATS delivers the events; they are bridged onto an
// in-process channel so delivery work is decoupled from the JetStream
// ack window.
type consumerService struct {
	subscriber *nats.Subscriber
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	hub        *websocket.Hub
	mail       mailer.IEmailService
}

func NewConsumerService(
	subscriber *nats.Subscriber,
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	hub *websocket.Hub,
	mail mailer.IEmailService,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		hub:        hub,
		mail:       mail,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	if cs.subscriber == nil {
		return nil
	}
	return cs.subscriber.Subscribe("events.>", "notifier", cs.bridge)
}

// bridge acks the JetStream message as soon as it lands on the local
// channel. Notification delivery is best effort, it must not hold the
// event stream hostage.
func (cs *consumerService) bridge(ctx context.Context, event events.Event) error {
	envelope := notificationEnvelope{
		Type: strings.TrimPrefix(event.EventType(), "events."),
		Data: event.Payload(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return cs.pubSub.Publish(cs.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope notificationEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		log.Printf("[ERROR] Failed to unmarshal notification: %v", err)
		msg.Ack()
		return
	}

	userId, ok := cs.userIdFrom(envelope.Data)
	if !ok {
		msg.Ack()
		return
	}

	switch envelope.Type {
	case events.TypeApprovalRequested:
		tools := stringSlice(envelope.Data["tools"])
		cs.hub.Send(userId, websocket.Notification{
			Type:     "approval_requested",
			Title:    "Approval needed",
			Body:     "Your job search is paused waiting for your approval.",
			ThreadId: stringValue(envelope.Data["thread_id"]),
			Data:     map[string]interface{}{"tools": tools},
		})
		cs.sendEmail(ctx, userId, func(email string) error {
			return cs.mail.SendApprovalReminder(email, tools)
		})

	case events.TypeRunCompleted:
		cs.hub.Send(userId, websocket.Notification{
			Type:     "run_completed",
			Title:    "Search finished",
			Body:     "Your job search run has finished.",
			ThreadId: stringValue(envelope.Data["thread_id"]),
		})

	case events.TypeJobsFound:
		count := intValue(envelope.Data["count"])
		cs.hub.Send(userId, websocket.Notification{
			Type:     "jobs_found",
			Title:    "New jobs found",
			Body:     "Your search turned up matching jobs.",
			ThreadId: stringValue(envelope.Data["thread_id"]),
			Data:     map[string]interface{}{"count": count},
		})
		cs.sendEmail(ctx, userId, func(email string) error {
			return cs.mail.SendJobsDigest(email, count)
		})

	default:
		// Registration and future event types carry no notification.
	}

	msg.Ack()
}

func (cs *consumerService) sendEmail(ctx context.Context, userId uuid.UUID, send func(email string) error) {
	if cs.mail == nil {
		return
	}
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		log.Printf("[WARN] Cannot resolve user %s for notification email: %v", userId, err)
		return
	}
	if err := send(user.Email); err != nil {
		log.Printf("[WARN] Notification email to %s failed: %v", user.Email, err)
	}
}

func (cs *consumerService) userIdFrom(data map[string]interface{}) (uuid.UUID, bool) {
	raw := stringValue(data["user_id"])
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fanhunt/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SourceService identifies this service in event envelopes
const SourceService = "fanhunt-ledger"

// EventEnvelope wraps every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// MessagePublisher is the subset of NATSClient the event publisher needs
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// PublishRecorder counts published events
type PublishRecorder interface {
	RecordEventPublished(eventType, outcome string)
}

// NATSEventPublisher forwards domain events to NATS JetStream
type NATSEventPublisher struct {
	client        MessagePublisher
	subjectMapper *EventSubjectMapper
	recorder      PublishRecorder
	timeout       time.Duration
}

// NewNATSEventPublisher creates a new NATS event publisher. recorder may be nil.
func NewNATSEventPublisher(client MessagePublisher, subjectMapper *EventSubjectMapper, recorder PublishRecorder) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:        client,
		subjectMapper: subjectMapper,
		recorder:      recorder,
		timeout:       5 * time.Second,
	}
}

// NewEnvelope builds the envelope for an event
func NewEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: SourceService,
		Payload:       payload,
	}, nil
}

// Publish publishes an event to NATS using the mapped subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := p.publish(ctx, event)
	p.record(event, err)
	return err
}

// Handle adapts the publisher to an events.Bus subscription
func (p *NATSEventPublisher) Handle(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.publish(ctx, event)
	p.record(event, err)
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Warn("Failed to forward event to NATS")
	}
}

func (p *NATSEventPublisher) publish(ctx context.Context, event events.Event) error {
	subject := p.subjectMapper.MapEventToSubject(event)

	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.client.Publish(ctx, subject, data); err != nil {
		// No stream bound to the subject; nobody is listening
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

func (p *NATSEventPublisher) record(event events.Event, err error) {
	if p.recorder == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.recorder.RecordEventPublished(string(event.Type()), outcome)
}

// EnsureEventStream ensures the ledger stream exists with every subject
func EnsureEventStream(client *NATSClient, mapper *EventSubjectMapper) error {
	return client.EnsureStream(EventStreamName, mapper.GetAllSubjects())
}

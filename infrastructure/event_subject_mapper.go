package infrastructure

import (
	"fmt"

	"fanhunt/events"
)

// Subjects the ledger publishes to
const (
	SubjectCheckpointRedeemed   = "ledger.checkpoint.redeemed"
	SubjectRewardRedeemed       = "ledger.reward.redeemed"
	SubjectPointsBalanceChanged = "users.points_changed"
	SubjectUserRegistered       = "users.registered"
)

// EventStreamName is the JetStream stream holding every ledger subject
const EventStreamName = "fanhunt_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeCheckpointRedeemed:
		return SubjectCheckpointRedeemed
	case events.EventTypeRewardRedeemed:
		return SubjectRewardRedeemed
	case events.EventTypePointsBalanceChanged:
		return SubjectPointsBalanceChanged
	case events.EventTypeUserRegistered:
		return SubjectUserRegistered
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectCheckpointRedeemed:
		return events.EventTypeCheckpointRedeemed
	case SubjectRewardRedeemed:
		return events.EventTypeRewardRedeemed
	case SubjectPointsBalanceChanged:
		return events.EventTypePointsBalanceChanged
	case SubjectUserRegistered:
		return events.EventTypeUserRegistered
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectCheckpointRedeemed,
		SubjectRewardRedeemed,
		SubjectPointsBalanceChanged,
		SubjectUserRegistered,
	}
}

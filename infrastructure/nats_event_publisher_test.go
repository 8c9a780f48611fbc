package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"fanhunt/domain/entities"
	"fanhunt/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

type fakeMessagePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakeMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, publishedMessage{subject: subject, data: data})
	return nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingRecorder) RecordEventPublished(eventType, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[eventType+"/"+outcome]++
}

func TestNATSEventPublisher_PublishWrapsEventInEnvelope(t *testing.T) {
	t.Parallel()

	client := &fakeMessagePublisher{}
	recorder := &countingRecorder{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), recorder)

	redeemedAt := time.Date(2026, 4, 12, 15, 0, 0, 0, time.UTC)
	err := publisher.Publish(events.CheckpointRedeemedEvent{
		UserID:        "fan-1",
		CheckpointID:  "gate-a",
		PointsAwarded: 20,
		RedeemedAt:    redeemedAt,
	})
	require.NoError(t, err)

	require.Len(t, client.messages, 1)
	msg := client.messages[0]
	assert.Equal(t, SubjectCheckpointRedeemed, msg.subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.data, &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.Equal(t, "checkpoint_redeemed", envelope.EventType)
	assert.Equal(t, SourceService, envelope.SourceService)
	assert.False(t, envelope.Timestamp.IsZero())

	var payload events.CheckpointRedeemedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "fan-1", payload.UserID)
	assert.Equal(t, int64(20), payload.PointsAwarded)
	assert.True(t, redeemedAt.Equal(payload.RedeemedAt))

	assert.Equal(t, 1, recorder.counts["checkpoint_redeemed/success"])
}

func TestNATSEventPublisher_MissingStreamIsNotAnError(t *testing.T) {
	t.Parallel()

	client := &fakeMessagePublisher{err: errors.New("nats: no response from stream")}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil)

	assert.NoError(t, publisher.Publish(events.UserRegisteredEvent{UserID: "fan-1"}))
}

func TestNATSEventPublisher_HandleLogsFailures(t *testing.T) {
	t.Parallel()

	client := &fakeMessagePublisher{err: errors.New("nats: connection closed")}
	recorder := &countingRecorder{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), recorder)

	publisher.Handle(context.Background(), events.PointsBalanceChangedEvent{
		UserID:          "fan-1",
		OldBalance:      10,
		NewBalance:      30,
		ChangeAmount:    20,
		TransactionType: entities.TransactionTypeCheckpointScan,
	})

	assert.Equal(t, 1, recorder.counts["points_balance_changed/error"])
}

func TestNATSEventPublisher_ForwardsBusEvents(t *testing.T) {
	t.Parallel()

	client := &fakeMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil)

	bus := events.NewBus()
	bus.SubscribeAll(publisher.Handle)

	require.NoError(t, bus.Publish(events.RewardRedeemedEvent{UserID: "fan-1", RewardID: "scarf", PointsSpent: 200}))
	require.NoError(t, bus.Publish(events.UserRegisteredEvent{UserID: "fan-2"}))
	bus.Wait()

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Len(t, client.messages, 2)
	subjects := []string{client.messages[0].subject, client.messages[1].subject}
	assert.ElementsMatch(t, []string{SubjectRewardRedeemed, SubjectUserRegistered}, subjects)
}

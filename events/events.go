package events

import (
	"context"
	"sync"
	"time"

	"fanhunt/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeCheckpointRedeemed   EventType = "checkpoint_redeemed"
	EventTypeRewardRedeemed       EventType = "reward_redeemed"
	EventTypePointsBalanceChanged EventType = "points_balance_changed"
	EventTypeUserRegistered       EventType = "user_registered"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Publisher accepts events for delivery
type Publisher interface {
	Publish(event Event) error
}

// CheckpointRedeemedEvent is emitted once a scan receipt has been committed
type CheckpointRedeemedEvent struct {
	UserID        string    `json:"user_id"`
	CheckpointID  string    `json:"checkpoint_id"`
	PointsAwarded int64     `json:"points_awarded"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}

func (e CheckpointRedeemedEvent) Type() EventType {
	return EventTypeCheckpointRedeemed
}

// RewardRedeemedEvent is emitted once a reward receipt has been committed
type RewardRedeemedEvent struct {
	ReceiptID   string    `json:"receipt_id"`
	UserID      string    `json:"user_id"`
	RewardID    string    `json:"reward_id"`
	PointsSpent int64     `json:"points_spent"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

func (e RewardRedeemedEvent) Type() EventType {
	return EventTypeRewardRedeemed
}

// PointsBalanceChangedEvent represents a change to a user's points total
type PointsBalanceChangedEvent struct {
	UserID          string                   `json:"user_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	ChangeAmount    int64                    `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
}

func (e PointsBalanceChangedEvent) Type() EventType {
	return EventTypePointsBalanceChanged
}

// UserRegisteredEvent represents a new account
type UserRegisteredEvent struct {
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	FavouriteTeam string `json:"favourite_team"`
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes() {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Handlers run asynchronously so a slow subscriber never holds up a request
	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits the event on a background context
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// AllEventTypes lists every event type the ledger emits
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeCheckpointRedeemed,
		EventTypeRewardRedeemed,
		EventTypePointsBalanceChanged,
		EventTypeUserRegistered,
	}
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits. It is not safe for concurrent use; each unit of work
// owns its own instance.
type TransactionalBus struct {
	real    Publisher
	pending []Event
}

// NewTransactionalBus creates a transactional bus that flushes to real
func NewTransactionalBus(real Publisher) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes the event until Flush
func (b *TransactionalBus) Publish(e Event) error {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
	return nil
}

// Pending returns the number of events waiting for a commit
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush is called after a successful DB commit. Delivery is best-effort:
// the transaction is already durable, so failures are logged and skipped.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus")

	for _, ev := range b.pending {
		if b.real == nil {
			break
		}
		if err := b.real.Publish(ev); err != nil {
			log.WithFields(log.Fields{
				"eventType": ev.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	if len(b.pending) > 0 {
		log.WithFields(log.Fields{
			"discardedEventCount": len(b.pending),
		}).Debug("Discarding pending events from transactional bus")
	}
	b.pending = nil
}

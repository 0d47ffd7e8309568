package container

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/outbound"
)

// EventHandler reacts to one published domain event
type EventHandler func(ctx context.Context, event shared.DomainEvent) error

// EventDispatcher fans domain events out to in-process handlers
type EventDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	log      *zap.Logger
}

var _ outbound.EventPublisher = (*EventDispatcher)(nil)

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher(log *zap.Logger) *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]EventHandler),
		log:      log.Named("events"),
	}
}

// Publish dispatches each event to its handlers. Handler failures are
// logged and do not stop the remaining handlers.
func (d *EventDispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		d.mu.RLock()
		handlers := d.handlers[event.EventName()]
		d.mu.RUnlock()

		if len(handlers) == 0 {
			d.log.Debug("No handlers registered for event", zap.String("event", event.EventName()))
			continue
		}

		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				d.log.Error("Failed to handle event",
					zap.String("event", event.EventName()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Register registers an event handler
func (d *EventDispatcher) Register(event string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handler)
	d.log.Debug("Registered event handler", zap.String("event", event))
}

// RegisterEventHandlers attaches the audit logging handlers
func RegisterEventHandlers(d *EventDispatcher, log *zap.Logger) {
	audit := log.Named("audit")

	d.Register(shopping.WeekRolledOverEvent{}.EventName(), func(_ context.Context, e shared.DomainEvent) error {
		ev, ok := e.(shopping.WeekRolledOverEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", e)
		}
		audit.Info("Shopping week rolled over",
			zap.String("user_id", ev.UserID),
			zap.String("previous_week", ev.PreviousKey),
			zap.String("week", ev.WeekKey),
		)
		return nil
	})

	d.Register(shopping.SuppressionRegisteredEvent{}.EventName(), func(_ context.Context, e shared.DomainEvent) error {
		var ev shopping.SuppressionRegisteredEvent
		switch v := e.(type) {
		case shopping.SuppressionRegisteredEvent:
			ev = v
		case *shopping.SuppressionRegisteredEvent:
			ev = *v
		default:
			return fmt.Errorf("unexpected event type %T", e)
		}
		audit.Info("Suppression registered",
			zap.String("user_id", ev.UserID),
			zap.String("week", ev.WeekKey),
			zap.String("ingredient", ev.Key),
			zap.Stringer("quantity", ev.Quantity),
		)
		return nil
	})

	itemChanged := func(_ context.Context, e shared.DomainEvent) error {
		audit.Debug("Auto item changed", zap.String("event", e.EventName()), zap.Time("at", e.OccurredAt()))
		return nil
	}
	for _, name := range []string{
		shopping.AutoItemCreatedEvent{}.EventName(),
		shopping.AutoItemUpdatedEvent{}.EventName(),
		shopping.AutoItemDeletedEvent{}.EventName(),
	} {
		d.Register(name, itemChanged)
	}
}

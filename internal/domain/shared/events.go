package shared

import "time"

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventRecorder collects events raised while an operation runs so they can
// be published once the operation has finished.
type EventRecorder struct {
	events []DomainEvent
}

// Record adds a domain event to be published
func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// Events returns and clears pending domain events
func (r *EventRecorder) Events() []DomainEvent {
	events := r.events
	r.events = nil
	return events
}

// Len returns the number of pending events
func (r *EventRecorder) Len() int {
	return len(r.events)
}

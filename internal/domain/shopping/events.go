package shopping

import (
	"time"

	"github.com/planifia/planner/internal/domain/shared"
)

// AutoItemCreatedEvent is raised when reconciliation adds an auto item
type AutoItemCreatedEvent struct {
	UserID    string
	ItemID    string
	Key       string
	Quantity  shared.Quantity
	CreatedAt time.Time
}

func (e AutoItemCreatedEvent) EventName() string     { return "shopping.auto_item.created" }
func (e AutoItemCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// AutoItemUpdatedEvent is raised when reconciliation retargets an auto item
type AutoItemUpdatedEvent struct {
	UserID    string
	ItemID    string
	Key       string
	Quantity  shared.Quantity
	UpdatedAt time.Time
}

func (e AutoItemUpdatedEvent) EventName() string     { return "shopping.auto_item.updated" }
func (e AutoItemUpdatedEvent) OccurredAt() time.Time { return e.UpdatedAt }

// AutoItemDeletedEvent is raised when reconciliation drops an auto item
type AutoItemDeletedEvent struct {
	UserID    string
	ItemID    string
	Key       string
	Reason    string
	DeletedAt time.Time
}

func (e AutoItemDeletedEvent) EventName() string     { return "shopping.auto_item.deleted" }
func (e AutoItemDeletedEvent) OccurredAt() time.Time { return e.DeletedAt }

// SuppressionRegisteredEvent is raised when the user removes an auto item
type SuppressionRegisteredEvent struct {
	UserID       string
	WeekKey      string
	Key          string
	Quantity     shared.Quantity
	RegisteredAt time.Time
}

func (e SuppressionRegisteredEvent) EventName() string     { return "shopping.suppression.registered" }
func (e SuppressionRegisteredEvent) OccurredAt() time.Time { return e.RegisteredAt }

// WeekRolledOverEvent is raised when a full resync starts a new week
type WeekRolledOverEvent struct {
	UserID      string
	PreviousKey string
	WeekKey     string
	RolledAt    time.Time
}

func (e WeekRolledOverEvent) EventName() string     { return "shopping.week.rolled_over" }
func (e WeekRolledOverEvent) OccurredAt() time.Time { return e.RolledAt }

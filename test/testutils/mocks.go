// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/ports/inbound"
)

// MockReconciliationService provides a mock implementation of ReconciliationService
type MockReconciliationService struct {
	mock.Mock
}

var _ inbound.ReconciliationService = (*MockReconciliationService)(nil)

func (m *MockReconciliationService) report(args mock.Arguments) (*inbound.SyncReport, error) {
	report, _ := args.Get(0).(*inbound.SyncReport)
	return report, args.Error(1)
}

// IncrementalResync records an incremental pass
func (m *MockReconciliationService) IncrementalResync(ctx context.Context, userID string, referenceDate time.Time) (*inbound.SyncReport, error) {
	return m.report(m.Called(ctx, userID, referenceDate))
}

// FullResync records a full pass
func (m *MockReconciliationService) FullResync(ctx context.Context, userID string, referenceDate time.Time) (*inbound.SyncReport, error) {
	return m.report(m.Called(ctx, userID, referenceDate))
}

// EnsureWeek records a week check
func (m *MockReconciliationService) EnsureWeek(ctx context.Context, userID string, now time.Time) (*inbound.SyncReport, error) {
	return m.report(m.Called(ctx, userID, now))
}

// Refresh records a refresh
func (m *MockReconciliationService) Refresh(ctx context.Context, userID string, now time.Time) (*inbound.SyncReport, error) {
	return m.report(m.Called(ctx, userID, now))
}

// RegisterSuppression records a suppression
func (m *MockReconciliationService) RegisterSuppression(ctx context.Context, userID, ingredientName string, qty shared.Quantity, referenceDate time.Time) error {
	return m.Called(ctx, userID, ingredientName, qty, referenceDate).Error(0)
}

// LoadSuppressed returns the scripted ledger
func (m *MockReconciliationService) LoadSuppressed(ctx context.Context, userID, weekKey string) (map[string]shared.Quantity, error) {
	args := m.Called(ctx, userID, weekKey)
	consumed, _ := args.Get(0).(map[string]shared.Quantity)
	return consumed, args.Error(1)
}

// RemoveAutoItems records a removal
func (m *MockReconciliationService) RemoveAutoItems(ctx context.Context, userID string, itemIDs []string, now time.Time) (*inbound.SyncReport, error) {
	return m.report(m.Called(ctx, userID, itemIDs, now))
}

// RemoveAutoItem records a single removal
func (m *MockReconciliationService) RemoveAutoItem(ctx context.Context, userID, itemID string, now time.Time) (*inbound.SyncReport, error) {
	return m.report(m.Called(ctx, userID, itemID, now))
}

// Status returns the scripted status
func (m *MockReconciliationService) Status(ctx context.Context, userID string, now time.Time) (*inbound.SyncStatusDTO, error) {
	args := m.Called(ctx, userID, now)
	status, _ := args.Get(0).(*inbound.SyncStatusDTO)
	return status, args.Error(1)
}

// RecordingPublisher collects published events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewRecordingPublisher creates an empty publisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish appends events
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// Events returns a copy of everything published so far
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the names of the published events in order
func (p *RecordingPublisher) Names() []string {
	events := p.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventName()
	}
	return out
}

package planning

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/planifia/planner/internal/domain/inventory"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/inbound"
	"github.com/planifia/planner/internal/ports/outbound"
	"github.com/planifia/planner/pkg/errors"
)

const tracerName = "github.com/planifia/planner/internal/application/planning"

// Observer receives the outcome of every pass.
type Observer interface {
	ObserveSync(mode string, duration time.Duration, err error)
	ObserveItemChanges(created, updated, deleted int)
	ObserveSuppression()
}

type nopObserver struct{}

func (nopObserver) ObserveSync(string, time.Duration, error) {}
func (nopObserver) ObserveItemChanges(int, int, int)         {}
func (nopObserver) ObserveSuppression()                      {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...shared.DomainEvent) error { return nil }

// Engine reconciles the auto-generated shopping list of each user.
// Passes for one user are serialized; passes for different users run freely.
type Engine struct {
	meals      outbound.MealRepository
	inventory  outbound.InventoryRepository
	items      outbound.ShoppingItemRepository
	states     outbound.SyncStateRepository
	ledger     *SuppressionLedger
	aggregator *RequirementAggregator
	publisher  outbound.EventPublisher
	observer   Observer
	tracer     trace.Tracer
	logger     *zap.Logger

	// passTimeout bounds one pass; zero leaves the caller's deadline alone.
	passTimeout time.Duration

	locks sync.Map // userID -> *sync.Mutex
}

// NewEngine creates a reconciliation engine. publisher and observer may be nil.
func NewEngine(
	meals outbound.MealRepository,
	inventoryRepo outbound.InventoryRepository,
	items outbound.ShoppingItemRepository,
	states outbound.SyncStateRepository,
	aggregator *RequirementAggregator,
	publisher outbound.EventPublisher,
	observer Observer,
	logger *zap.Logger,
) *Engine {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Engine{
		meals:      meals,
		inventory:  inventoryRepo,
		items:      items,
		states:     states,
		ledger:     NewSuppressionLedger(states),
		aggregator: aggregator,
		publisher:  publisher,
		observer:   observer,
		tracer:     otel.Tracer(tracerName),
		logger:     logger.Named("reconciliation-engine"),
	}
}

var _ inbound.ReconciliationService = (*Engine)(nil)

// WithPassTimeout sets the deadline applied to each pass and returns e.
func (e *Engine) WithPassTimeout(d time.Duration) *Engine {
	e.passTimeout = d
	return e
}

func (e *Engine) lock(userID string) func() {
	mu, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// IncrementalResync converges the auto items of userID on the current
// week's adjusted deficits.
func (e *Engine) IncrementalResync(ctx context.Context, userID string, referenceDate time.Time) (*inbound.SyncReport, error) {
	defer e.lock(userID)()
	return e.run(ctx, inbound.SyncModeIncremental, userID, referenceDate, func(ctx context.Context, p *pass) error {
		return e.reconcile(ctx, p)
	})
}

// FullResync drops every auto item, rebuilds the list and starts an empty
// ledger for the week of referenceDate.
func (e *Engine) FullResync(ctx context.Context, userID string, referenceDate time.Time) (*inbound.SyncReport, error) {
	defer e.lock(userID)()
	return e.run(ctx, inbound.SyncModeFull, userID, referenceDate, e.fullResync)
}

// EnsureWeek runs a full resync when the stored week is not the week of now.
func (e *Engine) EnsureWeek(ctx context.Context, userID string, now time.Time) (*inbound.SyncReport, error) {
	defer e.lock(userID)()

	rollover, err := e.needsRollover(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if !rollover {
		return &inbound.SyncReport{UserID: userID, WeekKey: meal.WeekKey(now), Mode: inbound.SyncModeNone}, nil
	}
	return e.run(ctx, inbound.SyncModeFull, userID, now, e.fullResync)
}

// Refresh runs a full resync on rollover and an incremental one otherwise.
func (e *Engine) Refresh(ctx context.Context, userID string, now time.Time) (*inbound.SyncReport, error) {
	defer e.lock(userID)()

	rollover, err := e.needsRollover(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if rollover {
		return e.run(ctx, inbound.SyncModeFull, userID, now, e.fullResync)
	}
	return e.run(ctx, inbound.SyncModeIncremental, userID, now, func(ctx context.Context, p *pass) error {
		return e.reconcile(ctx, p)
	})
}

// RegisterSuppression records that the user removed qty of ingredientName.
func (e *Engine) RegisterSuppression(ctx context.Context, userID, ingredientName string, qty shared.Quantity, referenceDate time.Time) error {
	defer e.lock(userID)()

	event, err := e.ledger.Register(ctx, userID, ingredientName, qty, referenceDate)
	if err != nil {
		return err
	}
	if event != nil {
		e.observer.ObserveSuppression()
		e.publish(ctx, *event)
	}
	return nil
}

// LoadSuppressed returns the ledger of weekKey.
func (e *Engine) LoadSuppressed(ctx context.Context, userID, weekKey string) (map[string]shared.Quantity, error) {
	return e.ledger.Load(ctx, userID, weekKey)
}

// RemoveAutoItem removes a single auto item the way RemoveAutoItems does
func (e *Engine) RemoveAutoItem(ctx context.Context, userID, itemID string, now time.Time) (*inbound.SyncReport, error) {
	return e.RemoveAutoItems(ctx, userID, []string{itemID}, now)
}

// RemoveAutoItems suppresses the summed quantity of the given auto items per
// canonical key, deletes them and runs an incremental pass. Items of other
// users count as missing; manual items are rejected.
func (e *Engine) RemoveAutoItems(ctx context.Context, userID string, itemIDs []string, now time.Time) (*inbound.SyncReport, error) {
	defer e.lock(userID)()

	targets := make([]*shopping.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, err := e.items.FindByID(ctx, id)
		if err != nil {
			if stderrors.Is(err, shopping.ErrItemNotFound) {
				return nil, errors.NewShoppingItemNotFoundError(id)
			}
			return nil, errors.NewDatabaseError("find shopping item", err)
		}
		if item.UserID != userID {
			return nil, errors.NewShoppingItemNotFoundError(id)
		}
		if item.Manual {
			return nil, errors.NewValidationError(shopping.ErrManualItemImmutable.Error()).WithMetadata("item_id", id)
		}
		targets = append(targets, item)
	}

	return e.run(ctx, inbound.SyncModeIncremental, userID, now, func(ctx context.Context, p *pass) error {
		type suppression struct {
			name string
			qty  shared.Quantity
		}
		byKey := map[string]*suppression{}
		var order []string
		for _, item := range targets {
			key := item.Key()
			s, ok := byKey[key]
			if !ok {
				s = &suppression{name: item.IngredientName}
				byKey[key] = s
				order = append(order, key)
			}
			qty := item.Required()
			if item.RequiredQuantity == nil {
				qty = shared.Whole(1)
			}
			s.qty = s.qty.Add(qty)
		}

		for _, key := range order {
			s := byKey[key]
			event, err := e.ledger.Register(ctx, userID, s.name, s.qty, p.referenceDate)
			if err != nil {
				return err
			}
			if event != nil {
				e.observer.ObserveSuppression()
				p.events.Record(*event)
			}
		}

		if err := e.deleteAll(ctx, p, targets, "removed by user"); err != nil {
			return err
		}
		return e.reconcile(ctx, p)
	})
}

// Status reports the week tracker state of userID.
func (e *Engine) Status(ctx context.Context, userID string, now time.Time) (*inbound.SyncStatusDTO, error) {
	state, err := e.states.Get(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("load sync state", err)
	}

	dto := &inbound.SyncStatusDTO{
		Status:         state.Status(),
		CurrentWeekKey: meal.WeekKey(now),
		Consumed:       map[string]shared.Quantity{},
	}
	if state != nil {
		dto.WeekKey = state.WeekKey
		dto.Consumed = state.ConsumedFor(state.WeekKey)
	}
	return dto, nil
}

func (e *Engine) needsRollover(ctx context.Context, userID string, now time.Time) (bool, error) {
	state, err := e.states.Get(ctx, userID)
	if err != nil {
		return false, errors.NewDatabaseError("load sync state", err)
	}
	return state.NeedsRollover(meal.WeekKey(now)), nil
}

// pass carries the bookkeeping of one reconciliation run.
type pass struct {
	userID        string
	weekKey       string
	referenceDate time.Time
	report        *inbound.SyncReport
	events        shared.EventRecorder
}

func (e *Engine) run(ctx context.Context, mode inbound.SyncMode, userID string, referenceDate time.Time, body func(context.Context, *pass) error) (*inbound.SyncReport, error) {
	start := time.Now()
	weekKey := meal.WeekKey(referenceDate)

	if e.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.passTimeout)
		defer cancel()
	}

	ctx, span := e.tracer.Start(ctx, "planning."+string(mode)+"_resync",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("week.key", weekKey),
		),
	)
	defer span.End()

	p := &pass{
		userID:        userID,
		weekKey:       weekKey,
		referenceDate: referenceDate,
		report:        &inbound.SyncReport{UserID: userID, WeekKey: weekKey, Mode: mode},
	}

	err := body(ctx, p)
	p.report.Duration = time.Since(start)

	e.observer.ObserveSync(string(mode), p.report.Duration, err)
	e.observer.ObserveItemChanges(p.report.Created, p.report.Updated, p.report.Deleted)
	span.SetAttributes(
		attribute.Int("items.created", p.report.Created),
		attribute.Int("items.updated", p.report.Updated),
		attribute.Int("items.deleted", p.report.Deleted),
	)

	// Events of completed writes are published even when a later step failed.
	e.publish(ctx, p.events.Events()...)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn("Shopping list sync failed",
			zap.String("user_id", userID),
			zap.String("mode", string(mode)),
			zap.String("week_key", weekKey),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Info("Shopping list synced",
		zap.String("user_id", userID),
		zap.String("mode", string(mode)),
		zap.String("week_key", weekKey),
		zap.Int("created", p.report.Created),
		zap.Int("updated", p.report.Updated),
		zap.Int("deleted", p.report.Deleted),
		zap.Duration("duration", p.report.Duration),
	)
	return p.report, nil
}

func (e *Engine) fullResync(ctx context.Context, p *pass) error {
	previous, err := e.states.Get(ctx, p.userID)
	if err != nil {
		return errors.NewDatabaseError("load sync state", err)
	}

	current, err := e.items.List(ctx, p.userID)
	if err != nil {
		return errors.NewDatabaseError("list shopping items", err)
	}
	if err := ctx.Err(); err != nil {
		return errors.NewSyncCancelledError(p.userID, err)
	}

	if err := e.deleteAll(ctx, p, shopping.AutoItems(current), "week rollover"); err != nil {
		return err
	}
	if err := e.reconcile(ctx, p); err != nil {
		return err
	}
	if err := e.ledger.Reset(ctx, p.userID, p.weekKey); err != nil {
		return err
	}

	previousKey := ""
	if previous != nil {
		previousKey = previous.WeekKey
	}
	p.events.Record(shopping.WeekRolledOverEvent{
		UserID:      p.userID,
		PreviousKey: previousKey,
		WeekKey:     p.weekKey,
		RolledAt:    time.Now().UTC(),
	})
	return nil
}

// reconcile is the incremental pass. Reads complete before any write, and
// a cancelled context after the reads stops the pass without writing.
func (e *Engine) reconcile(ctx context.Context, p *pass) error {
	var (
		meals     []*meal.Meal
		stock     []*inventory.Item
		existing  []*shopping.Item
		state     *shopping.SyncState
		readGroup errgroup.Group
	)
	readGroup.Go(func() (err error) {
		if meals, err = e.meals.List(ctx, p.userID); err != nil {
			return errors.NewDatabaseError("list meals", err)
		}
		return nil
	})
	readGroup.Go(func() (err error) {
		if stock, err = e.inventory.List(ctx, p.userID); err != nil {
			return errors.NewDatabaseError("list inventory", err)
		}
		return nil
	})
	readGroup.Go(func() (err error) {
		if existing, err = e.items.List(ctx, p.userID); err != nil {
			return errors.NewDatabaseError("list shopping items", err)
		}
		return nil
	})
	readGroup.Go(func() (err error) {
		if state, err = e.states.Get(ctx, p.userID); err != nil {
			return errors.NewDatabaseError("load sync state", err)
		}
		return nil
	})
	if err := readGroup.Wait(); err != nil {
		return err
	}

	required, err := e.aggregator.Aggregate(ctx, meal.FilterWeek(meals, p.weekKey))
	if err != nil {
		return errors.Wrap(err, "failed to aggregate requirements")
	}
	consumed := state.ConsumedFor(p.weekKey)
	target := ApplySuppression(Deficits(required.Counts, inventory.ByKey(stock)), consumed)

	if err := ctx.Err(); err != nil {
		return errors.NewSyncCancelledError(p.userID, err)
	}

	plan := planChanges(shopping.AutoItems(existing), target, required)

	if err := e.deleteAll(ctx, p, plan.duplicates, "duplicate"); err != nil {
		return err
	}

	for _, change := range plan.upserts {
		if change.item == nil {
			item, err := shopping.NewAutoItem(p.userID, change.displayName, change.qty)
			if err != nil {
				return errors.Wrap(err, "failed to build auto item")
			}
			if err := e.items.Create(ctx, item); err != nil {
				return errors.NewDatabaseError("create shopping item", err)
			}
			p.report.Created++
			p.events.Record(shopping.AutoItemCreatedEvent{
				UserID: p.userID, ItemID: item.ID, Key: change.key, Quantity: change.qty, CreatedAt: time.Now().UTC(),
			})
			continue
		}

		if err := change.item.Retarget(change.displayName, change.qty); err != nil {
			return errors.Wrap(err, "failed to retarget auto item")
		}
		if err := e.items.Update(ctx, change.item); err != nil {
			return errors.NewDatabaseError("update shopping item", err)
		}
		p.report.Updated++
		p.events.Record(shopping.AutoItemUpdatedEvent{
			UserID: p.userID, ItemID: change.item.ID, Key: change.key, Quantity: change.qty, UpdatedAt: time.Now().UTC(),
		})
	}

	if err := e.deleteAll(ctx, p, plan.stale, "no deficit"); err != nil {
		return err
	}

	next := shopping.NewSyncState(p.weekKey)
	next.Consumed = consumed
	if _, err := e.states.Update(ctx, p.userID, next); err != nil {
		return errors.NewDatabaseError("save sync state", err)
	}
	return nil
}

// deleteAll removes independent rows concurrently.
func (e *Engine) deleteAll(ctx context.Context, p *pass, items []*shopping.Item, reason string) error {
	if len(items) == 0 {
		return nil
	}

	var (
		group   errgroup.Group
		mu      sync.Mutex
		deleted []*shopping.Item
	)
	for _, item := range items {
		item := item
		group.Go(func() error {
			if err := e.items.Delete(ctx, item.ID); err != nil {
				return errors.NewDatabaseError("delete shopping item", err)
			}
			mu.Lock()
			deleted = append(deleted, item)
			mu.Unlock()
			return nil
		})
	}
	err := group.Wait()

	sort.Slice(deleted, func(i, j int) bool { return deleted[i].ID < deleted[j].ID })
	for _, item := range deleted {
		p.report.Deleted++
		p.events.Record(shopping.AutoItemDeletedEvent{
			UserID: p.userID, ItemID: item.ID, Key: item.Key(), Reason: reason, DeletedAt: time.Now().UTC(),
		})
	}
	return err
}

func (e *Engine) publish(ctx context.Context, events ...shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := e.publisher.Publish(ctx, events...); err != nil {
		e.logger.Warn("Failed to publish shopping events", zap.Int("count", len(events)), zap.Error(err))
	}
}

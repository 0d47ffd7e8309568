package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planifia/planner/internal/domain/ingredient"
	"github.com/planifia/planner/internal/domain/inventory"
	"github.com/planifia/planner/internal/domain/meal"
	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/domain/shopping"
	"github.com/planifia/planner/internal/ports/outbound"
)

// MealRepository keeps meals in insertion order
type MealRepository struct {
	mu    sync.RWMutex
	order []string
	meals map[string]meal.Meal
}

// NewMealRepository creates an empty meal store
func NewMealRepository() *MealRepository {
	return &MealRepository{meals: map[string]meal.Meal{}}
}

var _ outbound.MealRepository = (*MealRepository)(nil)

func (r *MealRepository) List(ctx context.Context, userID string) ([]*meal.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*meal.Meal, 0)
	for _, id := range r.order {
		if m := r.meals[id]; m.UserID == userID {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *MealRepository) FindByID(ctx context.Context, id string) (*meal.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meals[id]
	if !ok {
		return nil, meal.ErrMealNotFound
	}
	return &m, nil
}

func (r *MealRepository) Create(ctx context.Context, m *meal.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, exists := r.meals[m.ID]; !exists {
		r.order = append(r.order, m.ID)
	}
	r.meals[m.ID] = *m
	return nil
}

func (r *MealRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meals[id]; !ok {
		return meal.ErrMealNotFound
	}
	r.remove(id)
	return nil
}

func (r *MealRepository) DeleteSlot(ctx context.Context, userID string, date time.Time, mealType meal.Type) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := meal.CalendarDay(date)
	var victims []string
	for _, id := range r.order {
		m := r.meals[id]
		if m.UserID == userID && m.Type == mealType && m.Date.Equal(day) {
			victims = append(victims, id)
		}
	}
	for _, id := range victims {
		r.remove(id)
	}
	return int64(len(victims)), nil
}

func (r *MealRepository) remove(id string) {
	delete(r.meals, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// InventoryRepository keeps inventory items keyed by id
type InventoryRepository struct {
	mu    sync.RWMutex
	items map[string]inventory.Item
}

// NewInventoryRepository creates an empty inventory store
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{items: map[string]inventory.Item{}}
}

var _ outbound.InventoryRepository = (*InventoryRepository)(nil)

func (r *InventoryRepository) List(ctx context.Context, userID string) ([]*inventory.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*inventory.Item, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			item := item
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*inventory.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, inventory.ErrItemNotFound
	}
	return &item, nil
}

func (r *InventoryRepository) UpsertByName(ctx context.Context, userID, name string, qty shared.Quantity) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	key := ingredient.Key(name)

	var existing *inventory.Item
	for id, item := range r.items {
		if item.UserID == userID && item.Key() == key {
			item := r.items[id]
			existing = &item
			break
		}
	}

	if !qty.IsPositive() {
		if existing != nil {
			delete(r.items, existing.ID)
		}
		return nil, nil
	}

	if existing != nil {
		existing.IngredientName = name
		existing.Quantity = qty
		r.items[existing.ID] = *existing
		out := *existing
		return &out, nil
	}

	created, err := inventory.NewItem(userID, name, qty)
	if err != nil {
		return nil, err
	}
	r.items[created.ID] = *created
	return created, nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return inventory.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

// ShoppingItemRepository keeps shopping items in insertion order
type ShoppingItemRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]shopping.Item
}

// NewShoppingItemRepository creates an empty shopping list store
func NewShoppingItemRepository() *ShoppingItemRepository {
	return &ShoppingItemRepository{items: map[string]shopping.Item{}}
}

var _ outbound.ShoppingItemRepository = (*ShoppingItemRepository)(nil)

func (r *ShoppingItemRepository) List(ctx context.Context, userID string) ([]*shopping.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*shopping.Item, 0)
	for _, id := range r.order {
		if item := r.items[id]; item.UserID == userID {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

func (r *ShoppingItemRepository) FindByID(ctx context.Context, id string) (*shopping.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, shopping.ErrItemNotFound
	}
	return cloneItem(item), nil
}

func (r *ShoppingItemRepository) Create(ctx context.Context, item *shopping.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if _, exists := r.items[item.ID]; !exists {
		r.order = append(r.order, item.ID)
	}
	r.items[item.ID] = *cloneItem(*item)
	return nil
}

func (r *ShoppingItemRepository) Update(ctx context.Context, item *shopping.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return shopping.ErrItemNotFound
	}
	r.items[item.ID] = *cloneItem(*item)
	return nil
}

func (r *ShoppingItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return shopping.ErrItemNotFound
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneItem(item shopping.Item) *shopping.Item {
	out := item
	if item.RequiredQuantity != nil {
		qty := *item.RequiredQuantity
		out.RequiredQuantity = &qty
	}
	if item.MealID != nil {
		id := *item.MealID
		out.MealID = &id
	}
	return &out
}

// SyncStateRepository keeps one sync state per user
type SyncStateRepository struct {
	mu     sync.RWMutex
	states map[string]shopping.SyncState
}

// NewSyncStateRepository creates an empty sync state store
func NewSyncStateRepository() *SyncStateRepository {
	return &SyncStateRepository{states: map[string]shopping.SyncState{}}
}

var _ outbound.SyncStateRepository = (*SyncStateRepository)(nil)

func (r *SyncStateRepository) Get(ctx context.Context, userID string) (*shopping.SyncState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	return cloneState(state), nil
}

func (r *SyncStateRepository) Update(ctx context.Context, userID string, state *shopping.SyncState) (*shopping.SyncState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneState(*state)
	r.states[userID] = *stored
	return cloneState(*stored), nil
}

func cloneState(state shopping.SyncState) *shopping.SyncState {
	out := shopping.NewSyncState(state.WeekKey)
	for key, qty := range state.Consumed {
		out.Consumed[key] = qty
	}
	return out
}

// ShoppingNotesRepository keeps one note per user
type ShoppingNotesRepository struct {
	mu    sync.RWMutex
	notes map[string]string
}

// NewShoppingNotesRepository creates an empty notes store
func NewShoppingNotesRepository() *ShoppingNotesRepository {
	return &ShoppingNotesRepository{notes: map[string]string{}}
}

var _ outbound.ShoppingNotesRepository = (*ShoppingNotesRepository)(nil)

func (r *ShoppingNotesRepository) Get(ctx context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notes[userID], nil
}

func (r *ShoppingNotesRepository) Update(ctx context.Context, userID, notes string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[userID] = notes
	return notes, nil
}

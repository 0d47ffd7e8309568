package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/ports/inbound"
)

// ShoppingHandlers serves the shopping list, its notes and the sync state
type ShoppingHandlers struct {
	responder
	shopping inbound.ShoppingService
	sync     inbound.ReconciliationService
	clock    shared.Clock
}

// NewShoppingHandlers creates shopping handlers
func NewShoppingHandlers(shopping inbound.ShoppingService, sync inbound.ReconciliationService, clock shared.Clock, logger *zap.Logger) *ShoppingHandlers {
	return &ShoppingHandlers{
		responder: newResponder(logger),
		shopping:  shopping,
		sync:      sync,
		clock:     clock,
	}
}

// AddItemRequest is the body of POST /shopping/items
type AddItemRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// GroupRequest names the members of one displayed group
type GroupRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,required"`
}

// NotesRequest is the body of PUT /shopping/notes
type NotesRequest struct {
	Notes string `json:"notes"`
}

// List handles GET /users/{userID}/shopping
func (h *ShoppingHandlers) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.shopping.List(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, list)
}

// AddItem handles POST /users/{userID}/shopping/items
func (h *ShoppingHandlers) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.shopping.AddManual(r.Context(), chi.URLParam(r, "userID"), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: item})
}

// ToggleGroup handles POST /users/{userID}/shopping/groups/toggle
func (h *ShoppingHandlers) ToggleGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	purchased, err := h.shopping.TogglePurchased(r.Context(), chi.URLParam(r, "userID"), req.ItemIDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, map[string]bool{"purchased": purchased})
}

// DeleteGroup handles POST /users/{userID}/shopping/groups/delete
func (h *ShoppingHandlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.shopping.DeleteGroup(r.Context(), chi.URLParam(r, "userID"), req.ItemIDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, report)
}

// GetNotes handles GET /users/{userID}/shopping/notes
func (h *ShoppingHandlers) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.shopping.GetNotes(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, NotesRequest{Notes: notes})
}

// UpdateNotes handles PUT /users/{userID}/shopping/notes
func (h *ShoppingHandlers) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	notes, err := h.shopping.UpdateNotes(r.Context(), chi.URLParam(r, "userID"), req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, NotesRequest{Notes: notes})
}

// Sync handles POST /users/{userID}/shopping/sync
func (h *ShoppingHandlers) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.shopping.Sync(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, report)
}

// Status handles GET /users/{userID}/shopping/sync
func (h *ShoppingHandlers) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.sync.Status(r.Context(), chi.URLParam(r, "userID"), h.clock())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, status)
}

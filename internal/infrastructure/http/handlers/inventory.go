package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/ports/inbound"
)

// InventoryHandlers serves on-hand stock
type InventoryHandlers struct {
	responder
	inventory inbound.InventoryService
}

// NewInventoryHandlers creates inventory handlers
func NewInventoryHandlers(inventory inbound.InventoryService, logger *zap.Logger) *InventoryHandlers {
	return &InventoryHandlers{responder: newResponder(logger), inventory: inventory}
}

// UpsertInventoryRequest is the body of PUT /inventory. Quantity is a
// number or "m" for unlimited; an explicit zero removes the entry.
type UpsertInventoryRequest struct {
	Name     string           `json:"name" validate:"required,max=255"`
	Quantity *shared.Quantity `json:"quantity" validate:"required"`
}

// AdjustInventoryRequest moves a quantity by whole quarters
type AdjustInventoryRequest struct {
	DeltaQuarters int64 `json:"delta_quarters" validate:"required"`
}

// List handles GET /users/{userID}/inventory
func (h *InventoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, items)
}

// Upsert handles PUT /users/{userID}/inventory
func (h *InventoryHandlers) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertInventoryRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.inventory.Upsert(r.Context(), inbound.UpsertInventoryCommand{
		UserID:         chi.URLParam(r, "userID"),
		IngredientName: req.Name,
		Quantity:       *req.Quantity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if dto == nil {
		h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Item removed"})
		return
	}
	h.ok(w, dto)
}

// Adjust handles POST /users/{userID}/inventory/{itemID}/adjust
func (h *InventoryHandlers) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustInventoryRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.inventory.Adjust(r.Context(), inbound.AdjustInventoryCommand{
		UserID:        chi.URLParam(r, "userID"),
		ItemID:        chi.URLParam(r, "itemID"),
		DeltaQuarters: req.DeltaQuarters,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if dto == nil {
		h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Item removed"})
		return
	}
	h.ok(w, dto)
}

// Delete handles DELETE /users/{userID}/inventory/{itemID}
func (h *InventoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Delete(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "itemID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

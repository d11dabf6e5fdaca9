package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/ports/inbound"
	"github.com/pantrychef/backend/pkg/errors"
)

// PantryHandlers handles pantry CRUD and the shopping list
type PantryHandlers struct {
	responder
	service inbound.PantryService
}

// NewPantryHandlers creates pantry handlers
func NewPantryHandlers(service inbound.PantryService, logger *zap.Logger) *PantryHandlers {
	return &PantryHandlers{
		responder: responder{logger: logger.Named("pantry-api")},
		service:   service,
	}
}

// List handles GET /api/pantry
func (h *PantryHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []pantry.Item{}
	}

	h.writeSuccess(w, http.StatusOK, items, "")
}

// Add handles POST /api/pantry. Merging into an existing item answers 200,
// a new item 201.
func (h *PantryHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.Add(r.Context(), inbound.AddItemCommand{
		Name:     req.Name,
		Quantity: req.QuantityOrDefault(),
		Unit:     req.Unit,
		Category: req.Category,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if result.Created {
		h.writeSuccess(w, http.StatusCreated, result.Item, result.Item.Name+" added successfully!")
		return
	}
	h.writeSuccess(w, http.StatusOK, result.Item, result.Item.Name+" updated successfully!")
}

// Update handles PUT /api/pantry/{id}
func (h *PantryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, r, errors.NewBadRequestError("Item id is required"))
		return
	}

	var req UpdateItemRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.service.Update(r.Context(), id, req.Patch())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, item, "Item updated successfully")
}

// Delete handles DELETE /api/pantry/{id}
func (h *PantryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, r, errors.NewBadRequestError("Item id is required"))
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	message := "Item deleted successfully"
	if !result.Deleted {
		message = "Item not found, nothing deleted"
	}
	h.writeSuccess(w, http.StatusOK, result, message)
}

// ShoppingList handles POST /api/shopping-list
func (h *PantryHandlers) ShoppingList(w http.ResponseWriter, r *http.Request) {
	var req ShoppingListRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	missing, err := h.service.ShoppingList(r.Context(), req.Ingredients)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if missing == nil {
		missing = []string{}
	}

	h.writeSuccess(w, http.StatusOK, ShoppingListResponse{Missing: missing}, "")
}

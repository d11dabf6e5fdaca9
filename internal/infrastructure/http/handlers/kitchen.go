package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/ports/inbound"
)

// KitchenHandlers handles recipe generation and meal planning
type KitchenHandlers struct {
	responder
	service inbound.KitchenService
}

// NewKitchenHandlers creates kitchen handlers
func NewKitchenHandlers(service inbound.KitchenService, logger *zap.Logger) *KitchenHandlers {
	return &KitchenHandlers{
		responder: responder{logger: logger.Named("kitchen-api")},
		service:   service,
	}
}

// GenerateRecipe handles POST /api/generate_recipe
func (h *KitchenHandlers) GenerateRecipe(w http.ResponseWriter, r *http.Request) {
	var req GenerateRecipeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.GenerateRecipes(r.Context(), inbound.GenerateRecipesCommand{
		Mode:        resolveMode(req.Mode, req.CookingMode),
		Preferences: req.Preferences(),
		Pantry:      toItems(req.Pantry),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, result, "")
}

// MealPlan handles POST /api/meal-plan
func (h *KitchenHandlers) MealPlan(w http.ResponseWriter, r *http.Request) {
	var req MealPlanRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.MealPlan(r.Context(), inbound.MealPlanCommand{
		Mode:   resolveMode(req.Mode, req.CookingMode),
		Pantry: toItems(req.Pantry),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, result, "")
}

// PlanMeal handles POST /api/plan-meal
func (h *KitchenHandlers) PlanMeal(w http.ResponseWriter, r *http.Request) {
	var req PlanMealRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	meal, err := h.service.PlanMeal(r.Context(), inbound.PlanMealCommand{Names: req.Pantry})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeSuccess(w, http.StatusOK, meal, "")
}

// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealplan/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
)

const maxBodyBytes = 1 << 20

// APIHandlers handles REST API requests
type APIHandlers struct {
	recipes inbound.RecipeService
	plans   inbound.MealPlanService
	logger  *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(recipes inbound.RecipeService, plans inbound.MealPlanService, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		recipes: recipes,
		plans:   plans,
		logger:  logger.Named("api"),
	}
}

// Routes mounts the API on r
func (h *APIHandlers) Routes(r chi.Router) {
	r.Route("/recipes", func(r chi.Router) {
		r.Post("/", h.CreateRecipe)
		r.Get("/{recipeID}", h.GetRecipe)
		r.Delete("/{recipeID}", h.DeleteRecipe)
	})

	r.Route("/plans", func(r chi.Router) {
		r.Post("/", h.CreatePlan)
		r.Route("/{planID}", func(r chi.Router) {
			r.Get("/", h.GetPlan)

			r.Post("/entries", h.AddEntry)
			r.Delete("/entries/{entryID}", h.RemoveEntry)

			r.Post("/persons", h.AddPerson)
			r.Delete("/persons/{personID}", h.RemovePerson)

			r.Post("/generate", h.AutoGenerate)
			r.Post("/scale", h.Scale)

			r.Get("/shopping-list", h.GetShoppingList)
			r.Post("/shopping-list", h.GenerateShoppingList)
		})
	})
}

// CreateRecipe handles POST /recipes
func (h *APIHandlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.CreateRecipeCommand
	if !h.decode(w, r, &cmd, true) {
		return
	}

	dto, err := h.recipes.CreateRecipe(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, dto)
}

// GetRecipe handles GET /recipes/{recipeID}
func (h *APIHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "recipeID")
	if !ok {
		return
	}

	dto, err := h.recipes.GetRecipe(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto)
}

// DeleteRecipe handles DELETE /recipes/{recipeID}
func (h *APIHandlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "recipeID")
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreatePlan handles POST /plans
func (h *APIHandlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.CreatePlanCommand
	if !h.decode(w, r, &cmd, true) {
		return
	}

	dto, err := h.plans.CreatePlan(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, dto)
}

// GetPlan handles GET /plans/{planID}
func (h *APIHandlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}

	dto, err := h.plans.GetPlan(r.Context(), planID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto)
}

// AddEntry handles POST /plans/{planID}/entries
func (h *APIHandlers) AddEntry(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}

	var cmd inbound.AddEntryCommand
	if !h.decode(w, r, &cmd, true) {
		return
	}
	cmd.PlanID = planID

	dto, err := h.plans.AddEntry(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, dto)
}

// RemoveEntry handles DELETE /plans/{planID}/entries/{entryID}
func (h *APIHandlers) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}
	entryID, ok := h.pathID(w, r, "entryID")
	if !ok {
		return
	}

	if err := h.plans.RemoveEntry(r.Context(), planID, entryID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPerson handles POST /plans/{planID}/persons
func (h *APIHandlers) AddPerson(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}

	var cmd inbound.AddPersonCommand
	if !h.decode(w, r, &cmd, true) {
		return
	}
	cmd.PlanID = planID

	dto, err := h.plans.AddPerson(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, dto)
}

// RemovePerson handles DELETE /plans/{planID}/persons/{personID}
func (h *APIHandlers) RemovePerson(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}
	personID, ok := h.pathID(w, r, "personID")
	if !ok {
		return
	}

	if err := h.plans.RemovePerson(r.Context(), planID, personID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AutoGenerate handles POST /plans/{planID}/generate. An empty body uses
// the configured defaults.
func (h *APIHandlers) AutoGenerate(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}

	var cmd inbound.AutoGenerateCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	cmd.PlanID = planID

	result, err := h.plans.AutoGenerate(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

// Scale handles POST /plans/{planID}/scale. The mode defaults to reset.
func (h *APIHandlers) Scale(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}

	var cmd inbound.ScaleCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	cmd.PlanID = planID
	if cmd.Mode == "" {
		cmd.Mode = inbound.ScaleModeReset
	}

	result, err := h.plans.Scale(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

// GenerateShoppingList handles POST /plans/{planID}/shopping-list
func (h *APIHandlers) GenerateShoppingList(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}

	dto, err := h.plans.GenerateShoppingList(r.Context(), planID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto)
}

// GetShoppingList handles GET /plans/{planID}/shopping-list
func (h *APIHandlers) GetShoppingList(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}

	dto, err := h.plans.GetShoppingList(r.Context(), planID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto)
}

// decode reads a JSON body into v. When required is false an empty body
// leaves v untouched.
func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, v interface{}, required bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	switch {
	case err == nil:
		return true
	case err == io.EOF && !required:
		return true
	case err == io.EOF:
		h.writeError(w, r, errors.NewBadRequestError("Request body is required"))
	default:
		h.writeError(w, r, errors.NewAppError(errors.CodeBadRequest, "Invalid JSON body", err.Error()))
	}
	return false
}

func (h *APIHandlers) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.writeError(w, r, errors.NewAppError(errors.CodeBadRequest, "Invalid identifier", err.Error()).
			WithMetadata(param, raw))
		return uuid.Nil, false
	}
	return id, true
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := chimiddleware.GetReqID(r.Context())

	appErr := errors.Wrap(err, "")
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}

	middleware.WriteError(w, appErr, requestID)
}

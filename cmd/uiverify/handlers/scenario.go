package handlers

import (
	"errors"
	"net/http"

	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/scenario"
)

// ScenarioHandler handles scenario-related requests.
type ScenarioHandler struct {
	scenarios scenario.Store
	logger    logger.Logger
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(scenarios scenario.Store, log logger.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		scenarios: scenarios,
		logger:    log,
	}
}

// CreateScenarioRequest represents a scenario creation request.
type CreateScenarioRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Steps       scenario.Steps `json:"steps"`
}

// UpdateScenarioRequest represents a scenario update request.
type UpdateScenarioRequest struct {
	Description *string         `json:"description,omitempty"`
	Steps       *scenario.Steps `json:"steps,omitempty"`
}

// BuiltinsResponse lists the built-in scenario catalog.
type BuiltinsResponse struct {
	Names []string `json:"names"`
}

// Builtins handles listing built-in scenarios.
func (h *ScenarioHandler) Builtins(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, BuiltinsResponse{Names: scenario.BuiltinNames()})
}

// Create handles creating a scenario for a target.
func (h *ScenarioHandler) Create(w http.ResponseWriter, r *http.Request) {
	targetID, ok := parseUUIDOrRespond(w, r, "target_id", "target")
	if !ok {
		return
	}

	var req CreateScenarioRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sc := &scenario.Scenario{
		TargetID:    targetID,
		Name:        req.Name,
		Description: req.Description,
		Steps:       req.Steps,
	}

	if err := h.scenarios.Create(r.Context(), sc); err != nil {
		if errors.Is(err, scenario.ErrInvalidScenarioName) ||
			errors.Is(err, scenario.ErrNoSteps) ||
			errors.Is(err, scenario.ErrInvalidAction) ||
			errors.Is(err, scenario.ErrMissingStepField) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create scenario")
		return
	}

	respondJSON(w, http.StatusCreated, sc)
}

// ListByTarget handles listing a target's scenarios.
func (h *ScenarioHandler) ListByTarget(w http.ResponseWriter, r *http.Request) {
	targetID, ok := parseUUIDOrRespond(w, r, "target_id", "target")
	if !ok {
		return
	}
	limit, offset := parsePagination(r)

	scenarios, err := h.scenarios.ListByTarget(r.Context(), targetID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list scenarios")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  scenarios,
		Limit:  limit,
		Offset: offset,
	})
}

// GetByID handles retrieving a single scenario.
func (h *ScenarioHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "scenario")
	if !ok {
		return
	}

	sc, err := h.scenarios.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, scenario.ErrScenarioNotFound) {
			respondError(w, http.StatusNotFound, "scenario not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get scenario")
		return
	}

	respondJSON(w, http.StatusOK, sc)
}

// Update handles updating a scenario. Replacing the steps creates a
// new scenario version; the response carries the latest version.
func (h *ScenarioHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "scenario")
	if !ok {
		return
	}

	var req UpdateScenarioRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == nil && req.Steps == nil {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if req.Description != nil {
		err := h.scenarios.Update(r.Context(), id, scenario.SetDescription(*req.Description))
		if err != nil {
			if errors.Is(err, scenario.ErrScenarioNotFound) {
				respondError(w, http.StatusNotFound, "scenario not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "failed to update scenario")
			return
		}
	}

	if req.Steps != nil {
		sc, err := h.scenarios.ReplaceSteps(r.Context(), id, *req.Steps)
		if err != nil {
			if errors.Is(err, scenario.ErrScenarioNotFound) {
				respondError(w, http.StatusNotFound, "scenario not found")
				return
			}
			if errors.Is(err, scenario.ErrInvalidAction) || errors.Is(err, scenario.ErrMissingStepField) ||
				errors.Is(err, scenario.ErrNoSteps) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			respondError(w, http.StatusInternalServerError, "failed to update scenario")
			return
		}
		respondJSON(w, http.StatusOK, sc)
		return
	}

	sc, err := h.scenarios.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get updated scenario")
		return
	}
	respondJSON(w, http.StatusOK, sc)
}

// Delete handles removing a scenario.
func (h *ScenarioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "scenario")
	if !ok {
		return
	}

	if err := h.scenarios.Delete(r.Context(), id); err != nil {
		if errors.Is(err, scenario.ErrScenarioNotFound) {
			respondError(w, http.StatusNotFound, "scenario not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete scenario")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "scenario deleted"})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/target"
)

// TargetHandler handles target-related requests.
type TargetHandler struct {
	targets       target.Store
	credentialKey []byte
	logger        logger.Logger
}

// NewTargetHandler creates a new target handler.
func NewTargetHandler(targets target.Store, credentialKey []byte, log logger.Logger) *TargetHandler {
	return &TargetHandler{
		targets:       targets,
		credentialKey: credentialKey,
		logger:        log,
	}
}

// CreateTargetRequest represents a target creation request.
type CreateTargetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BaseURL     string `json:"base_url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

// UpdateTargetRequest represents a target update request.
type UpdateTargetRequest struct {
	Description *string `json:"description,omitempty"`
	BaseURL     *string `json:"base_url,omitempty"`
	Username    *string `json:"username,omitempty"`
	Password    *string `json:"password,omitempty"`
}

// Create handles registering a new target.
func (h *TargetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTargetRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tgt := &target.Target{
		Name:        req.Name,
		Description: req.Description,
		BaseURL:     req.BaseURL,
		Username:    req.Username,
		IsActive:    true,
	}
	if req.Password != "" {
		if err := tgt.SetPassword(h.credentialKey, req.Password); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to encrypt password")
			return
		}
	}

	if err := h.targets.Create(r.Context(), tgt); err != nil {
		if errors.Is(err, target.ErrInvalidTargetName) ||
			errors.Is(err, target.ErrInvalidBaseURL) ||
			errors.Is(err, target.ErrInvalidUsername) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create target")
		return
	}

	respondJSON(w, http.StatusCreated, tgt)
}

// List handles listing active targets.
func (h *TargetHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	targets, err := h.targets.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list targets")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  targets,
		Limit:  limit,
		Offset: offset,
	})
}

// GetByID handles retrieving a single target.
func (h *TargetHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "target")
	if !ok {
		return
	}

	tgt, err := h.targets.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, target.ErrTargetNotFound) {
			respondError(w, http.StatusNotFound, "target not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get target")
		return
	}

	respondJSON(w, http.StatusOK, tgt)
}

// Update handles updating a target.
func (h *TargetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "target")
	if !ok {
		return
	}

	var req UpdateTargetRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var setters []target.UpdateSetter
	if req.Description != nil {
		setters = append(setters, target.SetDescription(*req.Description))
	}
	if req.BaseURL != nil {
		setters = append(setters, target.SetBaseURL(*req.BaseURL))
	}
	if req.Username != nil {
		setters = append(setters, target.SetUsername(*req.Username))
	}
	if req.Password != nil {
		setters = append(setters, target.SetPassword(h.credentialKey, *req.Password))
	}
	if len(setters) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.targets.Update(r.Context(), id, setters...); err != nil {
		if errors.Is(err, target.ErrTargetNotFound) {
			respondError(w, http.StatusNotFound, "target not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update target")
		return
	}

	tgt, err := h.targets.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get updated target")
		return
	}
	respondJSON(w, http.StatusOK, tgt)
}

// Delete handles deactivating a target.
func (h *TargetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "target")
	if !ok {
		return
	}

	if err := h.targets.Delete(r.Context(), id); err != nil {
		if errors.Is(err, target.ErrTargetNotFound) {
			respondError(w, http.StatusNotFound, "target not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete target")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "target deactivated"})
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"

	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/run"
	"github.com/uiverify/uiverify/storage"
)

// RunHandler handles verification run requests.
type RunHandler struct {
	runs   run.Store
	assets run.AssetStore
	blobs  storage.BlobStorage
	tokens *securecookie.SecureCookie
	logger logger.Logger
}

// NewRunHandler creates a new run handler. tokenSecret signs artifact
// download tokens and tokenTTL bounds their validity in seconds.
func NewRunHandler(runs run.Store, assets run.AssetStore, blobs storage.BlobStorage, tokenSecret []byte, tokenTTL int, log logger.Logger) *RunHandler {
	tokens := securecookie.New(tokenSecret, nil)
	tokens.MaxAge(tokenTTL)
	return &RunHandler{
		runs:   runs,
		assets: assets,
		blobs:  blobs,
		tokens: tokens,
		logger: log,
	}
}

// AssetResponse is an asset enriched with a signed download URL.
type AssetResponse struct {
	*run.Asset
	DownloadURL string `json:"download_url"`
}

// List handles listing runs, optionally filtered by target.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var (
		runs []*run.Run
		err  error
	)
	if targetParam := r.URL.Query().Get("target_id"); targetParam != "" {
		targetID, parseErr := uuid.Parse(targetParam)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid target_id")
			return
		}
		runs, err = h.runs.ListByTarget(r.Context(), targetID, limit, offset)
	} else {
		runs, err = h.runs.List(r.Context(), limit, offset)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  runs,
		Limit:  limit,
		Offset: offset,
	})
}

// GetByID handles retrieving a single run.
func (h *RunHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	rec, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, run.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// ListAssets handles listing a run's artifacts. Each asset carries a
// signed, expiring download URL.
func (h *RunHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	if _, err := h.runs.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, run.ErrRunNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	assets, err := h.assets.ListByRun(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}

	items := make([]AssetResponse, 0, len(assets))
	for _, asset := range assets {
		token, err := h.tokens.Encode("artifact", asset.ID.String())
		if err != nil {
			h.logger.Error(r.Context(), "failed to sign artifact token", map[string]interface{}{
				"asset_id": asset.ID.String(),
				"error":    err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "failed to sign artifact token")
			return
		}
		items = append(items, AssetResponse{
			Asset:       asset,
			DownloadURL: fmt.Sprintf("/api/v1/artifacts/%s", token),
		})
	}

	respondJSON(w, http.StatusOK, items)
}

// DownloadArtifact streams an artifact identified by a signed token.
func (h *RunHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var idStr string
	if err := h.tokens.Decode("artifact", token, &idStr); err != nil {
		respondError(w, http.StatusForbidden, "invalid or expired artifact token")
		return
	}
	assetID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusForbidden, "invalid or expired artifact token")
		return
	}

	asset, err := h.assets.GetByID(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, run.ErrAssetNotFound) {
			respondError(w, http.StatusNotFound, "artifact not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get artifact")
		return
	}

	reader, err := h.blobs.Download(r.Context(), asset.AssetPath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "artifact data not found")
			return
		}
		h.logger.Error(r.Context(), "failed to download artifact", map[string]interface{}{
			"asset_id": asset.ID.String(),
			"path":     asset.AssetPath,
			"error":    err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to download artifact")
		return
	}
	defer reader.Close()

	if asset.MimeType != "" {
		w.Header().Set("Content-Type", asset.MimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", asset.FileName))
	if asset.FileSize > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", asset.FileSize))
	}

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn(r.Context(), "artifact stream interrupted", map[string]interface{}{
			"asset_id": asset.ID.String(),
			"error":    err.Error(),
		})
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/uiverify/uiverify/logger"
	"github.com/uiverify/uiverify/queue"
	"github.com/uiverify/uiverify/target"
)

// JobHandler handles verification job requests.
type JobHandler struct {
	jobs    queue.Store
	targets target.Store
	notify  func()
	logger  logger.Logger
}

// NewJobHandler creates a new job handler. notify wakes the worker
// pool after a job is enqueued; it may be nil.
func NewJobHandler(jobs queue.Store, targets target.Store, notify func(), log logger.Logger) *JobHandler {
	if notify == nil {
		notify = func() {}
	}
	return &JobHandler{
		jobs:    jobs,
		targets: targets,
		notify:  notify,
		logger:  log,
	}
}

// CreateJobRequest represents a job enqueue request. Either target_id
// or target_name selects the target; scenario_id takes precedence over
// scenario_name when both are set.
type CreateJobRequest struct {
	TargetID     string `json:"target_id,omitempty"`
	TargetName   string `json:"target_name,omitempty"`
	ScenarioID   string `json:"scenario_id,omitempty"`
	ScenarioName string `json:"scenario_name,omitempty"`
}

// Create handles enqueueing a verification job.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tgt, err := h.resolveTarget(r, &req)
	if err != nil {
		if errors.Is(err, target.ErrTargetNotFound) {
			respondError(w, http.StatusNotFound, "target not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &queue.Job{
		TargetID:     tgt.ID,
		ScenarioName: req.ScenarioName,
		Status:       queue.StatusCreated,
	}
	if req.ScenarioID != "" {
		scenarioID, err := uuid.Parse(req.ScenarioID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid scenario_id")
			return
		}
		job.ScenarioID = &scenarioID
		if job.ScenarioName == "" {
			job.ScenarioName = scenarioID.String()
		}
	}

	if err := h.jobs.Create(r.Context(), job); err != nil {
		if errors.Is(err, queue.ErrInvalidScenarioName) {
			respondError(w, http.StatusBadRequest, "scenario_id or scenario_name is required")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.logger.Info(r.Context(), "job enqueued", map[string]interface{}{
		"job_id":    job.ID.String(),
		"target_id": tgt.ID.String(),
		"scenario":  job.ScenarioName,
	})
	h.notify()

	respondJSON(w, http.StatusCreated, job)
}

func (h *JobHandler) resolveTarget(r *http.Request, req *CreateJobRequest) (*target.Target, error) {
	if req.TargetID != "" {
		id, err := uuid.Parse(req.TargetID)
		if err != nil {
			return nil, errors.New("invalid target_id")
		}
		return h.targets.GetByID(r.Context(), id)
	}
	if req.TargetName != "" {
		return h.targets.GetByName(r.Context(), req.TargetName)
	}
	return nil, errors.New("target_id or target_name is required")
}

// List handles listing jobs, optionally filtered by status.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var (
		jobs []*queue.Job
		err  error
	)
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := queue.Status(statusParam)
		if !status.IsValid() {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		jobs, err = h.jobs.ListByStatus(r.Context(), status, limit, offset)
	} else {
		jobs, err = h.jobs.List(r.Context(), limit, offset)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  jobs,
		Limit:  limit,
		Offset: offset,
	})
}

// GetByID handles retrieving a single job.
func (h *JobHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "job")
	if !ok {
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

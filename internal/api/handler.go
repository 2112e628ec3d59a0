// Package api exposes the job registry over HTTP: submit an input file,
// watch it progress over Server-Sent Events, fetch the trimmed output, or
// cancel it early.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/quietcut/quietcut/internal/history"
	"github.com/quietcut/quietcut/internal/jobs"
	"github.com/quietcut/quietcut/internal/util"
)

// Handler holds everything the HTTP surface needs to admit and inspect
// jobs. It has no mutable state of its own beyond what Registry provides.
type Handler struct {
	registry      *jobs.Registry
	maxInputBytes int64 // 0 means unbounded
	ledger        *history.Ledger
}

// NewHandler wires a Handler to a Registry. maxInputBytes bounds the size of
// a file CreateJob will admit; pass 0 for no limit.
func NewHandler(registry *jobs.Registry, maxInputBytes int64) *Handler {
	return &Handler{registry: registry, maxInputBytes: maxInputBytes}
}

// WithHistory enables GET /api/history, backed by ledger. Optional: a
// Handler with no ledger set serves every other route normally and answers
// history requests with 404.
func (h *Handler) WithHistory(ledger *history.Ledger) *Handler {
	h.ledger = ledger
	return h
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// jobView is the JSON shape returned for a single job.
type jobView struct {
	ID     string      `json:"id"`
	Status jobs.Status `json:"status"`
}

func newJobView(j *jobs.Job) jobView {
	return jobView{ID: j.ID.String(), Status: j.LastStatus()}
}

// CreateJob handles POST /api/jobs: the request body is the raw bytes of the
// video to trim. The body is streamed straight to disk under the registry's
// inputs directory; a job starts as soon as the write completes and its id
// is returned immediately. The caller follows up with GET /api/jobs/{id} or
// the SSE stream to observe progress.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.registry.Admit(r.Body, h.maxInputBytes)
	if err != nil {
		if h.maxInputBytes > 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s (limit %s)", err, util.Bytes(h.maxInputBytes)))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, newJobView(job))
}

// GetJob handles GET /api/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobs.ParseJobId(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, newJobView(job))
}

// CancelJob handles DELETE /api/jobs/{id}.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobs.ParseJobId(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	if err := h.registry.Cancel(id); err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// GetOutput handles GET /api/jobs/{id}/output: serves the encoded file once
// the job has completed. Any other status, including still in progress,
// errored, cancelled, or already swept, answers 404: there is nothing to
// serve at that URL.
func (h *Handler) GetOutput(w http.ResponseWriter, r *http.Request) {
	id, err := jobs.ParseJobId(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	status := job.LastStatus()
	if status.Kind != jobs.StatusKindCompleted {
		writeError(w, http.StatusNotFound, fmt.Sprintf("job is %s, not completed", status.Kind))
		return
	}

	http.ServeFile(w, r, job.OutputPath)
}

// GetHistory handles GET /api/history: recently recorded job outcomes, for
// operator visibility only. Answers 404 if no history ledger was wired in,
// and accepts an optional ?limit= query parameter (default 50).
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	outcomes, err := h.ledger.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

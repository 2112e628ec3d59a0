package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quietcut/quietcut/internal/jobs"
)

// sseEvent is the wire shape of one Server-Sent Events message.
type sseEvent struct {
	Type   string      `json:"type"`
	ID     string      `json:"id,omitempty"`
	Status jobs.Status `json:"status"`
	Lagged int         `json:"lagged,omitempty"`
}

// JobEvents handles GET /api/jobs/{id}/events. It subscribes before reading
// the last known status, so a terminal transition is never missed: it is
// either reflected in the initial event or delivered afterwards, through the
// subscription or, for a subscriber whose buffer was full, through Done.
func (h *Handler) JobEvents(w http.ResponseWriter, r *http.Request) {
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

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates := job.Subscribe()
	defer job.Unsubscribe(updates)

	initial := job.LastStatus()
	writeSSE(w, flusher, sseEvent{Type: "status", ID: id.String(), Status: initial})
	if initial.IsTerminal() {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-job.Done():
			writeSSE(w, flusher, sseEvent{Type: "status", ID: id.String(), Status: job.LastStatus()})
			return
		case u, open := <-updates:
			if !open {
				return
			}
			if u.Lagged > 0 {
				writeSSE(w, flusher, sseEvent{Type: "lagged", ID: id.String(), Status: job.LastStatus(), Lagged: u.Lagged})
				continue
			}
			writeSSE(w, flusher, sseEvent{Type: "status", ID: id.String(), Status: u.Status})
			if u.Status.IsTerminal() {
				return
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event sseEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

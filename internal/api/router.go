package api

import "net/http"

// NewRouter builds the complete HTTP surface over a Handler, with request
// correlation applied to every route.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/jobs", h.CreateJob)
	mux.HandleFunc("GET /api/jobs/{id}", h.GetJob)
	mux.HandleFunc("DELETE /api/jobs/{id}", h.CancelJob)
	mux.HandleFunc("GET /api/jobs/{id}/events", h.JobEvents)
	mux.HandleFunc("GET /api/jobs/{id}/output", h.GetOutput)
	mux.HandleFunc("GET /api/history", h.GetHistory)

	return withRequestID(mux)
}

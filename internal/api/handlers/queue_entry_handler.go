package handlers

import (
	"net/http"
	"time"

	"github.com/zatekoja/patientqueue/internal/application/services"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

// QueueEntryHandler handles queue entry endpoints
type QueueEntryHandler struct {
	service *services.QueueEntryService
}

// NewQueueEntryHandler creates a new queue entry handler
func NewQueueEntryHandler(service *services.QueueEntryService) *QueueEntryHandler {
	return &QueueEntryHandler{service: service}
}

// CreateQueueEntry handles POST /api/queue-entries
func (h *QueueEntryHandler) CreateQueueEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUID         string     `json:"uuid"`
		QueueUUID    string     `json:"queue_uuid"`
		PatientUUID  string     `json:"patient_uuid"`
		StatusUUID   string     `json:"status_uuid"`
		PriorityUUID *string    `json:"priority_uuid"`
		SortWeight   float64    `json:"sort_weight"`
		StartedAt    *time.Time `json:"started_at"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.QueueUUID == "" {
		respondWithError(w, http.StatusBadRequest, "queue_uuid is required")
		return
	}

	entry := &entities.QueueEntry{
		UUID:         req.UUID,
		PatientUUID:  req.PatientUUID,
		StatusUUID:   req.StatusUUID,
		PriorityUUID: req.PriorityUUID,
		SortWeight:   req.SortWeight,
	}
	if req.StartedAt != nil {
		entry.StartedAt = *req.StartedAt
	}

	created, err := h.service.CreateQueueEntry(r.Context(), req.QueueUUID, entry)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// GetQueueEntry handles GET /api/queue-entries/{uuid}
func (h *QueueEntryHandler) GetQueueEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetQueueEntryByUUID(r.Context(), r.PathValue("uuid"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if entry == nil {
		respondWithError(w, http.StatusNotFound, "queue entry not found")
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

// ListActiveEntries handles GET /api/queues/{uuid}/entries
func (h *QueueEntryHandler) ListActiveEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListActiveEntries(r.Context(), r.PathValue("uuid"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// UpdateStatus handles PATCH /api/queue-entries/{uuid}/status
func (h *QueueEntryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.service.UpdateQueueEntryStatus(r.Context(), r.PathValue("uuid"), req.Status)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

// EndQueueEntry handles POST /api/queue-entries/{uuid}/end
func (h *QueueEntryHandler) EndQueueEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EndedAt *time.Time `json:"ended_at"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.service.EndQueueEntry(r.Context(), r.PathValue("uuid"), req.EndedAt)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

// VoidQueueEntry handles POST /api/queue-entries/{uuid}/void
func (h *QueueEntryHandler) VoidQueueEntry(w http.ResponseWriter, r *http.Request) {
	var req voidRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.service.VoidQueueEntry(r.Context(), r.PathValue("uuid"), req.Reason)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

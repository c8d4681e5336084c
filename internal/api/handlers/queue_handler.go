package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/patientqueue/internal/application/services"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
)

const dateLayout = "2006-01-02"

// QueueHandler handles queue endpoints
type QueueHandler struct {
	service *services.QueueService
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(service *services.QueueService) *QueueHandler {
	return &QueueHandler{service: service}
}

// ListQueuesByLocation handles GET /api/locations/{locationUuid}/queues
func (h *QueueHandler) ListQueuesByLocation(w http.ResponseWriter, r *http.Request) {
	locationUUID := r.PathValue("locationUuid")

	includeVoided := false
	if v := r.URL.Query().Get("includeVoided"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "includeVoided must be a boolean")
			return
		}
		includeVoided = parsed
	}

	queues, err := h.service.ListQueuesByLocation(r.Context(), locationUUID, includeVoided)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queues": queues,
		"count":  len(queues),
	})
}

// CreateQueue handles POST /api/queues
func (h *QueueHandler) CreateQueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUID         string  `json:"uuid"`
		Name         string  `json:"name"`
		Description  string  `json:"description"`
		LocationUUID string  `json:"location_uuid"`
		ServiceUUID  *string `json:"service_uuid"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	queue, err := h.service.CreateQueue(r.Context(), &entities.Queue{
		UUID:         req.UUID,
		Name:         req.Name,
		Description:  req.Description,
		LocationUUID: req.LocationUUID,
		ServiceUUID:  req.ServiceUUID,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, queue)
}

// GetQueue handles GET /api/queues/{uuid}
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.service.GetQueueByUUID(r.Context(), r.PathValue("uuid"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if queue == nil {
		respondWithError(w, http.StatusNotFound, "queue not found")
		return
	}

	respondWithJSON(w, http.StatusOK, queue)
}

// SearchQueues handles GET /api/queues/search
func (h *QueueHandler) SearchQueues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 100 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	queues, err := h.service.SearchQueues(r.Context(), repositories.QueueSearchParams{
		Query:        query.Get("q"),
		LocationUUID: query.Get("location"),
		Limit:        limit,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queues": queues,
		"count":  len(queues),
	})
}

// VoidQueue handles POST /api/queues/{uuid}/void
func (h *QueueHandler) VoidQueue(w http.ResponseWriter, r *http.Request) {
	var req voidRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	queue, err := h.service.VoidQueue(r.Context(), r.PathValue("uuid"), req.Reason)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, queue)
}

// PurgeQueue handles DELETE /api/queues/{uuid}
func (h *QueueHandler) PurgeQueue(w http.ResponseWriter, r *http.Request) {
	if err := h.service.PurgeQueue(r.Context(), r.PathValue("uuid")); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAverageWaitTime handles GET /api/queues/{uuid}/average-wait-time?date=YYYY-MM-DD&status=
func (h *QueueHandler) GetAverageWaitTime(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	date := h.service.Today()
	if v := query.Get("date"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, h.service.Location())
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
			return
		}
		date = parsed
	}

	var status *string
	if v := strings.TrimSpace(query.Get("status")); v != "" {
		status = &v
	}

	queueUUID := r.PathValue("uuid")
	avg, err := h.service.GetAverageWaitTimeByUUID(r.Context(), queueUUID, status, date)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queue_uuid":                queueUUID,
		"date":                      date.Format(dateLayout),
		"status_uuid":               status,
		"average_wait_time_minutes": avg,
	})
}

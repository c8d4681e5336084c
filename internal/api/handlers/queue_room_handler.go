package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/patientqueue/internal/application/services"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

// QueueRoomHandler handles queue room endpoints
type QueueRoomHandler struct {
	rooms  *services.QueueRoomService
	queues *services.QueueService
}

// NewQueueRoomHandler creates a new queue room handler
func NewQueueRoomHandler(rooms *services.QueueRoomService, queues *services.QueueService) *QueueRoomHandler {
	return &QueueRoomHandler{rooms: rooms, queues: queues}
}

// CreateQueueRoom handles POST /api/queue-rooms
func (h *QueueRoomHandler) CreateQueueRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUID         string `json:"uuid"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		QueueUUID    string `json:"queue_uuid"`
		LocationUUID string `json:"location_uuid"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	queue, ok := h.lookupQueue(w, r, req.QueueUUID)
	if !ok {
		return
	}

	room, err := h.rooms.CreateQueueRoom(r.Context(), &entities.QueueRoom{
		UUID:         req.UUID,
		Name:         req.Name,
		Description:  req.Description,
		QueueID:      queue.ID,
		LocationUUID: req.LocationUUID,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, room)
}

// ListQueueRooms handles GET /api/queue-rooms?queue=&location=
func (h *QueueRoomHandler) ListQueueRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	queue, ok := h.lookupQueue(w, r, query.Get("queue"))
	if !ok {
		return
	}

	rooms, err := h.rooms.GetQueueRoomsByQueueAndLocation(r.Context(), queue, query.Get("location"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queue_rooms": rooms,
		"count":       len(rooms),
	})
}

// GetQueueRoom handles GET /api/queue-rooms/{uuid}
func (h *QueueRoomHandler) GetQueueRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.GetQueueRoomByUUID(r.Context(), r.PathValue("uuid"))
	h.respondWithRoom(w, r, room, err)
}

// GetQueueRoomByID handles GET /api/queue-rooms/id/{id}
func (h *QueueRoomHandler) GetQueueRoomByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	room, err := h.rooms.GetQueueRoomByID(r.Context(), id)
	h.respondWithRoom(w, r, room, err)
}

// VoidQueueRoom handles POST /api/queue-rooms/{uuid}/void
func (h *QueueRoomHandler) VoidQueueRoom(w http.ResponseWriter, r *http.Request) {
	var req voidRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	room, err := h.rooms.VoidQueueRoom(r.Context(), r.PathValue("uuid"), req.Reason)
	h.respondWithRoom(w, r, room, err)
}

// PurgeQueueRoom handles DELETE /api/queue-rooms/{uuid}
func (h *QueueRoomHandler) PurgeQueueRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.PurgeQueueRoom(r.Context(), r.PathValue("uuid")); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QueueRoomHandler) lookupQueue(w http.ResponseWriter, r *http.Request, queueUUID string) (*entities.Queue, bool) {
	if queueUUID == "" {
		respondWithError(w, http.StatusBadRequest, "queue uuid is required")
		return nil, false
	}
	queue, err := h.queues.GetQueueByUUID(r.Context(), queueUUID)
	if err != nil {
		writeAppError(w, r, err)
		return nil, false
	}
	if queue == nil {
		respondWithError(w, http.StatusNotFound, "queue not found")
		return nil, false
	}
	return queue, true
}

func (h *QueueRoomHandler) respondWithRoom(w http.ResponseWriter, r *http.Request, room *entities.QueueRoom, err error) {
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if room == nil {
		respondWithError(w, http.StatusNotFound, "queue room not found")
		return
	}
	respondWithJSON(w, http.StatusOK, room)
}

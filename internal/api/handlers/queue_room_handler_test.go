package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/patientqueue/internal/domain/entities"
)

func TestQueueRoomHandler_CreateLookupAndList(t *testing.T) {
	api := newTestAPI(t)
	queue := api.createQueue(t, "Triage", "loc-1")

	w := api.do(t, http.MethodPost, "/api/queue-rooms", `{"name":"Room 1","queue_uuid":"`+queue.UUID+`","location_uuid":"loc-1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	room := decode[*entities.QueueRoom](t, w)
	assert.NotEmpty(t, room.UUID)
	assert.Equal(t, queue.ID, room.QueueID)

	w = api.do(t, http.MethodPost, "/api/queue-rooms", `{"name":"Room 2","queue_uuid":"`+queue.UUID+`","location_uuid":"loc-2"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(t, http.MethodGet, "/api/queue-rooms/"+room.UUID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Room 1", decode[*entities.QueueRoom](t, w).Name)

	w = api.do(t, http.MethodGet, "/api/queue-rooms/id/"+strconv.FormatInt(room.ID, 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, room.UUID, decode[*entities.QueueRoom](t, w).UUID)

	w = api.do(t, http.MethodGet, "/api/queue-rooms/id/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/queue-rooms/id/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/queue-rooms?queue="+queue.UUID+"&location=loc-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[struct {
		Rooms []*entities.QueueRoom `json:"queue_rooms"`
		Count int                   `json:"count"`
	}](t, w)
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, room.UUID, listed.Rooms[0].UUID)
}

func TestQueueRoomHandler_UnknownQueue(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/queue-rooms", `{"name":"Room 1","queue_uuid":"missing","location_uuid":"loc-1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/queue-rooms?queue=missing&location=loc-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/queue-rooms?location=loc-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueRoomHandler_VoidAndPurge(t *testing.T) {
	api := newTestAPI(t)
	queue := api.createQueue(t, "Triage", "loc-1")

	w := api.do(t, http.MethodPost, "/api/queue-rooms", `{"name":"Room 1","queue_uuid":"`+queue.UUID+`","location_uuid":"loc-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	room := decode[*entities.QueueRoom](t, w)

	w = api.do(t, http.MethodPost, "/api/queue-rooms/"+room.UUID+"/void", `{"reason":"renovation"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	voided := decode[*entities.QueueRoom](t, w)
	assert.True(t, voided.Voided)
	require.NotNil(t, voided.VoidReason)
	assert.Equal(t, "renovation", *voided.VoidReason)

	w = api.do(t, http.MethodGet, "/api/queue-rooms?queue="+queue.UUID+"&location=loc-1", "")
	assert.Equal(t, 0, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	w = api.do(t, http.MethodPost, "/api/queue-rooms/missing/void", `{"reason":"renovation"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, "/api/queue-rooms/"+room.UUID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, "/api/queue-rooms/"+room.UUID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, "/api/queue-rooms/"+room.UUID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

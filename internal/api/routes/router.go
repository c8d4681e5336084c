package routes

import (
	"net/http"

	"github.com/zatekoja/patientqueue/internal/api/handlers"
	"github.com/zatekoja/patientqueue/internal/api/middleware"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	queueHandler      *handlers.QueueHandler
	queueEntryHandler *handlers.QueueEntryHandler
	queueRoomHandler  *handlers.QueueRoomHandler
	sseHandler        *handlers.SSEHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. sseHandler and metrics may be nil.
func NewRouter(
	queueHandler *handlers.QueueHandler,
	queueEntryHandler *handlers.QueueEntryHandler,
	queueRoomHandler *handlers.QueueRoomHandler,
	sseHandler *handlers.SSEHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		queueHandler:      queueHandler,
		queueEntryHandler: queueEntryHandler,
		queueRoomHandler:  queueRoomHandler,
		sseHandler:        sseHandler,
		allowedOrigins:    allowedOrigins,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Queue endpoints
	r.mux.HandleFunc("GET /api/locations/{locationUuid}/queues", r.queueHandler.ListQueuesByLocation)
	r.mux.HandleFunc("POST /api/queues", r.queueHandler.CreateQueue)
	r.mux.HandleFunc("GET /api/queues/search", r.queueHandler.SearchQueues)
	r.mux.HandleFunc("GET /api/queues/{uuid}", r.queueHandler.GetQueue)
	r.mux.HandleFunc("POST /api/queues/{uuid}/void", r.queueHandler.VoidQueue)
	r.mux.HandleFunc("DELETE /api/queues/{uuid}", r.queueHandler.PurgeQueue)
	r.mux.HandleFunc("GET /api/queues/{uuid}/average-wait-time", r.queueHandler.GetAverageWaitTime)

	// Queue entry endpoints
	r.mux.HandleFunc("GET /api/queues/{uuid}/entries", r.queueEntryHandler.ListActiveEntries)
	r.mux.HandleFunc("POST /api/queue-entries", r.queueEntryHandler.CreateQueueEntry)
	r.mux.HandleFunc("GET /api/queue-entries/{uuid}", r.queueEntryHandler.GetQueueEntry)
	r.mux.HandleFunc("PATCH /api/queue-entries/{uuid}/status", r.queueEntryHandler.UpdateStatus)
	r.mux.HandleFunc("POST /api/queue-entries/{uuid}/end", r.queueEntryHandler.EndQueueEntry)
	r.mux.HandleFunc("POST /api/queue-entries/{uuid}/void", r.queueEntryHandler.VoidQueueEntry)

	// Queue room endpoints
	r.mux.HandleFunc("POST /api/queue-rooms", r.queueRoomHandler.CreateQueueRoom)
	r.mux.HandleFunc("GET /api/queue-rooms", r.queueRoomHandler.ListQueueRooms)
	r.mux.HandleFunc("GET /api/queue-rooms/{uuid}", r.queueRoomHandler.GetQueueRoom)
	r.mux.HandleFunc("GET /api/queue-rooms/id/{id}", r.queueRoomHandler.GetQueueRoomByID)
	r.mux.HandleFunc("POST /api/queue-rooms/{uuid}/void", r.queueRoomHandler.VoidQueueRoom)
	r.mux.HandleFunc("DELETE /api/queue-rooms/{uuid}", r.queueRoomHandler.PurgeQueueRoom)

	// Real-time streams
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/queues/stream", r.sseHandler.StreamAllUpdates)
		r.mux.HandleFunc("GET /api/queues/{uuid}/stream", r.sseHandler.StreamQueueUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so preflights never reach the mux.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

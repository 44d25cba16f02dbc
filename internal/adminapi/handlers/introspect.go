package handlers

import (
	"net/http"

	"github.com/aeonsync/core/pkg/queue"
	"github.com/aeonsync/core/pkg/sync"
)

// QueueHandler exposes the encrypted queue's depth/capacity counters
// for operator introspection.
type QueueHandler struct {
	queue *queue.Queue
}

func NewQueueHandler(q *queue.Queue) *QueueHandler {
	return &QueueHandler{queue: q}
}

func (h *QueueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.queue.Stats())
}

// CoordinatorHandler exposes the sync coordinator's network state and
// batch lifecycle counters.
type CoordinatorHandler struct {
	coordinator *sync.Coordinator
}

func NewCoordinatorHandler(c *sync.Coordinator) *CoordinatorHandler {
	return &CoordinatorHandler{coordinator: c}
}

func (h *CoordinatorHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coordinator.Stats())
}

package system

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"reminder-board/entity"
	"reminder-board/render"
	"reminder-board/storage"

	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Store    storage.TaskStore
	Events   storage.EventStore
	DB       Pinger
	Pool     *EventWorkerPool
	Renderer *render.Renderer
	Logger   *zap.Logger
}

func NewHandler(store storage.TaskStore, events storage.EventStore, db Pinger, pool *EventWorkerPool, renderer *render.Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Events:   events,
		DB:       db,
		Pool:     pool,
		Renderer: renderer,
		Logger:   logger,
	}
}

// StatusResponse is the body of the delete endpoint.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
		return
	}
	if err := h.DB.Ping(r.Context()); err != nil {
		h.Logger.Warn("health check failed", zap.Error(err))
		http.Error(w, "Database not reachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeTaskList renders the list fragment, optionally with an inline error.
func (h *Handler) writeTaskList(w http.ResponseWriter, r *http.Request, errMsg string) {
	tasks, err := h.Store.ListAll(r.Context())
	if err != nil {
		h.persistenceFailure(w, "list", err)
		return
	}
	var buf bytes.Buffer
	if err := h.Renderer.TaskList(&buf, tasks, errMsg); err != nil {
		h.Logger.Error("render task list", zap.Error(err))
		http.Error(w, "Error rendering tasks", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (h *Handler) persistenceFailure(w http.ResponseWriter, op string, err error) {
	persistenceFailures.WithLabelValues(op).Inc()
	h.Logger.Error("task store failure", zap.String("op", op), zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) publish(job EventJob) {
	if h.Pool == nil {
		return
	}
	if !h.Pool.Enqueue(job) {
		h.Logger.Warn("event queue unavailable, dropping event",
			zap.Int64("task_id", job.Task.ID), zap.String("kind", string(job.Kind)))
	}
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func tasksOrEmpty(tasks []entity.Task) []entity.Task {
	if tasks == nil {
		return []entity.Task{}
	}
	return tasks
}

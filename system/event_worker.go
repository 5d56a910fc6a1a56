package system

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"reminder-board/common"
	"reminder-board/component"
	"reminder-board/entity"
	"reminder-board/storage"

	"go.uber.org/zap"
)

// EventJob is one task change to log and push to live pages.
type EventJob struct {
	Kind    component.EventKind
	Task    entity.Task
	Message string
}

// Broadcaster fans a message out to connected pages.
type Broadcaster interface {
	Broadcast(msg common.WSMessage)
}

type EventWorkerPool struct {
	Store     storage.EventStore
	Hub       Broadcaster
	JobQueue  chan EventJob
	NumWorker int
	Logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewEventWorkerPool(store storage.EventStore, hub Broadcaster, numWorker int, logger *zap.Logger) *EventWorkerPool {
	if numWorker < 1 {
		numWorker = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventWorkerPool{
		Store:     store,
		Hub:       hub,
		JobQueue:  make(chan EventJob, 100),
		NumWorker: numWorker,
		Logger:    logger,
	}
}

func (p *EventWorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.NumWorker; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop closes the queue and waits for the workers to drain it.
func (p *EventWorkerPool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.JobQueue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Enqueue never blocks. It reports false when the queue is full or stopped,
// or when the job has an unknown kind.
func (p *EventWorkerPool) Enqueue(job EventJob) bool {
	if !job.Kind.Valid() {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.JobQueue <- job:
		return true
	default:
		return false
	}
}

func (p *EventWorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			p.Logger.Debug("event worker shutting down", zap.Int("worker", id))
			return
		case job, ok := <-p.JobQueue:
			if !ok {
				p.Logger.Debug("event queue closed", zap.Int("worker", id))
				return
			}
			p.process(ctx, job)
		}
	}
}

func (p *EventWorkerPool) process(ctx context.Context, job EventJob) {
	now := time.Now()
	if p.Store != nil {
		err := p.Store.RecordEvent(ctx, entity.TaskEvent{
			TaskID:    job.Task.ID,
			Kind:      string(job.Kind),
			Message:   job.Message,
			CreatedAt: now.Format(time.RFC3339),
		})
		if err != nil {
			p.Logger.Error("record task event", zap.Int64("task_id", job.Task.ID), zap.Error(err))
		}
	}
	if p.Hub != nil {
		p.Hub.Broadcast(common.WSMessage{
			Event:     "task_" + string(job.Kind),
			TaskID:    job.Task.ID,
			Text:      job.Task.Text,
			Time:      job.Task.Time,
			Timestamp: now.Format(time.RFC3339),
		})
	}
}

// GetEvents lists recent task events, newest first.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 50
	}
	events, err := h.Events.RecentEvents(r.Context(), limit)
	if err != nil {
		h.Logger.Error("list task events", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, events)
}

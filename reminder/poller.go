package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"reminder-board/component"
	"reminder-board/entity"

	"go.uber.org/zap"
)

var ErrRunning = errors.New("poller already running")

// TaskSource returns the tasks currently shown to the user.
type TaskSource interface {
	Tasks(ctx context.Context) ([]entity.Task, error)
}

type TaskDeleter interface {
	DeleteTask(ctx context.Context, id int64) error
}

// Poller scans the visible tasks on a fixed interval. A task fires once per
// day, only while the clock shows its exact HH:MM; a minute that falls
// between two scans is missed. After a successful alert the task is deleted
// once DeleteDelay has passed.
type Poller struct {
	Source      TaskSource
	Deleter     TaskDeleter
	Fired       FiredSet
	Alerts      *Chain
	Clock       Clock
	Interval    time.Duration
	DeleteDelay time.Duration
	Logger      *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	pending sync.WaitGroup
}

func NewPoller(source TaskSource, deleter TaskDeleter, fired FiredSet, alerts *Chain, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		Source:      source,
		Deleter:     deleter,
		Fired:       fired,
		Alerts:      alerts,
		Clock:       SystemClock,
		Interval:    component.ScanInterval,
		DeleteDelay: component.DeleteDelay,
		Logger:      logger,
	}
}

// Start scans once immediately and then every Interval until Stop or ctx ends.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
	return nil
}

// Stop ends the loop and abandons deletions that have not started yet.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.pending.Wait()
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Wait blocks until every scheduled deletion has run or been abandoned.
func (p *Poller) Wait() {
	p.pending.Wait()
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	p.scanAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.scanAndLog(ctx)
		}
	}
}

func (p *Poller) scanAndLog(ctx context.Context) {
	if _, err := p.Scan(ctx); err != nil && ctx.Err() == nil {
		p.Logger.Warn("reminder scan failed", zap.Error(err))
	}
}

// Scan checks every visible task against the current minute and returns the
// keys that fired during this scan.
func (p *Poller) Scan(ctx context.Context) ([]AlertKey, error) {
	tasks, err := p.Source.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	minute := component.ClockMinute(p.Clock.Now())
	day := p.Fired.CurrentDayKey()

	var fired []AlertKey
	for _, task := range tasks {
		if component.HourMinute(task.Time) != minute {
			continue
		}
		key := AlertKey{TaskID: task.ID, Time: task.Time, Day: day}
		done, err := p.Fired.HasFired(key)
		if err != nil {
			p.Logger.Warn("fired set lookup failed", zap.Int64("task_id", task.ID), zap.Error(err))
			continue
		}
		if done {
			continue
		}
		if err := p.Fired.MarkFired(key); err != nil {
			// Unrecorded alerts are not shown; the next scan of this minute tries again.
			p.Logger.Warn("fired set update failed", zap.Int64("task_id", task.ID), zap.Error(err))
			continue
		}
		fired = append(fired, key)

		channel, err := p.Alerts.Notify(ctx, Alert{TaskID: task.ID, Text: task.Text, Time: task.Time})
		if err != nil {
			p.Logger.Error("reminder not shown", zap.Int64("task_id", task.ID), zap.Error(err))
			continue
		}
		p.Logger.Info("reminder fired", zap.Int64("task_id", task.ID), zap.String("channel", channel))
		p.scheduleDelete(ctx, task.ID)
	}
	return fired, nil
}

func (p *Poller) scheduleDelete(ctx context.Context, id int64) {
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		timer := time.NewTimer(p.DeleteDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := p.Deleter.DeleteTask(ctx, id); err != nil {
			p.Logger.Error("auto delete failed", zap.Int64("task_id", id), zap.Error(err))
			return
		}
		p.Logger.Info("task completed and deleted", zap.Int64("task_id", id))
	}()
}

package storage

import (
	"context"
	"database/sql"
	"time"

	"reminder-board/entity"
)

// SQLStore implements TaskStore and EventStore on any database/sql driver
// that understands ? placeholders (sqlite, mysql).
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Create(ctx context.Context, text, timeOfDay string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, "INSERT INTO tasks (task, time_of_day) VALUES (?, ?)", text, timeOfDay)
	if err != nil {
		return 0, persistErr("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persistErr("create", err)
	}
	return id, nil
}

func (s *SQLStore) ListAll(ctx context.Context) ([]entity.Task, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, task, time_of_day FROM tasks ORDER BY id DESC")
	if err != nil {
		return nil, persistErr("list", err)
	}
	defer rows.Close()

	tasks := []entity.Task{}
	for rows.Next() {
		var t entity.Task
		if err := rows.Scan(&t.ID, &t.Text, &t.Time); err != nil {
			return nil, persistErr("list", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list", err)
	}
	return tasks, nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	return persistErr("delete", err)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLStore) RecordEvent(ctx context.Context, ev entity.TaskEvent) error {
	if ev.CreatedAt == "" {
		ev.CreatedAt = time.Now().Format(time.RFC3339)
	}
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO task_events (task_id, kind, message, created_at) VALUES (?, ?, ?, ?)",
		ev.TaskID, ev.Kind, ev.Message, ev.CreatedAt)
	return persistErr("record event for", err)
}

func (s *SQLStore) RecentEvents(ctx context.Context, limit int) ([]entity.TaskEvent, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, task_id, kind, message, created_at
		FROM task_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, persistErr("list events for", err)
	}
	defer rows.Close()

	events := []entity.TaskEvent{}
	for rows.Next() {
		var ev entity.TaskEvent
		if err := rows.Scan(&ev.ID, &ev.TaskID, &ev.Kind, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, persistErr("list events for", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

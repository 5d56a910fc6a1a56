package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"reminder-board/cache"
	"reminder-board/cache/cachetest"
	"reminder-board/entity"
	"reminder-board/storage"
	"reminder-board/storage/sqlite"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	db, err := sqlite.InitDB(sqlite.DriverPure, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewSQLStore(db)
}

func texts(tasks []entity.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Text)
	}
	return out
}

func TestSQLStore_EmptyList(t *testing.T) {
	s := setupStore(t)

	tasks, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestSQLStore_CreateListsNewestFirst(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "Buy milk", "09:30:00")
	require.NoError(t, err)
	second, err := s.Create(ctx, "Call mom", "09:30:00")
	require.NoError(t, err)
	assert.Greater(t, second, first)

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Call mom", "Buy milk"}, texts(tasks))
	assert.Equal(t, entity.Task{ID: second, Text: "Call mom", Time: "09:30:00"}, tasks[0])
}

func TestSQLStore_DuplicateSubmissionsAreIndependentRows(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, "Stretch", "10:00:00")
	require.NoError(t, err)
	b, err := s.Create(ctx, "Stretch", "10:00:00")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestSQLStore_DeleteIsIdempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	keep, err := s.Create(ctx, "Keep", "08:00:00")
	require.NoError(t, err)
	gone, err := s.Create(ctx, "Gone", "08:05:00")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, gone))
	require.NoError(t, s.Delete(ctx, gone))

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, keep, tasks[0].ID)
}

func TestSQLStore_IDsAreNotReused(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "One", "08:00:00")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))

	next, err := s.Create(ctx, "Two", "08:00:00")
	require.NoError(t, err)
	assert.Greater(t, next, id)
}

func TestSQLStore_Events(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordEvent(ctx, entity.TaskEvent{TaskID: 1, Kind: "created", Message: "Task created: A"}))
	require.NoError(t, s.RecordEvent(ctx, entity.TaskEvent{TaskID: 1, Kind: "deleted", Message: "Task 1 deleted"}))

	events, err := s.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "deleted", events[0].Kind)
	assert.NotEmpty(t, events[0].CreatedAt)

	events, err = s.RecentEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSQLStore_PersistenceErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := storage.NewSQLStore(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO tasks").
		WithArgs("Buy milk", "09:30:00").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectQuery("SELECT id, task, time_of_day FROM tasks").
		WillReturnError(errors.New("no such table: tasks"))
	mock.ExpectExec("DELETE FROM tasks WHERE id = \\?").
		WithArgs(int64(3)).
		WillReturnError(errors.New("disk I/O error"))

	_, err = s.Create(ctx, "Buy milk", "09:30:00")
	var perr *storage.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Op)
	assert.EqualError(t, err, "create task: database is locked")

	_, err = s.ListAll(ctx)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "list", perr.Op)

	err = s.Delete(ctx, 3)
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "disk I/O error")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStore_HitSkipsDatabase(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	defer rdb.Close()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cached := []entity.Task{{ID: 2, Text: "Cached", Time: "10:00:00"}}
	payload, _ := json.Marshal(cached)
	redisMock.ExpectGet("tasks:list:gen").SetVal("3")
	redisMock.ExpectGet("tasks:list:3").SetVal(string(payload))

	s := storage.NewCachedStore(storage.NewSQLStore(db), cache.New(rdb, 5*time.Minute), nil)
	tasks, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, tasks)

	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCachedStore_MissFillsCache(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	defer rdb.Close()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectQuery("SELECT id, task, time_of_day FROM tasks").
		WillReturnRows(sqlmock.NewRows([]string{"id", "task", "time_of_day"}).
			AddRow(5, "Call mom", "09:30:00").
			AddRow(4, "Buy milk", "09:30:00"))

	want := []entity.Task{
		{ID: 5, Text: "Call mom", Time: "09:30:00"},
		{ID: 4, Text: "Buy milk", Time: "09:30:00"},
	}
	payload, _ := json.Marshal(want)
	redisMock.ExpectGet("tasks:list:gen").RedisNil()
	redisMock.ExpectGet("tasks:list:0").RedisNil()
	redisMock.ExpectSet("tasks:list:0", string(payload), 5*time.Minute).SetVal("OK")

	s := storage.NewCachedStore(storage.NewSQLStore(db), cache.New(rdb, 5*time.Minute), nil)
	tasks, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, tasks)

	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCachedStore_GenerationUnreadableSkipsCache(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	defer rdb.Close()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisMock.ExpectGet("tasks:list:gen").SetErr(errors.New("connection refused"))
	sqlMock.ExpectQuery("SELECT id, task, time_of_day FROM tasks").
		WillReturnRows(sqlmock.NewRows([]string{"id", "task", "time_of_day"}).AddRow(1, "Buy milk", "09:30:00"))

	s := storage.NewCachedStore(storage.NewSQLStore(db), cache.New(rdb, 5*time.Minute), nil)
	tasks, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCachedStore_WritesBumpGeneration(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	defer rdb.Close()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectExec("INSERT INTO tasks").
		WithArgs("Buy milk", "09:30:00").
		WillReturnResult(sqlmock.NewResult(7, 1))
	redisMock.ExpectIncr("tasks:list:gen").SetVal(1)
	sqlMock.ExpectExec("DELETE FROM tasks").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	redisMock.ExpectIncr("tasks:list:gen").SetVal(2)

	s := storage.NewCachedStore(storage.NewSQLStore(db), cache.New(rdb, 5*time.Minute), nil)
	ctx := context.Background()

	id, err := s.Create(ctx, "Buy milk", "09:30:00")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, s.Delete(ctx, id))

	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCachedStore_FailedWriteKeepsCache(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	defer rdb.Close()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectExec("INSERT INTO tasks").WillReturnError(errors.New("constraint failed"))

	s := storage.NewCachedStore(storage.NewSQLStore(db), cache.New(rdb, 5*time.Minute), nil)
	_, err = s.Create(context.Background(), "x", "09:30:00")

	var perr *storage.PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

// pausingStore runs during after taking its list snapshot, standing in for a
// write that lands while a slow list is still in flight.
type pausingStore struct {
	storage.TaskStore
	during func()
}

func (p *pausingStore) ListAll(ctx context.Context) ([]entity.Task, error) {
	tasks, err := p.TaskStore.ListAll(ctx)
	if p.during != nil {
		during := p.during
		p.during = nil
		during()
	}
	return tasks, err
}

func TestCachedStore_ListRacingWritesDoesNotCacheStaleRows(t *testing.T) {
	ctx := context.Background()
	rdb := cachetest.New()
	inner := &pausingStore{TaskStore: setupStore(t)}
	s := storage.NewCachedStore(inner, cache.New(rdb, 5*time.Minute), nil)

	var milk int64
	inner.during = func() {
		var err error
		milk, err = s.Create(ctx, "Buy milk", "09:30:00")
		require.NoError(t, err)
	}
	stale, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stale)

	tasks, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Text)

	// Expire the cached list so the next read goes to the database.
	rdb.Drop("tasks:list:1")
	inner.during = func() { require.NoError(t, s.Delete(ctx, milk)) }
	_, err = s.ListAll(ctx)
	require.NoError(t, err)

	tasks, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

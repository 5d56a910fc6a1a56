package render

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"reminder-board/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskList_Empty(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.TaskList(&buf, nil, ""))

	out := buf.String()
	assert.Contains(t, out, `id="task_list"`)
	assert.Contains(t, out, "No tasks scheduled yet")
	assert.NotContains(t, out, "data-task-id")
}

func TestTaskList_Cards(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	tasks := []entity.Task{
		{ID: 2, Text: "Call mom", Time: "09:30:00"},
		{ID: 1, Text: "<b>Buy milk</b>", Time: "14:05:00"},
	}
	require.NoError(t, r.TaskList(&buf, tasks, ""))

	out := buf.String()
	assert.Contains(t, out, `id="task-2"`)
	assert.Contains(t, out, `data-task-id="2"`)
	assert.Contains(t, out, `data-task-time="09:30:00"`)
	assert.Contains(t, out, `data-task-time="14:05:00"`)
	assert.Contains(t, out, "&lt;b&gt;Buy milk&lt;/b&gt;")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Call mom")), bytes.Index(buf.Bytes(), []byte("Buy milk")))
	assert.NotContains(t, out, "No tasks scheduled yet")
	assert.NotContains(t, out, `role="alert"`)
}

func TestTaskList_WithError(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.TaskList(&buf, []entity.Task{{ID: 1, Text: "A", Time: "08:00:00"}}, "Invalid time format"))

	out := buf.String()
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "Invalid time format")
	assert.Contains(t, out, `data-task-id="1"`)
}

func TestPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, []entity.Task{{ID: 3, Text: "Stretch", Time: "10:00:00"}}))

	out := buf.String()
	assert.Contains(t, out, `hx-post="/submit-task"`)
	assert.Contains(t, out, `maxlength="50"`)
	assert.Contains(t, out, `data-scan-interval="15000"`)
	assert.Contains(t, out, `data-delete-delay="2000"`)
	assert.Contains(t, out, `data-task-id="3"`)
	assert.Contains(t, out, `src="/static/reminder.js"`)
}

func TestStaticHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/reminder.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "markFired")
}

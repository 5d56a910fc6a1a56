package system

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"reminder-board/component"
	"reminder-board/entity"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Index renders the whole page with the current list.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Store.ListAll(r.Context())
	if err != nil {
		h.persistenceFailure(w, "list", err)
		return
	}
	var buf bytes.Buffer
	if err := h.Renderer.Page(&buf, tasks); err != nil {
		h.Logger.Error("render page", zap.Error(err))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	h.writeTaskList(w, r, "")
}

// SubmitTask validates the form, stores the task and answers with the new list.
// Invalid input answers 200 with the unchanged list and an inline message so
// the htmx swap still happens.
func (h *Handler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	task, err := parseSubmission(r.PostFormValue("task"), r.PostFormValue("time"))
	var verr *component.ValidationError
	if errors.As(err, &verr) {
		validationFailures.WithLabelValues(verr.Message).Inc()
		h.Logger.Info("rejected task submission", zap.String("reason", verr.Message))
		h.writeTaskList(w, r, verr.Message)
		return
	}

	id, err := h.Store.Create(r.Context(), task.Text, task.Time)
	if err != nil {
		h.persistenceFailure(w, "create", err)
		return
	}
	task.ID = id
	tasksCreated.Inc()
	h.Logger.Info("task created", zap.Int64("id", id), zap.String("time", task.Time))
	h.publish(EventJob{Kind: component.Created, Task: task, Message: fmt.Sprintf("Task created: %s", task.Text)})

	h.writeTaskList(w, r, "")
}

// parseSubmission checks the time first, then the text.
func parseSubmission(text, timeOfDay string) (entity.Task, error) {
	normalized, err := component.NormalizeTimeOfDay(timeOfDay)
	if err != nil {
		return entity.Task{}, err
	}
	text, err = component.NormalizeText(text)
	if err != nil {
		return entity.Task{}, err
	}
	return entity.Task{Text: text, Time: normalized}, nil
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, StatusResponse{Status: "error", Message: "Invalid task ID"})
		return
	}

	if err := h.Store.Delete(r.Context(), id); err != nil {
		persistenceFailures.WithLabelValues("delete").Inc()
		h.Logger.Error("task store failure", zap.String("op", "delete"), zap.Int64("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: "error", Message: err.Error()})
		return
	}

	tasksDeleted.Inc()
	h.Logger.Info("task deleted", zap.Int64("id", id))
	h.publish(EventJob{Kind: component.Deleted, Task: entity.Task{ID: id}, Message: fmt.Sprintf("Task %d deleted", id)})
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: fmt.Sprintf("Task %d deleted", id)})
}

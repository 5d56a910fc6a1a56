package system

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_tasks_created_total",
		Help: "Tasks stored through the submission endpoint.",
	})
	tasksDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_tasks_deleted_total",
		Help: "Successful calls of the delete endpoint.",
	})
	validationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_submission_rejected_total",
		Help: "Submissions rejected by input validation.",
	}, []string{"reason"})
	persistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_store_failures_total",
		Help: "Task store operations that failed.",
	}, []string{"op"})
)

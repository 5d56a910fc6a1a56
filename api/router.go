package api

import (
	"net/http"
	"time"

	"reminder-board/cache"
	"reminder-board/middleware"
	"reminder-board/render"
	handler "reminder-board/system"
	"reminder-board/ws"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Handler *handler.Handler
	Hub     *ws.Hub
	// Redis enables rate limiting of the mutating routes when set.
	Redis      cache.RedisClientInterface
	RateLimit  int
	RateWindow time.Duration
	Logger     *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := d.Handler

	limit := func(next http.HandlerFunc) http.Handler { return next }
	if d.Redis != nil {
		limiter := middleware.NewRateLimiter(d.Redis, d.RateLimit, d.RateWindow)
		limit = func(next http.HandlerFunc) http.Handler { return limiter.Middleware(next) }
	}

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))

	//  Page and fragments
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/get-tasks", h.GetTasks).Methods("GET")
	r.Handle("/submit-task", limit(h.SubmitTask)).Methods("POST")
	r.Handle("/delete-task/{id:[0-9]+}", limit(h.DeleteTask)).Methods("DELETE")

	//  Extras
	r.HandleFunc("/events", h.GetEvents).Methods("GET")
	r.HandleFunc("/export", h.Export).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	if d.Redis != nil {
		r.Handle("/rate-limit", handler.RateLimitStatusHandler(d.Redis, d.RateLimit)).Methods("GET")
	}
	if d.Hub != nil {
		r.HandleFunc("/ws", d.Hub.HandleWS)
	}
	r.PathPrefix("/static/").Handler(render.StaticHandler())

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rainbowsquirrel/squirrelcoins/internal/services/economy"
)

// NewRouter registers every economy endpoint on a chi router.
func NewRouter(svc *economy.EconomyService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/user/{userId}", h.RegisterUserHandler)
	r.Get("/user/{userId}/balance", h.GetBalanceHandler)
	r.Post("/user/{userId}/coins", h.AddCoinsHandler)
	r.Put("/user/{userId}/coins", h.SetBalanceHandler)
	r.Get("/user/{userId}/daily", h.DailyStatusHandler)
	r.Post("/user/{userId}/daily/claim", h.ClaimDailyHandler)
	r.Get("/user/{userId}/tasks", h.UserTasksHandler)
	r.Post("/user/{userId}/tasks/{taskId}/complete", h.CompleteTaskHandler)

	r.Get("/tasks", h.ListTasksHandler)
	r.Post("/tasks", h.AddTaskHandler)
	r.Delete("/tasks/{taskId}", h.RemoveTaskHandler)

	return r
}

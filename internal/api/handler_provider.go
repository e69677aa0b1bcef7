package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/completions"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/tasks"
	"github.com/rainbowsquirrel/squirrelcoins/internal/repos/users"
	"github.com/rainbowsquirrel/squirrelcoins/internal/services/economy"
)

// HandlerProvider wraps an EconomyService and exposes HTTP handlers.
type HandlerProvider struct {
	svc *economy.EconomyService
}

// NewHandler returns a new handler provider.
func NewHandler(svc *economy.EconomyService) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps economy outcomes to statuses. Anything that is not a
// known sentinel is a store failure and stays a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, tasks.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, tasks.ErrTaskInactive):
		writeError(w, http.StatusConflict, "task is inactive")
	case errors.Is(err, users.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "daily reward already claimed")
	case errors.Is(err, completions.ErrAlreadyCompletedToday):
		writeError(w, http.StatusConflict, "task already completed today")
	case errors.Is(err, users.ErrInvalidAmount), errors.Is(err, tasks.ErrInvalidReward):
		writeError(w, http.StatusBadRequest, "invalid amount")
	default:
		slog.Error("economy operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseUserIDFromPath(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "userId")
	if idStr == "" {
		return 0, fmt.Errorf("missing userId")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid userId: must be positive")
	}

	return id, nil
}

func parseTaskIDFromPath(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "taskId")
	if idStr == "" {
		return 0, fmt.Errorf("missing taskId")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid taskId: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid taskId: must be positive")
	}

	return id, nil
}

var errEmptyBody = errors.New("empty body")

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}

		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

type registerRequest struct {
	ReferredBy *int64 `json:"referredBy"`
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type addTaskRequest struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Data   string `json:"data"`
	Reward int64  `json:"reward"`
}

type userResponse struct {
	ExternalID     int64  `json:"externalId"`
	Coins          int64  `json:"coins"`
	ReferredBy     *int64 `json:"referredBy,omitempty"`
	JoinedAt       string `json:"joinedAt"`
	LastDailyClaim string `json:"lastDailyClaim,omitempty"`
}

type taskResponse struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Reward int64  `json:"reward"`
}

type taskStatusResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Reward         int64  `json:"reward"`
	CompletedToday bool   `json:"completedToday"`
}

// --- Handlers ---

// RegisterUserHandler handles POST /user/{userId}. Registration is
// idempotent: 201 on first contact, 200 afterwards.
func (h *HandlerProvider) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req registerRequest
	// An empty body means "no referrer"; anything else must parse.
	err = decodeBody(w, r, &req)
	if err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, created, err := h.svc.RegisterUser(r.Context(), userID, req.ReferredBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := userResponse{
		ExternalID: user.ExternalID,
		Coins:      user.Coins,
		ReferredBy: user.ReferredBy,
		JoinedAt:   user.JoinedAt.UTC().Format(time.RFC3339),
	}
	if user.LastDailyClaim != nil {
		resp.LastDailyClaim = user.LastDailyClaim.UTC().Format(time.RFC3339)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	writeJSON(w, status, resp)
}

// GetBalanceHandler handles GET /user/{userId}/balance.
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	bal, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "balance": bal})
}

// AddCoinsHandler handles POST /user/{userId}/coins.
func (h *HandlerProvider) AddCoinsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req amountRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bal, err := h.svc.AddCoins(r.Context(), userID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "balance": bal})
}

// SetBalanceHandler handles PUT /user/{userId}/coins.
func (h *HandlerProvider) SetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req amountRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bal, err := h.svc.SetBalance(r.Context(), userID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "balance": bal})
}

// DailyStatusHandler handles GET /user/{userId}/daily.
func (h *HandlerProvider) DailyStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	ok, err := h.svc.CanClaimDaily(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "canClaim": ok})
}

// ClaimDailyHandler handles POST /user/{userId}/daily/claim.
func (h *HandlerProvider) ClaimDailyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	bal, err := h.svc.ClaimDaily(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "balance": bal})
}

// ListTasksHandler handles GET /tasks.
func (h *HandlerProvider) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListTasks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]taskResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, taskResponse{ID: t.ID, Title: t.Title, Reward: t.Reward})
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddTaskHandler handles POST /tasks.
func (h *HandlerProvider) AddTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}

	id, err := h.svc.AddTask(r.Context(), req.Type, req.Title, req.Data, req.Reward)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"taskId": id})
}

// RemoveTaskHandler handles DELETE /tasks/{taskId}. Removal is idempotent.
func (h *HandlerProvider) RemoveTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid taskId in path")
		return
	}

	err = h.svc.RemoveTask(r.Context(), taskID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UserTasksHandler handles GET /user/{userId}/tasks.
func (h *HandlerProvider) UserTasksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	overview, err := h.svc.TasksOverview(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]taskStatusResponse, 0, len(overview))
	for _, ts := range overview {
		resp = append(resp, taskStatusResponse{
			ID:             ts.Task.ID,
			Title:          ts.Task.Title,
			Reward:         ts.Task.Reward,
			CompletedToday: ts.CompletedToday,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// CompleteTaskHandler handles POST /user/{userId}/tasks/{taskId}/complete.
func (h *HandlerProvider) CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	taskID, err := parseTaskIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid taskId in path")
		return
	}

	bal, err := h.svc.CompleteTask(r.Context(), userID, taskID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "balance": bal})
}

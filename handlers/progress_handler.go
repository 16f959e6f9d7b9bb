package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ecoChallengeAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
	timeout         time.Duration
}

func NewProgressHandler(progressService *services.ProgressService, timeout time.Duration) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, timeout: timeout}
}

// Ids arrive as numbers or numeric strings, so fields are decoded raw and
// normalized before any store access.
type enrollmentRequest struct {
	UserID      json.RawMessage `json:"userId"`
	ChallengeID json.RawMessage `json:"challengeId"`
}

type taskUpdateRequest struct {
	UserID      json.RawMessage `json:"userId"`
	ChallengeID json.RawMessage `json:"challengeId"`
	TaskID      json.RawMessage `json:"taskId"`
	TaskType    json.RawMessage `json:"taskType"`
	Completed   json.RawMessage `json:"completed"`
}

func (h *ProgressHandler) parseEnrollment(w http.ResponseWriter, r *http.Request) (int64, int64, error) {
	var req enrollmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, 0, err
	}
	userID, err := parseID(req.UserID, "userId")
	if err != nil {
		return 0, 0, err
	}
	challengeID, err := parseID(req.ChallengeID, "challengeId")
	if err != nil {
		return 0, 0, err
	}
	return userID, challengeID, nil
}

func (h *ProgressHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, err := h.parseEnrollment(w, r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	record, _, err := h.progressService.Enroll(ctx, userID, challengeID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, record)
}

func (h *ProgressHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, err := h.parseEnrollment(w, r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	record, err := h.progressService.Unenroll(ctx, userID, challengeID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

func (h *ProgressHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}

	update, err := req.normalize()
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	record, err := h.progressService.SetTaskCompletion(ctx, update)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

func (req taskUpdateRequest) normalize() (services.TaskUpdate, error) {
	var u services.TaskUpdate
	var err error
	if u.UserID, err = parseID(req.UserID, "userId"); err != nil {
		return u, err
	}
	if u.ChallengeID, err = parseID(req.ChallengeID, "challengeId"); err != nil {
		return u, err
	}
	if u.TaskID, err = taskIDFrom(req.TaskID); err != nil {
		return u, err
	}
	if u.TaskType, err = parseTaskType(req.TaskType); err != nil {
		return u, err
	}
	if u.Completed, err = parseBool(req.Completed, "completed"); err != nil {
		return u, err
	}
	return u, nil
}

func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	records, err := h.progressService.GetProgress(ctx, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, records)
}

func (h *ProgressHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	board, err := h.progressService.Leaderboard(ctx, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, board)
}

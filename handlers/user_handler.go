package handlers

import (
	"context"
	"net/http"
	"time"

	"ecoChallengeAPI/internal/user"
	"ecoChallengeAPI/middleware"
	"ecoChallengeAPI/services"
)

type UserHandler struct {
	userService *services.UserService
	timeout     time.Duration
}

func NewUserHandler(userService *services.UserService, timeout time.Duration) *UserHandler {
	return &UserHandler{
		userService: userService,
		timeout:     timeout,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req user.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	created, err := h.userService.Signup(ctx, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req user.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.userService.Login(ctx, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.userService.Logout(ctx, claims); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	u, err := h.userService.GetUser(ctx, claims.UserID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	u, err := h.userService.GetUser(ctx, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

// DeleteProfile deletes the account of the session user. Tokens of other
// users are refused.
func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	claims, ok := middleware.GetSession(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	if claims.UserID != id {
		respondWithError(w, http.StatusForbidden, "You can only delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.userService.DeleteUser(ctx, id); err != nil {
		respondWithAppError(w, err)
		return
	}
	if err := h.userService.Logout(ctx, claims); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *UserHandler) DeleteProfileWithCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	var req user.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.userService.DeleteWithCredentials(ctx, id, req.Email, req.Password); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

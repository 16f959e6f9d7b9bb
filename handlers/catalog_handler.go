package handlers

import (
	"context"
	"net/http"
	"time"

	"ecoChallengeAPI/services"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	timeout        time.Duration
}

func NewCatalogHandler(catalogService *services.CatalogService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, timeout: timeout}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalogService.ListCategories(ctx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	category, err := h.catalogService.GetCategory(ctx, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) ListCategoryChallenges(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	challenges, err := h.catalogService.ListChallengesByCategory(ctx, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *CatalogHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	challenges, err := h.catalogService.ListChallenges(ctx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *CatalogHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	challenge, err := h.catalogService.GetChallenge(ctx, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, challenge)
}

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Catalog  *CatalogHandler
	Progress *ProgressHandler
	User     *UserHandler
}

// RegisterRoutes mounts the API on r. auth guards the routes that need a
// session token.
func RegisterRoutes(r *mux.Router, h Handlers, auth mux.MiddlewareFunc) {
	challenges := r.PathPrefix("/challenges").Subrouter()
	challenges.HandleFunc("", h.Catalog.ListChallenges).Methods(http.MethodGet)
	challenges.HandleFunc("/register", h.Progress.Register).Methods(http.MethodPost)
	challenges.HandleFunc("/unregister", h.Progress.Unregister).Methods(http.MethodPost)
	challenges.HandleFunc("/progress", h.Progress.UpdateTask).Methods(http.MethodPost)
	challenges.HandleFunc("/progress/{userId}", h.Progress.GetProgress).Methods(http.MethodGet)
	challenges.HandleFunc("/{id}", h.Catalog.GetChallenge).Methods(http.MethodGet)

	categories := r.PathPrefix("/categories").Subrouter()
	categories.HandleFunc("", h.Catalog.ListCategories).Methods(http.MethodGet)
	categories.HandleFunc("/{id}", h.Catalog.GetCategory).Methods(http.MethodGet)
	categories.HandleFunc("/{id}/challenges", h.Catalog.ListCategoryChallenges).Methods(http.MethodGet)

	users := r.PathPrefix("/users").Subrouter()
	users.HandleFunc("/signup", h.User.Signup).Methods(http.MethodPost)
	users.HandleFunc("/login", h.User.Login).Methods(http.MethodPost)
	users.HandleFunc("/leaderboard", h.Progress.Leaderboard).Methods(http.MethodGet)
	users.HandleFunc("/profile", h.User.ListProfiles).Methods(http.MethodGet)
	users.HandleFunc("/profile/{id}", h.User.GetProfile).Methods(http.MethodGet)
	users.HandleFunc("/profile/{id}/verify", h.User.DeleteProfileWithCredentials).Methods(http.MethodDelete)

	protected := users.NewRoute().Subrouter()
	protected.Use(auth)
	protected.HandleFunc("/logout", h.User.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/me", h.User.Me).Methods(http.MethodGet)
	protected.HandleFunc("/profile/{id}", h.User.DeleteProfile).Methods(http.MethodDelete)
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ecoChallengeAPI/internal/apperr"
)

const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError maps the error kind to a status. Internal details
// never reach the client.
func respondWithAppError(w http.ResponseWriter, err error) {
	respondWithError(w, apperr.KindOf(err).HTTPStatus(), apperr.PublicMessage(err))
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.InvalidArgument("Request body is required")
		}
		return apperr.InvalidArgument("Invalid request body")
	}
	return nil
}

package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"ecoChallengeAPI/internal/apperr"
	"ecoChallengeAPI/internal/types/challenge"
)

// Largest integer a float64 holds exactly.
const maxSafeInteger = 1<<53 - 1

// parseIDString accepts decimal or float notation as long as the value is
// a finite, integral and positive number.
func parseIDString(s, field string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperr.InvalidArgument("%s is required", field)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, apperr.InvalidArgument("%s must be a positive integer", field)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f <= 0 || f > maxSafeInteger {
		return 0, apperr.InvalidArgument("%s must be a positive integer", field)
	}
	return int64(f), nil
}

// parseID reads an id sent either as a JSON number or a numeric string.
func parseID(raw json.RawMessage, field string) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, apperr.InvalidArgument("%s is required", field)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, apperr.InvalidArgument("%s must be a positive integer", field)
		}
		return parseIDString(s, field)
	}
	if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
		return 0, apperr.InvalidArgument("%s must be a positive integer", field)
	}
	return parseIDString(string(raw), field)
}

// parseBool accepts true/false, "true"/"false", 1/0 and "1"/"0".
func parseBool(raw json.RawMessage, field string) (bool, error) {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, apperr.InvalidArgument("%s must be a boolean", field)
		}
	} else {
		s = string(raw)
	}
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	case "", "null":
		return false, apperr.InvalidArgument("%s is required", field)
	}
	return false, apperr.InvalidArgument("%s must be a boolean", field)
}

func parseTaskType(raw json.RawMessage) (challenge.TaskType, error) {
	var s string
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", apperr.InvalidArgument("taskType is required")
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", apperr.InvalidArgument("taskType must be 'daily' or 'unique'")
	}
	t, ok := challenge.ParseTaskType(s)
	if !ok {
		return "", apperr.InvalidArgument("taskType must be 'daily' or 'unique'")
	}
	return t, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	return parseIDString(mux.Vars(r)[name], name)
}

func taskIDFrom(raw json.RawMessage) (int, error) {
	id, err := parseID(raw, "taskId")
	if err != nil {
		return 0, err
	}
	if id > math.MaxInt32 {
		return 0, apperr.InvalidArgument("taskId must be a positive integer")
	}
	return int(id), nil
}

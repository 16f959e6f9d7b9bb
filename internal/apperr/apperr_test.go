package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("enroll: %w", NotFound("Challenge not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, http.StatusNotFound, KindOf(err).HTTPStatus())
}

func TestSentinelMatchesThroughWrapping(t *testing.T) {
	sentinel := New(KindConflict, "userName or email already in use")
	wrapped := fmt.Errorf("signup: %w", New(KindConflict, "userName or email already in use"))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, New(KindConflict, "other")))
}

func TestPublicMessageHidesInternalCause(t *testing.T) {
	err := Internal("failed to load progress", errors.New("pq: connection refused"))

	assert.Equal(t, "Internal server error", PublicMessage(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "Task not found", PublicMessage(NotFound("Task not found")))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw")))
}

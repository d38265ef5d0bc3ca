package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWalksWrappedAppErrors(t *testing.T) {
	inner := BadRequest("artwork_id is required", nil)
	outer := ResolveFailed("Could not open conversation", inner)

	assert.True(t, Is(outer, CodeResolveFailed))
	assert.True(t, Is(outer, CodeBadRequest))
	assert.False(t, Is(outer, CodeNotFound))

	wrapped := fmt.Errorf("handler: %w", outer)
	assert.True(t, Is(wrapped, CodeResolveFailed))
	assert.False(t, Is(stderrors.New("plain"), CodeResolveFailed))
}

func TestChatFailureKeepsInnerStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, SendFailed("x", BadRequest("empty", nil)).Status)
	assert.Equal(t, http.StatusForbidden, LoadFailed("x", Forbidden("no", nil)).Status)
	assert.Equal(t, http.StatusInternalServerError, ResolveFailed("x", stderrors.New("boom")).Status)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("Conversation", nil)))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(AuthRequired()))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(stderrors.New("boom")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("store down")
	err := Internal("Failed to create message", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store down")
}

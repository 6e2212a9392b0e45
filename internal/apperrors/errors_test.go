package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus_MapsEveryKind(t *testing.T) {
	testCases := []struct {
		kind     Kind
		expected int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindStore, http.StatusServiceUnavailable},
		{KindTimeout, http.StatusGatewayTimeout},
		{KindPipeline, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.expected, HTTPStatus(New(tc.kind, "boom")))
		})
	}
}

func TestWrap_DeadlineExceededBecomesTimeout(t *testing.T) {
	err := Wrap(KindStore, "query failed", fmt.Errorf("exec: %w", context.DeadlineExceeded))

	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(err))
}

func TestKindOf_UnknownErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("anything")))
}

func TestKindOf_WrappedTypedError(t *testing.T) {
	inner := Store("connect refused", errors.New("dial tcp"))
	wrapped := fmt.Errorf("pipeline: %w", inner)

	assert.Equal(t, KindStore, KindOf(wrapped))
	assert.Equal(t, "connect refused", PublicMessage(wrapped))
}

func TestPublicMessage_HidesUntypedDetail(t *testing.T) {
	assert.Equal(t, "internal server error", PublicMessage(errors.New("sensitive detail")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Store("store failed", cause)

	assert.ErrorIs(t, err, cause)
}

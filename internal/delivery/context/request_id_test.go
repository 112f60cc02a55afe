package context

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newEchoContext() echo.Context {
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
}

func TestRequestID(t *testing.T) {
	c := newEchoContext()
	assert.Empty(t, GetRequestID(c))

	SetRequestID(c, "req-1")
	assert.Equal(t, "req-1", GetRequestID(c))
}

func TestUserID(t *testing.T) {
	c := newEchoContext()
	_, ok := GetUserID(c)
	assert.False(t, ok)

	SetUserID(c, uuid.Nil)
	_, ok = GetUserID(c)
	assert.False(t, ok)

	id := uuid.New()
	SetUserID(c, id)
	got, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestGetLoggerOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoped := fallback.With(slog.String("request_id", "req-1"))

	assert.Same(t, fallback, GetLoggerOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, GetLoggerOrDefault(WithLogger(context.Background(), scoped), fallback))
}

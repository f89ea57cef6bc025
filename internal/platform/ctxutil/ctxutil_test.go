package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurokeita/quotable/internal/platform/ctxutil"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "0192d3a4-req")
	assert.Equal(t, "0192d3a4-req", ctxutil.GetRequestID(ctx))
}

func TestLogger_FallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))

	requestLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, requestLogger, ctxutil.GetLogger(ctxutil.WithLogger(ctx, requestLogger)))
}

func TestWriteAuthorized(t *testing.T) {
	ctx := context.Background()
	assert.False(t, ctxutil.IsWriteAuthorized(ctx))
	assert.True(t, ctxutil.IsWriteAuthorized(ctxutil.WithWriteAuthorized(ctx)))
}

package extract_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/fwojciec/cookbook/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetryDelays(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond}
	transient := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	t.Run("returns first success", func(t *testing.T) {
		t.Parallel()

		var calls int
		html, err := extract.FetchWithRetryDelays(context.Background(), "https://example.com", func(_ context.Context, _ string) (string, error) {
			calls++
			return "<html></html>", nil
		}, delays)

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transport errors", func(t *testing.T) {
		t.Parallel()

		var calls int
		html, err := extract.FetchWithRetryDelays(context.Background(), "https://example.com", func(_ context.Context, _ string) (string, error) {
			calls++
			if calls < 3 {
				return "", transient
			}
			return "ok", nil
		}, delays)

		require.NoError(t, err)
		assert.Equal(t, "ok", html)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after all delays", func(t *testing.T) {
		t.Parallel()

		var calls int
		_, err := extract.FetchWithRetryDelays(context.Background(), "https://example.com", func(_ context.Context, _ string) (string, error) {
			calls++
			return "", transient
		}, delays)

		require.ErrorIs(t, err, transient)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry status errors", func(t *testing.T) {
		t.Parallel()

		var calls int
		_, err := extract.FetchWithRetryDelays(context.Background(), "https://example.com", func(_ context.Context, _ string) (string, error) {
			calls++
			return "", errors.New("HTTP 404 for https://example.com")
		}, delays)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		_, err := extract.FetchWithRetryDelays(ctx, "https://example.com", func(_ context.Context, _ string) (string, error) {
			cancel()
			return "", transient
		}, []time.Duration{time.Hour})

		require.ErrorIs(t, err, context.Canceled)
	})
}

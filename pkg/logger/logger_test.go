package logger

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithLogger(t *testing.T) {
	t.Run("Should return attached logger from context", func(t *testing.T) {
		expected := NewForTests()
		ctx := ContextWithLogger(t.Context(), expected)
		got := FromContext(ctx)
		assert.Same(t, expected, got)
	})

	t.Run("Should return default logger when none attached", func(t *testing.T) {
		got := FromContext(t.Context())
		require.NotNil(t, got)
	})
}

func TestLogLevel(t *testing.T) {
	t.Run("Should map unknown level to info", func(t *testing.T) {
		level := LogLevel("bogus")
		assert.Equal(t, InfoLevel.ToCharmlogLevel(), level.ToCharmlogLevel())
	})
}

func TestWith(t *testing.T) {
	t.Run("Should return a derived logger carrying fields", func(t *testing.T) {
		log := NewLogger(&Config{Level: DebugLevel, Output: io.Discard})
		derived := log.With("component", "test")
		require.NotNil(t, derived)
		assert.NotSame(t, log, derived)
	})
}

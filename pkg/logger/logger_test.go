package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogger_InitializedOnImport(t *testing.T) {
	// init() builds the logger from APP_ENV before anything else runs
	require.NotPanics(t, func() { GetLogger() })
	assert.NotPanics(t, func() {
		Info("info line", "key", "value")
		Debug("debug line")
		Warn("warn line")
		Sync()
	})
}

func TestNewLogger_ProductionConfig(t *testing.T) {
	l, err := NewLogger(zap.NewProductionConfig())
	require.NoError(t, err)
	assert.Same(t, l, GetLogger())
	assert.NotPanics(t, func() {
		l.Info("prod line", "key", "value")
		l.Printf("formatted %d", 1)
		l.Sync()
	})
}

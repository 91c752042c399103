package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/auth-service/internal/config"
)

func TestSetup_NoDir(t *testing.T) {
	logs, err := Setup(config.LoggingConfig{Level: "debug", Format: "json"}, false)
	require.NoError(t, err)
	defer logs.Close()

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Empty(t, logs.closers)
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	logs, err := Setup(config.LoggingConfig{Level: "verbose"}, true)
	require.NoError(t, err)
	defer logs.Close()

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetup_RotatedFiles(t *testing.T) {
	dir := t.TempDir()

	logs, err := Setup(config.LoggingConfig{Level: "info", Format: "json", Dir: dir}, true)
	require.NoError(t, err)

	logs.Request.Info().Str("method", "POST").Msg("request")
	logs.Error.Error().Str("method", "POST").Msg("failure")
	require.NoError(t, logs.Close())

	for _, name := range []string{"reqLog.log", "errLog.log"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), `"method":"POST"`)
	}
}

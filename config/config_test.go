package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.ServerPort)
	assert.Equal(t, RecognizerTesseract, cfg.Recognizer)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultExtractTimeout, cfg.ExtractTimeout)
	assert.Equal(t, DefaultMaxParallel, cfg.MaxParallel)
	assert.Equal(t, []string{"eng"}, cfg.Languages())
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TESSDATA_PREFIX", "/opt/tessdata")
	t.Setenv("WORKPASS_RECOGNIZER", "paddle")
	t.Setenv("WORKPASS_MAX_PARALLEL", "8")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "/opt/tessdata", cfg.TesseractDataPath)
	assert.Equal(t, RecognizerPaddle, cfg.Recognizer)
	assert.Equal(t, 8, cfg.MaxParallel)
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig([]string{
		"--port=7070",
		"--extract_timeout=30s",
		"--ocr_language=eng+chi_sim",
		"--log_level=DEBUG",
		"--db_path=",
	})
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.ExtractTimeout)
	assert.Equal(t, []string{"eng", "chi_sim"}, cfg.Languages())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.DBPath)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown recognizer", []string{"--recognizer=easyocr"}},
		{"bad log level", []string{"--log_level=verbose"}},
		{"zero parallelism", []string{"--max_parallel=0"}},
		{"negative size", []string{"--max_file_size=-1"}},
		{"unknown flag", []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args)
			assert.Error(t, err)
		})
	}
}

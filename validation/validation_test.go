package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/asr-server/errors"
)

type engineSection struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=whisper whispercpp"`
	URL      string `mapstructure:"url" validate:"omitempty,url"`
}

type serverSection struct {
	Port        int    `mapstructure:"port" validate:"min=1,max=65535"`
	MaxBodySize string `mapstructure:"max_body_size" validate:"omitempty,bytesize"`
}

type rootConfig struct {
	Server      serverSection `mapstructure:"server"`
	Engine      engineSection `mapstructure:"transcription"`
	ScratchDir  string        `mapstructure:"scratch_dir" validate:"required"`
	MaxParallel int           `validate:"min=0"`
}

func validRoot() rootConfig {
	return rootConfig{
		Server:     serverSection{Port: 8000, MaxBodySize: "100MB"},
		Engine:     engineSection{Provider: "whisper", URL: "http://localhost:8387"},
		ScratchDir: "/tmp/asr",
	}
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, Validate(validRoot()))
}

func TestValidate_ReportsConfigKeys(t *testing.T) {
	cfg := validRoot()
	cfg.Engine.Provider = "vosk"
	cfg.ScratchDir = ""

	err := Validate(cfg)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidInput, appErr.Code)
	assert.Contains(t, appErr.Message, "transcription.provider: must be one of: whisper whispercpp")
	assert.Contains(t, appErr.Message, "scratch_dir: is required")

	fields, ok := appErr.Details["fields"].([]FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 2)
}

func TestValidate_ByteSize(t *testing.T) {
	cfg := validRoot()
	cfg.Server.MaxBodySize = ""
	assert.NoError(t, Validate(cfg), "empty size means unlimited")

	cfg.Server.MaxBodySize = "lots"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.max_body_size")
}

func TestValidate_Range(t *testing.T) {
	cfg := validRoot()
	cfg.Server.Port = 70000
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be at most 65535")
}

func TestValidate_UntaggedFieldUsesSnakeCase(t *testing.T) {
	cfg := validRoot()
	cfg.MaxParallel = -1
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_parallel")
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "compute_type", toSnakeCase("ComputeType"))
	assert.Equal(t, "url", toSnakeCase("url"))
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/asr-server/auth"
	"github.com/kbukum/asr-server/auth/jwt"
	"github.com/kbukum/asr-server/component"
	"github.com/kbukum/asr-server/logger"
	"github.com/kbukum/asr-server/server"
	"github.com/kbukum/asr-server/storage/local"
	"github.com/kbukum/asr-server/transcribe"
	"github.com/kbukum/asr-server/transcription"
	"github.com/kbukum/asr-server/transcription/whisper"
	"github.com/kbukum/asr-server/transcription/whispercpp"
)

func TestAppConfigDefaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, serviceName, cfg.Name)
	assert.NotEmpty(t, cfg.Version)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "whisper", cfg.Transcription.Provider)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, auth.DefaultSkipPaths, cfg.Auth.SkipPaths)
	assert.Equal(t, serviceName, cfg.Observability.ServiceName)
	assert.Equal(t, cfg.Environment, cfg.Observability.Environment)
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"bad port", func(c *AppConfig) { c.Server.Port = 70000 }, "server"},
		{"fallback repeats primary", func(c *AppConfig) { c.Transcription.Fallbacks = []string{"whisper"} }, "fallbacks"},
		{"auth without secret", func(c *AppConfig) { c.Auth.Enabled = true }, "auth"},
		{"bad environment", func(c *AppConfig) { c.Environment = "qa" }, "environment"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &AppConfig{}
			cfg.ApplyDefaults()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `
server:
  port: 9100
  max_body_size: 25MB
transcription:
  provider: whispercpp
  fallbacks: [whisper]
  engines:
    whispercpp:
      model: /models/ggml-base.bin
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("TRANSCRIPTION_LANGUAGE", "de")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "25MB", cfg.Server.MaxBodySize)
	assert.Equal(t, "whispercpp", cfg.Transcription.Provider)
	assert.Equal(t, []string{"whisper"}, cfg.Transcription.Fallbacks)
	assert.Equal(t, "de", cfg.Transcription.Language)
	assert.Equal(t, "/models/ggml-base.bin", cfg.Transcription.EngineConfig("whispercpp")["model"])
}

func TestEngineRegistry(t *testing.T) {
	reg := engineRegistry()
	assert.True(t, reg.Has(whisper.ProviderName))
	assert.True(t, reg.Has(whispercpp.ProviderName))
}

func TestMintToken(t *testing.T) {
	cfg := &jwt.Config{Secret: "test-secret", Issuer: "asr-clients"}

	token, err := mintToken(cfg, "client-7", time.Hour, time.Now())
	require.NoError(t, err)

	svc, err := jwt.NewService(cfg, jwt.NewClaims)
	require.NoError(t, err)
	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "client-7", claims.Subject)
	assert.Equal(t, "asr-clients", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestMintTokenRequiresSecret(t *testing.T) {
	_, err := mintToken(nil, "x", 0, time.Now())
	assert.Error(t, err)
	_, err = mintToken(&jwt.Config{}, "x", 0, time.Now())
	assert.Error(t, err)
}

type stubEngine struct {
	resp *transcription.TranscriptionResponse
	ext  string
}

func (s *stubEngine) Transcribe(_ context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	s.ext = filepath.Ext(req.AudioPath)
	return s.resp, nil
}

func TestTranscribeFile(t *testing.T) {
	store, err := local.NewStorage(t.TempDir())
	require.NoError(t, err)

	engine := &stubEngine{resp: &transcription.TranscriptionResponse{
		Language: "en",
		Segments: []transcription.Segment{{Text: " Hello"}, {Text: " world. "}},
	}}
	svc := transcribe.NewService(store, engine, logger.NewWithWriter(io.Discard, "error", "test"))

	audio := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o600))

	var out bytes.Buffer
	require.NoError(t, transcribeFile(context.Background(), svc, audio, &out))

	var result transcribe.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.True(t, result.OK)
	assert.Equal(t, "Hello world.", result.Text)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, ".wav", engine.ext)

	files, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMountAPIAuthCoversEveryRoute(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	cfg.Auth.Enabled = true
	cfg.Auth.Token = "s3cret"
	require.NoError(t, cfg.Validate())

	validator, err := auth.NewTokenValidator(&cfg.Auth)
	require.NoError(t, err)
	store, err := local.NewStorage(t.TempDir())
	require.NoError(t, err)
	log := logger.NewWithWriter(io.Discard, "error", "test")
	svc := transcribe.NewService(store, &stubEngine{resp: &transcription.TranscriptionResponse{}}, log)

	srv, err := server.New(cfg.Server, log)
	require.NoError(t, err)
	checker := func(context.Context) []component.Health {
		return []component.Health{{Name: "engine", Status: component.StatusHealthy}}
	}
	mountAPI(srv, cfg, validator, svc, checker, nil)
	h := srv.Handler()

	do := func(method, path, token string) int {
		req := httptest.NewRequest(method, path, http.NoBody)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/liveness", ""))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/info", ""))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/info", "s3cret"))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, transcribe.Route, ""))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, transcribe.Route, "wrong"))
}

func TestShutdownBudgetCoversServerDrain(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	cfg.Server.ShutdownTimeout = 60
	assert.Equal(t, 65*time.Second, shutdownBudget(cfg))
}

func TestTranscribeFileMissing(t *testing.T) {
	err := transcribeFile(context.Background(), nil, filepath.Join(t.TempDir(), "nope.wav"), io.Discard)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "open audio"))
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "asr-server "))
}

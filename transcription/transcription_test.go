package transcription

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/asr-server/component"
	goerrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/logger"
	"github.com/kbukum/asr-server/provider"
)

func TestJoinSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     string
	}{
		{"empty", nil, ""},
		{"blank segments", []Segment{{Text: "  "}, {Text: "\n"}}, ""},
		{"no separator added", []Segment{{Text: "Hel"}, {Text: "lo"}}, "Hello"},
		{"leading space kept between", []Segment{{Text: " Hello"}, {Text: " world."}}, "Hello world."},
		{"inner whitespace untouched", []Segment{{Text: " a  b"}, {Text: "\tc "}}, "a  b\tc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, JoinSegments(tc.segments))
		})
	}
}

func TestFinalText(t *testing.T) {
	assert.Equal(t, "", (&TranscriptionResponse{Text: "x", Segments: nil}).FinalText())
	assert.Equal(t, "", (&TranscriptionResponse{Text: " [BLANK_AUDIO] "}).FinalText())
	assert.Equal(t, "seg", (&TranscriptionResponse{Text: "ignored", Segments: []Segment{{Text: " seg"}}}).FinalText())
	var nilResp *TranscriptionResponse
	assert.Equal(t, "", nilResp.FinalText())
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, "whisper", cfg.Provider)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"whisper"}, cfg.Providers())
	assert.NotNil(t, cfg.EngineConfig("whisper"))

	cfg.Fallbacks = []string{"whisper"}
	assert.Error(t, cfg.Validate())

	cfg = Config{Provider: "whisper", MaxConcurrent: -1}
	assert.Error(t, cfg.Validate())
}

// fakeEngine is a scripted Provider.
type fakeEngine struct {
	name      string
	available bool
	resp      *TranscriptionResponse
	err       error
	delay     time.Duration

	mu   sync.Mutex
	reqs []TranscriptionRequest
}

func (f *fakeEngine) Name() string                       { return f.name }
func (f *fakeEngine) IsAvailable(_ context.Context) bool { return f.available }

func (f *fakeEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resp, f.err
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func registryWith(engines ...*fakeEngine) *provider.Registry[Provider] {
	reg := NewRegistry()
	for _, e := range engines {
		reg.RegisterFactory(e.name, func(map[string]any) (Provider, error) { return e, nil })
	}
	return reg
}

func startEngine(t *testing.T, cfg Config, engines ...*fakeEngine) *Engine {
	t.Helper()
	e := NewEngine(cfg, registryWith(engines...), logger.NewDefault("test"))
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(context.Background()) })
	return e
}

func TestEngine_Transcribe(t *testing.T) {
	fake := &fakeEngine{name: "whisper", available: true, resp: &TranscriptionResponse{Text: " hi", Language: "en"}}
	e := startEngine(t, Config{Provider: "whisper", Language: "en"}, fake)

	resp, err := e.Transcribe(context.Background(), TranscriptionRequest{AudioPath: "/tmp/a.wav", VADFilter: true})
	require.NoError(t, err)
	assert.Equal(t, "en", resp.Language)
	require.Equal(t, 1, fake.calls())
	assert.True(t, fake.reqs[0].VADFilter)
	assert.Equal(t, "en", fake.reqs[0].Language, "default language hint applied")
}

func TestEngine_NotStarted(t *testing.T) {
	e := NewEngine(Config{Provider: "whisper"}, NewRegistry(), logger.NewDefault("test"))

	_, err := e.Transcribe(context.Background(), TranscriptionRequest{})
	appErr, ok := goerrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, goerrors.ErrCodeServiceUnavailable, appErr.Code)
	assert.Equal(t, component.StatusUnhealthy, e.Health(context.Background()).Status)
}

func TestEngine_StartUnknownProvider(t *testing.T) {
	e := NewEngine(Config{Provider: "nope"}, registryWith(&fakeEngine{name: "whisper"}), logger.NewDefault("test"))
	err := e.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
	assert.Contains(t, err.Error(), "registered: whisper")
}

// closingEngine records Close calls made when the engine stops.
type closingEngine struct {
	fakeEngine
	closed bool
}

func (c *closingEngine) Close(_ context.Context) error {
	c.closed = true
	return nil
}

func TestEngine_StopClosesProviders(t *testing.T) {
	ce := &closingEngine{fakeEngine: fakeEngine{name: "whisper", available: true}}
	reg := NewRegistry()
	reg.RegisterFactory("whisper", func(map[string]any) (Provider, error) { return ce, nil })

	e := NewEngine(Config{Provider: "whisper"}, reg, logger.NewDefault("test"))
	require.NoError(t, e.Start(context.Background()))
	require.NoError(t, e.Stop(context.Background()))
	assert.True(t, ce.closed)
}

func TestEngine_Fallback(t *testing.T) {
	primary := &fakeEngine{name: "whisper", available: false}
	fallback := &fakeEngine{name: "whispercpp", available: true, resp: &TranscriptionResponse{Text: "ok"}}
	e := startEngine(t, Config{Provider: "whisper", Fallbacks: []string{"whispercpp"}}, primary, fallback)

	_, err := e.Transcribe(context.Background(), TranscriptionRequest{AudioPath: "a.wav"})
	require.NoError(t, err)
	assert.Equal(t, 0, primary.calls())
	assert.Equal(t, 1, fallback.calls())

	h := e.Health(context.Background())
	assert.Equal(t, component.StatusDegraded, h.Status)
	assert.Contains(t, h.Message, "whispercpp")

	fallback.available = false
	_, err = e.Transcribe(context.Background(), TranscriptionRequest{AudioPath: "a.wav"})
	appErr, ok := goerrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, goerrors.ErrCodeServiceUnavailable, appErr.Code)
	assert.Equal(t, component.StatusUnhealthy, e.Health(context.Background()).Status)
}

func TestEngine_HealthyPrimary(t *testing.T) {
	e := startEngine(t, Config{Provider: "whisper"}, &fakeEngine{name: "whisper", available: true})
	assert.Equal(t, component.StatusHealthy, e.Health(context.Background()).Status)
	assert.Equal(t, "engine", e.Describe().Type)
}

func TestEngine_EngineErrorPassesThrough(t *testing.T) {
	engineErr := goerrors.TranscriptionFailed("whisper", errors.New("bad audio"))
	e := startEngine(t, Config{Provider: "whisper"}, &fakeEngine{name: "whisper", available: true, err: engineErr})

	_, err := e.Transcribe(context.Background(), TranscriptionRequest{})
	assert.Same(t, engineErr, err)
}

func TestEngine_Timeout(t *testing.T) {
	slow := &fakeEngine{name: "whisper", available: true, delay: time.Second, resp: &TranscriptionResponse{}}
	e := startEngine(t, Config{Provider: "whisper", Timeout: 20 * time.Millisecond}, slow)

	_, err := e.Transcribe(context.Background(), TranscriptionRequest{})
	appErr, ok := goerrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, goerrors.ErrCodeTimeout, appErr.Code)
}

func TestEngine_MaxConcurrent(t *testing.T) {
	slow := &fakeEngine{name: "whisper", available: true, delay: 300 * time.Millisecond, resp: &TranscriptionResponse{}}
	e := startEngine(t, Config{Provider: "whisper", MaxConcurrent: 1}, slow)

	done := make(chan error, 1)
	go func() {
		_, err := e.Transcribe(context.Background(), TranscriptionRequest{})
		done <- err
	}()
	require.Eventually(t, func() bool { return slow.calls() == 1 }, time.Second, 5*time.Millisecond)

	_, err := e.Transcribe(context.Background(), TranscriptionRequest{})
	appErr, ok := goerrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, goerrors.ErrCodeServiceUnavailable, appErr.Code)
	require.NoError(t, <-done)
}

func TestAsRequestResponse(t *testing.T) {
	fake := &fakeEngine{name: "whisper", available: true, resp: &TranscriptionResponse{Text: "x"}}
	rr := AsRequestResponse(fake)
	assert.Equal(t, "whisper", rr.Name())
	assert.True(t, rr.IsAvailable(context.Background()))
	resp, err := rr.Execute(context.Background(), TranscriptionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Text)
}

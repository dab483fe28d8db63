package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/provider"
	"github.com/kbukum/asr-server/security"
	"github.com/kbukum/asr-server/transcription"
)

const (
	// ProviderName is the registered name for the faster-whisper provider.
	ProviderName = "whisper"

	defaultURL         = "http://localhost:8387"
	defaultModel       = "base"
	defaultDevice      = "cpu"
	defaultComputeType = "int8"
	defaultTimeout     = 10 * time.Minute

	maxErrorBody = 4 << 10
)

// Config holds settings for the faster-whisper sidecar.
type Config struct {
	URL         string        `json:"url" yaml:"url" mapstructure:"url"`
	Model       string        `json:"model" yaml:"model" mapstructure:"model"`
	Language    string        `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	Device      string        `json:"device,omitempty" yaml:"device" mapstructure:"device"`
	ComputeType string        `json:"compute_type,omitempty" yaml:"compute_type" mapstructure:"compute_type"`
	BeamSize    int           `json:"beam_size,omitempty" yaml:"beam_size" mapstructure:"beam_size"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// TLS applies to https sidecar URLs.
	TLS *security.TLSConfig `json:"tls,omitempty" yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills unset fields. The model runs on CPU with int8
// weights unless configured otherwise.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Device == "" {
		c.Device = defaultDevice
	}
	if c.ComputeType == "" {
		c.ComputeType = defaultComputeType
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider implements transcription.Provider against a faster-whisper
// HTTP sidecar.
type Provider struct {
	cfg    Config
	client *http.Client
}

var (
	_ transcription.Provider = (*Provider)(nil)
	_ provider.Closeable     = (*Provider)(nil)
)

// NewProvider creates a faster-whisper provider. It fails only when the
// TLS settings cannot be loaded.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	tr, err := cfg.TLS.Transport()
	if err != nil {
		return nil, fmt.Errorf("whisper sidecar %w", err)
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Transport: tr, Timeout: cfg.Timeout},
	}, nil
}

// Factory builds providers from an engine config section.
func Factory() provider.Factory[transcription.Provider] {
	return func(section map[string]any) (transcription.Provider, error) {
		var cfg Config
		if err := provider.DecodeConfig(section, &cfg); err != nil {
			return nil, fmt.Errorf("whisper config: %w", err)
		}
		return NewProvider(cfg)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Config returns the effective configuration.
func (p *Provider) Config() Config { return p.cfg }

// IsAvailable reports whether GET {url}/health answers 200.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Transcribe uploads the audio file to the sidecar and maps its reply.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	body, contentType, err := p.buildForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("whisper request: %w", ctx.Err())
		}
		if isTimeout(err) {
			return nil, goerrors.Timeout("transcription").WithCause(err)
		}
		return nil, goerrors.ConnectionFailed(ProviderName).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode == http.StatusServiceUnavailable {
			return nil, goerrors.ServiceUnavailable(ProviderName).WithCause(cause)
		}
		return nil, goerrors.TranscriptionFailed(ProviderName, cause)
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if isTimeout(err) {
			return nil, goerrors.Timeout("transcription").WithCause(err)
		}
		return nil, goerrors.TranscriptionFailed(ProviderName, fmt.Errorf("decode response: %w", err))
	}
	return toTranscriptionResponse(&result), nil
}

// Close drops idle sidecar connections.
func (p *Provider) Close(_ context.Context) error {
	p.client.CloseIdleConnections()
	return nil
}

// isTimeout reports whether err is the client's own deadline firing.
func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (p *Provider) buildForm(req transcription.TranscriptionRequest) (io.Reader, string, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("write audio data: %w", err)
	}

	fields := map[string]string{
		"model":        model,
		"device":       p.cfg.Device,
		"compute_type": p.cfg.ComputeType,
		"vad_filter":   strconv.FormatBool(req.VADFilter),
	}
	if lang != "" {
		fields["language"] = lang
	}
	if p.cfg.BeamSize > 0 {
		fields["beam_size"] = strconv.Itoa(p.cfg.BeamSize)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toTranscriptionResponse(resp *whisperResponse) *transcription.TranscriptionResponse {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}

	duration := resp.Duration
	if duration == 0 && len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	return &transcription.TranscriptionResponse{
		Text:     resp.Text,
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}

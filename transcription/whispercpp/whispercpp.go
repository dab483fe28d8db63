package whispercpp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	goerrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/process"
	"github.com/kbukum/asr-server/provider"
	"github.com/kbukum/asr-server/transcription"
)

const (
	// ProviderName is the registered name for the whisper.cpp provider.
	ProviderName = "whispercpp"

	defaultBinary = "whisper-cli"
	autoLanguage  = "auto"
)

// Config holds settings for the whisper.cpp command-line binary.
type Config struct {
	// Binary is the whisper-cli executable, resolved via PATH.
	Binary string `yaml:"binary" mapstructure:"binary"`
	// Model is the path of the ggml model file.
	Model string `yaml:"model" mapstructure:"model"`
	// VADModel is the path of the Silero VAD model. VAD filtering is only
	// applied when it is set.
	VADModel string `yaml:"vad_model" mapstructure:"vad_model"`
	Language string `yaml:"language" mapstructure:"language"`
	Threads  int    `yaml:"threads" mapstructure:"threads"`
	// ExtraArgs are appended to every invocation.
	ExtraArgs []string `yaml:"extra_args" mapstructure:"extra_args"`
	// TempDir holds the per-call output files; empty means os.TempDir().
	TempDir     string        `yaml:"temp_dir" mapstructure:"temp_dir"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// MaxProcesses caps concurrent whisper-cli runs. Zero means unbounded.
	MaxProcesses int           `yaml:"max_processes" mapstructure:"max_processes"`
	MaxWait      time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
}

// Provider implements transcription.Provider by running whisper-cli once
// per request and reading its JSON output file.
type Provider struct {
	cfg    Config
	runner *process.Runner
}

var (
	_ transcription.Provider = (*Provider)(nil)
	_ provider.Initializable = (*Provider)(nil)
)

// NewProvider creates a whisper.cpp provider.
func NewProvider(cfg Config) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg: cfg,
		runner: process.NewRunner(process.Config{
			Name:          ProviderName,
			GracePeriod:   cfg.GracePeriod,
			Timeout:       cfg.Timeout,
			MaxConcurrent: cfg.MaxProcesses,
			MaxWait:       cfg.MaxWait,
		}),
	}
}

// Factory builds providers from an engine config section.
func Factory() provider.Factory[transcription.Provider] {
	return func(section map[string]any) (transcription.Provider, error) {
		var cfg Config
		if err := provider.DecodeConfig(section, &cfg); err != nil {
			return nil, fmt.Errorf("whispercpp config: %w", err)
		}
		if cfg.Model == "" {
			return nil, fmt.Errorf("whispercpp config: model is required")
		}
		return NewProvider(cfg), nil
	}
}

func (p *Provider) Name() string { return ProviderName }

// Init checks that the binary and model files exist.
func (p *Provider) Init(_ context.Context) error {
	if _, err := process.LookPath(p.cfg.Binary); err != nil {
		return fmt.Errorf("whispercpp binary: %w", err)
	}
	if _, err := os.Stat(p.cfg.Model); err != nil {
		return fmt.Errorf("whispercpp model: %w", err)
	}
	if p.cfg.VADModel != "" {
		if _, err := os.Stat(p.cfg.VADModel); err != nil {
			return fmt.Errorf("whispercpp vad model: %w", err)
		}
	}
	return nil
}

// IsAvailable reports whether the binary and model are present.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.Init(ctx) == nil
}

// Transcribe runs whisper-cli over req.AudioPath.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	outDir, err := os.MkdirTemp(p.cfg.TempDir, "whispercpp-")
	if err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	outBase := filepath.Join(outDir, "out")
	result, err := p.runner.Run(ctx, process.Command{
		Binary: p.cfg.Binary,
		Args:   p.args(req, outBase),
	})
	if err != nil {
		if _, ok := goerrors.AsAppError(err); ok || ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, goerrors.TranscriptionFailed(ProviderName, err)
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return nil, goerrors.TranscriptionFailed(ProviderName, fmt.Errorf("read output (stderr: %s): %w", result.StderrTail(), err))
	}

	var out cliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, goerrors.TranscriptionFailed(ProviderName, fmt.Errorf("decode output: %w", err))
	}
	return out.toResponse(), nil
}

func (p *Provider) args(req transcription.TranscriptionRequest, outBase string) []string {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := req.Language
	if lang == "" {
		lang = p.cfg.Language
	}
	if lang == "" {
		lang = autoLanguage
	}

	args := []string{
		"-m", model,
		"-f", req.AudioPath,
		"-l", lang,
		"-oj",
		"-of", outBase,
		"-np",
	}
	if p.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(p.cfg.Threads))
	}
	if req.VADFilter && p.cfg.VADModel != "" {
		args = append(args, "--vad", "-vm", p.cfg.VADModel)
	}
	return append(args, p.cfg.ExtraArgs...)
}

type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []cliSegment `json:"transcription"`
}

type cliSegment struct {
	Offsets struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
	} `json:"offsets"`
	Text string `json:"text"`
}

func (o *cliOutput) toResponse() *transcription.TranscriptionResponse {
	resp := &transcription.TranscriptionResponse{
		Language: o.Result.Language,
		Segments: make([]transcription.Segment, len(o.Transcription)),
	}
	for i, seg := range o.Transcription {
		resp.Segments[i] = transcription.Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  seg.Text,
		}
		resp.Text += seg.Text
	}
	if n := len(resp.Segments); n > 0 {
		resp.Duration = resp.Segments[n-1].End
	}
	return resp
}

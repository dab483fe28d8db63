package transcription

import (
	"context"

	"github.com/kbukum/asr-server/provider"
)

// Provider is implemented by speech-to-text engines.
type Provider interface {
	provider.Provider

	// Transcribe runs the engine over req.AudioPath.
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
}

// Executor is a Provider seen through the generic provider interface, so
// provider middlewares apply to it.
type Executor = provider.RequestResponse[TranscriptionRequest, *TranscriptionResponse]

// AsRequestResponse adapts p to an Executor.
func AsRequestResponse(p Provider) Executor {
	return &requestResponse{p: p}
}

type requestResponse struct {
	p Provider
}

func (r *requestResponse) Name() string                         { return r.p.Name() }
func (r *requestResponse) IsAvailable(ctx context.Context) bool { return r.p.IsAvailable(ctx) }

func (r *requestResponse) Execute(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	return r.p.Transcribe(ctx, req)
}

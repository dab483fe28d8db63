// Package transcription defines the speech-to-text engine interface, the
// request and response types, and Engine, the shared component that routes
// calls to the configured backend.
//
// Backends:
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//   - transcription/whispercpp: whisper.cpp command-line binary
//
// Usage:
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
//	engine := transcription.NewEngine(cfg.Transcription, reg, log)
//	resp, err := engine.Transcribe(ctx, transcription.TranscriptionRequest{AudioPath: path, VADFilter: true})
package transcription

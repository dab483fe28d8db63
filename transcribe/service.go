package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/logger"
	"github.com/kbukum/asr-server/observability"
	"github.com/kbukum/asr-server/storage"
	"github.com/kbukum/asr-server/transcription"
)

// PlaceholderExt names scratch files whose upload had no usable extension.
const PlaceholderExt = ".bin"

// Transcriber runs one engine call. *transcription.Engine implements it.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error)
}

// Upload is one received audio payload.
type Upload struct {
	// Filename is the client-supplied name, used only for its extension.
	Filename string
	Body     io.Reader
}

// Result is the success body.
type Result struct {
	OK       bool   `json:"ok"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Service runs the upload → scratch file → engine → cleanup flow.
type Service struct {
	store  storage.Storage
	engine Transcriber
	log    *logger.Logger
}

// NewService wires the scratch store and the shared engine handle.
func NewService(store storage.Storage, engine Transcriber, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		log:    log.WithComponent("transcribe"),
	}
}

// Transcribe persists up, transcribes it once with VAD enabled and returns
// the trimmed concatenation of the segment texts. The scratch file is
// deleted before returning, whatever the outcome.
func (s *Service) Transcribe(ctx context.Context, up Upload) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "transcribe.request")
	defer span.End()

	start := time.Now()
	log := s.log.WithContext(ctx)
	key := storage.NewKey(Extension(up.Filename))
	defer s.discard(ctx, key)

	body := &countingReader{r: up.Body}
	if err := s.store.Upload(ctx, key, body); err != nil {
		appErr := uploadError(err)
		observability.SetSpanError(ctx, appErr)
		return nil, appErr
	}
	observability.SetSpanAttribute(ctx, observability.AttrAudioSize, body.n)

	path, err := s.store.LocalPath(key)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, apperrors.Internal(err)
	}

	resp, err := s.engine.Transcribe(ctx, transcription.TranscriptionRequest{
		AudioPath: path,
		VADFilter: true,
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	result := &Result{OK: true, Text: resp.FinalText(), Language: resp.Language}
	observability.SetSpanAttribute(ctx, observability.AttrLanguage, result.Language)
	observability.SetSpanAttribute(ctx, observability.AttrSegments, len(resp.Segments))
	log.Info("Transcription completed", logger.Fields(
		logger.FieldBytes, body.n,
		logger.FieldLanguage, result.Language,
		"segments", len(resp.Segments),
		"chars", len(result.Text),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return result, nil
}

// discard removes the scratch file. Failures are logged at debug and
// otherwise ignored; cancellation of the request must not skip it.
func (s *Service) discard(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.WithContext(ctx).Debug("Scratch file cleanup failed", logger.Fields(
			"key", key,
			logger.FieldError, err.Error(),
		))
	}
}

// Extension returns the extension of the client filename including the dot,
// or PlaceholderExt when there is none. Leading dots do not start an
// extension, so ".env" has none.
func Extension(filename string) string {
	if filename == "" {
		return PlaceholderExt
	}
	base := strings.TrimLeft(filepath.Base(filename), ".")
	ext := filepath.Ext(base)
	if ext == "" || ext == "." {
		return PlaceholderExt
	}
	return ext
}

func uploadError(err error) *apperrors.AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.PayloadTooLarge(maxErr.Limit)
	}
	return apperrors.Internal(err)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

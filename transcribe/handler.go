package transcribe

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/asr-server/errors"
	"github.com/kbukum/asr-server/server"
)

// FormField is the multipart field carrying the audio.
const FormField = "file"

// Route is the transcription endpoint path.
const Route = "/transcribe"

// Handler serves POST /transcribe.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler around svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the endpoint, running mws (auth, rate limiting) first.
func (h *Handler) Register(r gin.IRoutes, mws ...gin.HandlerFunc) {
	r.POST(Route, append(mws, h.Transcribe)...)
}

// Transcribe reads the "file" field and responds with
// {"ok": true, "text": ..., "language": ...}.
func (h *Handler) Transcribe(c *gin.Context) {
	up, closeFn, err := readUpload(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	defer closeFn()

	result, err := h.svc.Transcribe(c.Request.Context(), up)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, result)
}

// readUpload extracts the audio from the form. A "file" part sent without
// a filename arrives as a plain form value and is accepted with no name.
func readUpload(c *gin.Context) (Upload, func(), error) {
	fh, err := c.FormFile(FormField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return Upload{}, nil, apperrors.Internal(err)
		}
		return Upload{Filename: fh.Filename, Body: f}, func() { _ = f.Close() }, nil

	case errors.Is(err, http.ErrMissingFile):
		if form := c.Request.MultipartForm; form != nil {
			if vals := form.Value[FormField]; len(vals) > 0 {
				return Upload{Body: strings.NewReader(vals[0])}, func() {}, nil
			}
		}
		return Upload{}, nil, apperrors.MissingField(FormField)
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return Upload{}, nil, apperrors.PayloadTooLarge(maxErr.Limit)
	}
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		return Upload{}, nil, apperrors.InvalidInput(FormField, "expected a multipart/form-data upload")
	}
	return Upload{}, nil, apperrors.InvalidInput(FormField, err.Error())
}

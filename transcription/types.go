package transcription

import "strings"

// TranscriptionRequest holds parameters for one transcription call.
type TranscriptionRequest struct {
	// AudioPath is the path of the audio file on local disk.
	AudioPath string `json:"audio_path"`
	// Language is a language hint ("en"). Empty lets the engine detect it.
	Language string `json:"language,omitempty"`
	// Model overrides the engine's configured model.
	Model string `json:"model,omitempty"`
	// VADFilter asks the engine to drop non-speech regions before decoding.
	VADFilter bool `json:"vad_filter"`
}

// TranscriptionResponse is what an engine returns.
type TranscriptionResponse struct {
	// Text is the engine's own full transcript.
	Text string `json:"text"`
	// Segments are time-aligned fragments in engine order.
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or requested language.
	Language string `json:"language,omitempty"`
}

// Segment is a time-aligned portion of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// JoinSegments concatenates segment texts in order with no separator and
// trims surrounding whitespace. Nothing else is normalized.
func JoinSegments(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return strings.TrimSpace(b.String())
}

// FinalText is the text reported to clients: the joined segments. Text is
// never consulted, so a response without segments yields "".
func (r *TranscriptionResponse) FinalText() string {
	if r == nil {
		return ""
	}
	return JoinSegments(r.Segments)
}

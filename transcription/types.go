package transcription

import (
	"fmt"
	"strings"
	"time"
)

// Encodings understood by providers.
const (
	EncodingLinear16 = "LINEAR16"
	EncodingOggOpus  = "OGG_OPUS"
)

// Request holds one transcription call.
type Request struct {
	// Audio is the encoded audio content.
	Audio []byte `json:"-"`
	// Encoding names the sample format of Audio, e.g. "LINEAR16".
	Encoding string `json:"encoding"`
	// SampleRate is the sample rate of Audio in Hz.
	SampleRate int `json:"sample_rate"`
	// Channels is the channel count of Audio. Zero means mono.
	Channels int `json:"channels,omitempty"`
	// Language is a BCP-47 language tag, e.g. "sr-RS".
	Language string `json:"language"`
	// Model selects the recognition model.
	Model string `json:"model,omitempty"`
	// Punctuation enables automatic punctuation.
	Punctuation bool `json:"punctuation"`
}

// Duration estimates the playback length of Audio. Only LINEAR16 is
// measurable from its size; other encodings report zero.
func (r Request) Duration() time.Duration {
	if r.Encoding != EncodingLinear16 || r.SampleRate <= 0 {
		return 0
	}
	ch := r.Channels
	if ch <= 0 {
		ch = 1
	}
	secs := float64(len(r.Audio)) / float64(r.SampleRate*ch*2)
	return time.Duration(secs * float64(time.Second))
}

// Validate checks the fields every backend needs.
func (r Request) Validate() error {
	if len(r.Audio) == 0 {
		return fmt.Errorf("audio is empty")
	}
	if r.Language == "" {
		return fmt.Errorf("language is required")
	}
	if r.Encoding == EncodingLinear16 && r.SampleRate <= 0 {
		return fmt.Errorf("sample rate is required for %s", EncodingLinear16)
	}
	return nil
}

// Result is the transcript of one Request.
type Result struct {
	// Text is the full transcript.
	Text string `json:"text"`
	// Confidence is the mean confidence of the recognised segments, 0 when
	// the backend reports none.
	Confidence float64 `json:"confidence,omitempty"`
	// Language is the language the audio was recognised in.
	Language string `json:"language"`
	// AudioDuration is the length of the submitted audio.
	AudioDuration time.Duration `json:"audio_duration"`
	// Segments are the per-result pieces Text was built from.
	Segments []Segment `json:"segments,omitempty"`
}

// Empty reports whether no speech was recognised.
func (r *Result) Empty() bool {
	return r == nil || strings.TrimSpace(r.Text) == ""
}

// Segment is one recognised portion of a transcript.
type Segment struct {
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// Confidence is the backend's confidence for this segment.
	Confidence float64 `json:"confidence,omitempty"`
	// End is the offset of the segment end from the start of the audio.
	End time.Duration `json:"end,omitempty"`
}

// Join builds Text and Confidence from segments.
func Join(segments []Segment) (string, float64) {
	parts := make([]string, 0, len(segments))
	var sum float64
	var n int
	for _, s := range segments {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		parts = append(parts, t)
		if s.Confidence > 0 {
			sum += s.Confidence
			n++
		}
	}
	if n == 0 {
		return strings.Join(parts, " "), 0
	}
	return strings.Join(parts, " "), sum / float64(n)
}

package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
)

// fakeFFmpeg writes a shell script standing in for ffmpeg. The payload
// selects the behaviour: CORRUPT fails, SILENT decodes to nothing, SLOW
// hangs, anything else yields one second of 16 kHz mono silence.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
in=""
prev=""
out=""
for a in "$@"; do
  if [ "$prev" = "-i" ]; then in="$a"; fi
  prev="$a"
  out="$a"
done
if grep -q CORRUPT "$in"; then
  echo "Invalid data found when processing input" >&2
  exit 1
fi
if grep -q SILENT "$in"; then
  : > "$out"
  exit 0
fi
if grep -q SLOW "$in"; then
  sleep 5
fi
head -c 32000 /dev/zero > "$out"
`
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	return path
}

func newTestConverter(t *testing.T, workDir string) *Converter {
	t.Helper()
	return NewConverter(Config{
		Binary:      fakeFFmpeg(t),
		WorkDir:     workDir,
		Timeout:     2 * time.Second,
		GracePeriod: 100 * time.Millisecond,
	}, logger.Nop())
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected temp files to be removed, found %d entries", len(entries))
	}
}

func TestConvert_Success(t *testing.T) {
	work := t.TempDir()
	c := newTestConverter(t, work)

	buf, err := c.Convert(context.Background(), []byte("OggS voice"), "audio/ogg")
	if err != nil {
		t.Fatalf("Convert() failed: %v", err)
	}
	if buf.SampleRate != 16000 || buf.Channels != 1 {
		t.Errorf("unexpected format %d Hz x %d", buf.SampleRate, buf.Channels)
	}
	if buf.Duration() != time.Second {
		t.Errorf("expected 1s of audio, got %v", buf.Duration())
	}
	if buf.Encoding() != EncodingLinear16 {
		t.Errorf("expected LINEAR16, got %s", buf.Encoding())
	}
	assertEmptyDir(t, work)
}

func TestConvert_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty input", nil, "empty input"},
		{"corrupt payload", []byte("CORRUPT"), "Invalid data found"},
		{"decodes to nothing", []byte("SILENT"), "no audio decoded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			work := t.TempDir()
			c := newTestConverter(t, work)

			buf, err := c.Convert(context.Background(), tc.input, "")
			if buf != nil {
				t.Error("expected no buffer on failure")
			}
			if !apperrors.HasCode(err, apperrors.ErrCodeConversionFailed) {
				t.Fatalf("expected CONVERSION_FAILED, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in error, got %q", tc.want, err.Error())
			}
			assertEmptyDir(t, work)
		})
	}
}

func TestConvert_Timeout(t *testing.T) {
	work := t.TempDir()
	c := NewConverter(Config{
		Binary:      fakeFFmpeg(t),
		WorkDir:     work,
		Timeout:     200 * time.Millisecond,
		GracePeriod: 100 * time.Millisecond,
	}, logger.Nop())

	start := time.Now()
	_, err := c.Convert(context.Background(), []byte("SLOW"), "")
	if !apperrors.HasCode(err, apperrors.ErrCodeConversionFailed) {
		t.Fatalf("expected CONVERSION_FAILED, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("conversion was not cut short, took %v", elapsed)
	}
	assertEmptyDir(t, work)
}

func TestConverter_IsAvailable(t *testing.T) {
	c := newTestConverter(t, "")
	if !c.IsAvailable(context.Background()) {
		t.Error("expected fake binary to be available")
	}

	missing := NewConverter(Config{Binary: "voicescribe-no-such-ffmpeg"}, logger.Nop())
	if missing.IsAvailable(context.Background()) {
		t.Error("expected missing binary to be unavailable")
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"":           ".ogg",
		"audio/ogg":  ".ogg",
		"audio/mpeg": ".mp3",
		"audio/flac": ".flac",
		"WAV":        ".wav",
		"audio/x-?":  ".bin",
	}
	for hint, want := range tests {
		if got := extension(hint); got != want {
			t.Errorf("extension(%q) = %q, want %q", hint, got, want)
		}
	}
}

func TestBuffer_Seconds(t *testing.T) {
	var nilBuf *Buffer
	if nilBuf.Seconds() != 0 || !nilBuf.Empty() {
		t.Error("nil buffer should be empty with zero length")
	}
	b := &Buffer{Data: make([]byte, 48000), SampleRate: 16000, Channels: 1}
	if b.Seconds() != 1.5 {
		t.Errorf("expected 1.5s, got %v", b.Seconds())
	}
}

package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/process"
)

const (
	outputChannels = 1
	stderrTailSize = 300
)

// Converter turns Telegram voice payloads into LINEAR16 buffers with ffmpeg.
type Converter struct {
	cfg    Config
	runner *process.Runner
	log    *logger.Logger
}

// NewConverter creates a Converter.
func NewConverter(cfg Config, log *logger.Logger) *Converter {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Converter{
		cfg: cfg,
		runner: process.NewRunner(process.RunnerConfig{
			Name:          "ffmpeg",
			Timeout:       cfg.Timeout,
			GracePeriod:   cfg.GracePeriod,
			MaxConcurrent: cfg.MaxConcurrent,
		}),
		log: log.WithComponent("audio"),
	}
}

// Name returns the converter name.
func (c *Converter) Name() string { return "ffmpeg" }

// IsAvailable reports whether the ffmpeg binary resolves via PATH.
func (c *Converter) IsAvailable(_ context.Context) bool {
	_, ok := process.LookPath(c.cfg.Binary)
	return ok
}

// Convert decodes src (any container ffmpeg understands; hint is the file
// extension or MIME type, used only to name the input file) into mono
// LINEAR16 at the configured sample rate. The temp dir is removed on every
// path. All failures carry code CONVERSION_FAILED.
func (c *Converter) Convert(ctx context.Context, src []byte, hint string) (*Buffer, error) {
	if len(src) == 0 {
		return nil, apperrors.ConversionFailed("empty input", nil)
	}

	dir, err := os.MkdirTemp(c.cfg.WorkDir, "voicescribe-*")
	if err != nil {
		return nil, apperrors.ConversionFailed("create temp dir", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			c.log.Warn("Failed to remove temp dir", map[string]interface{}{
				"dir":             dir,
				logger.FieldError: rmErr.Error(),
			})
		}
	}()

	in := filepath.Join(dir, "input"+extension(hint))
	out := filepath.Join(dir, "output.raw")
	if err := os.WriteFile(in, src, 0o600); err != nil {
		return nil, apperrors.ConversionFailed("write input", err)
	}

	start := time.Now()
	res, err := c.runner.Run(ctx, process.Command{
		Binary: c.cfg.Binary,
		Args:   c.args(in, out),
		Dir:    dir,
	})
	if err != nil {
		reason := "ffmpeg failed"
		if tail := res.StderrTail(stderrTailSize); tail != "" {
			reason = "ffmpeg failed: " + tail
		}
		c.log.WithContext(ctx).Warn("Audio conversion failed", map[string]interface{}{
			logger.FieldError:    err.Error(),
			logger.FieldDuration: time.Since(start).Milliseconds(),
			"input_bytes":        len(src),
		})
		return nil, apperrors.ConversionFailed(reason, err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, apperrors.ConversionFailed("read output", err)
	}

	buf := &Buffer{Data: data, SampleRate: c.cfg.SampleRate, Channels: outputChannels}
	if buf.Empty() {
		return nil, apperrors.ConversionFailed("no audio decoded", nil)
	}

	c.log.WithContext(ctx).Debug("Audio converted", map[string]interface{}{
		logger.FieldDuration: time.Since(start).Milliseconds(),
		"input_bytes":        len(src),
		"output_bytes":       len(data),
		"audio_seconds":      buf.Seconds(),
	})
	return buf, nil
}

func (c *Converter) args(in, out string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", in,
		"-ac", strconv.Itoa(outputChannels),
		"-ar", strconv.Itoa(c.cfg.SampleRate),
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		out,
	}
}

// extension maps a MIME type or bare extension to a file suffix.
func extension(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	switch hint {
	case "":
		return ".ogg"
	case "audio/ogg", "audio/opus", "oga", "opus":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	}
	if i := strings.LastIndexByte(hint, '/'); i >= 0 {
		hint = hint[i+1:]
	}
	hint = strings.TrimPrefix(hint, ".")
	if hint == "" {
		return ".bin"
	}
	for _, r := range hint {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".bin"
		}
	}
	return fmt.Sprintf(".%s", hint)
}

package transcription

import (
	"context"

	"github.com/kbukum/voicescribe/provider"
)

// Provider is the interface that speech-to-text backends implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe recognises the speech in req.Audio. Audio without speech
	// yields a Result whose Empty reports true, not an error.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

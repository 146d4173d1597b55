package transcription

import "fmt"

// Options are the recognition settings applied to every request.
type Options struct {
	// Language is the BCP-47 tag of the expected speech.
	Language string `mapstructure:"language" validate:"required"`
	// Model selects the recognition model.
	Model string `mapstructure:"model"`
	// Punctuation enables automatic punctuation.
	Punctuation bool `mapstructure:"punctuation"`
}

// DefaultLanguage is Serbian as spoken in Serbia.
const DefaultLanguage = "sr-RS"

// ApplyDefaults fills zero values. Punctuation has no zero-value default;
// the configuration loader defaults it to true.
func (o *Options) ApplyDefaults() {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.Model == "" {
		o.Model = "default"
	}
}

// Validate checks the options after defaults.
func (o *Options) Validate() error {
	if o.Language == "" {
		return fmt.Errorf("speech.language is required")
	}
	return nil
}

// NewRequest builds a Request for LINEAR16 audio with these options.
func (o Options) NewRequest(audio []byte, sampleRate, channels int) Request {
	return Request{
		Audio:       audio,
		Encoding:    EncodingLinear16,
		SampleRate:  sampleRate,
		Channels:    channels,
		Language:    o.Language,
		Model:       o.Model,
		Punctuation: o.Punctuation,
	}
}

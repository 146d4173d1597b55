package google

import (
	"context"
	"fmt"
	"os"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	googleauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/provider"
	"github.com/kbukum/voicescribe/resilience"
	"github.com/kbukum/voicescribe/transcription"
	"github.com/kbukum/voicescribe/version"
)

// ProviderName is the name the provider reports.
const ProviderName = "google-speech"

var _ transcription.Provider = (*Provider)(nil)

// Provider implements transcription.Provider on Google Cloud Speech-to-Text v1.
type Provider struct {
	cfg    Config
	client *speech.Client
	state  *provider.ResilienceState
	log    *logger.Logger
}

// NewProvider builds a Speech-to-Text client. A configured credentials file
// is read and parsed here, so a missing or malformed key fails at startup.
// Extra client options are appended after the ones derived from cfg.
func NewProvider(ctx context.Context, cfg Config, log *logger.Logger, opts ...option.ClientOption) (*Provider, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	clientOpts := []option.ClientOption{option.WithUserAgent(version.UserAgent("voicescribe"))}
	if cfg.CredentialsFile != "" {
		creds, err := LoadCredentials(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, option.WithCredentials(creds))
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := speech.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, apperrors.ServiceUnavailable(ProviderName).WithCause(fmt.Errorf("create speech client: %w", err))
	}
	// The resilience state is the only retry layer.
	client.CallOptions.Recognize = nil
	client.CallOptions.LongRunningRecognize = nil

	return &Provider{
		cfg:    cfg,
		client: client,
		state: provider.BuildResilience(provider.ResilienceConfig{
			Retry:          cfg.Resilience.Retry(resilience.DefaultRetryIf),
			CircuitBreaker: cfg.Resilience.Breaker(ProviderName, countsAsFailure),
		}),
		log: log.WithComponent("speech"),
	}, nil
}

// LoadCredentials reads and parses a service account (or any other Google
// credentials) JSON file.
func LoadCredentials(ctx context.Context, path string) (*googleauth.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ConfigInvalid("google.application_credentials", err.Error())
	}
	creds, err := googleauth.CredentialsFromJSON(ctx, data, speech.DefaultAuthScopes()...)
	if err != nil {
		return nil, apperrors.ConfigInvalid("google.application_credentials", "cannot parse credentials: "+err.Error())
	}
	return creds, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the circuit breaker admits calls.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.state.BreakerState() != resilience.StateOpen
}

// BreakerState exposes the circuit breaker state for health reporting.
func (p *Provider) BreakerState() resilience.State { return p.state.BreakerState() }

// Close closes the underlying gRPC connection.
func (p *Provider) Close() error { return p.client.Close() }

// Transcribe recognises req. Audio up to the sync limit goes through
// Recognize; longer audio through LongRunningRecognize.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.InvalidInput("audio", err.Error())
	}

	dur := req.Duration()
	longRunning := dur > p.cfg.SyncLimit
	rc := recognitionConfig(req)
	audio := &speechpb.RecognitionAudio{
		AudioSource: &speechpb.RecognitionAudio_Content{Content: req.Audio},
	}

	start := time.Now()
	results, err := provider.ExecuteWithResilience(ctx, p.state, func() ([]*speechpb.SpeechRecognitionResult, error) {
		var (
			out []*speechpb.SpeechRecognitionResult
			err error
		)
		if longRunning {
			out, err = p.longRunning(ctx, rc, audio)
		} else {
			out, err = p.recognize(ctx, rc, audio)
		}
		if err != nil {
			return nil, classify(err)
		}
		return out, nil
	})

	fields := map[string]interface{}{
		logger.FieldDuration: time.Since(start).Milliseconds(),
		"audio_seconds":      dur.Seconds(),
		"long_running":       longRunning,
		"language":           req.Language,
	}
	if err != nil {
		err = fromChain(err)
		fields[logger.FieldErrorCode] = apperrors.CodeOf(err)
		if appErr, ok := apperrors.AsAppError(err); ok {
			fields["reason"] = appErr.Detail("reason")
		}
		p.log.WithContext(ctx).Warn("Speech recognition failed", fields)
		return nil, err
	}

	res := toResult(results, req.Language, dur)
	fields["segments"] = len(res.Segments)
	fields["empty"] = res.Empty()
	p.log.WithContext(ctx).Debug("Speech recognised", fields)
	return res, nil
}

func (p *Provider) recognize(ctx context.Context, rc *speechpb.RecognitionConfig, audio *speechpb.RecognitionAudio) ([]*speechpb.SpeechRecognitionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	resp, err := p.client.Recognize(ctx, &speechpb.RecognizeRequest{Config: rc, Audio: audio})
	if err != nil {
		return nil, err
	}
	return resp.GetResults(), nil
}

func (p *Provider) longRunning(ctx context.Context, rc *speechpb.RecognitionConfig, audio *speechpb.RecognitionAudio) ([]*speechpb.SpeechRecognitionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.LongRunningTimeout)
	defer cancel()

	op, err := p.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{Config: rc, Audio: audio})
	if err != nil {
		return nil, err
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return resp.GetResults(), nil
}

func recognitionConfig(req transcription.Request) *speechpb.RecognitionConfig {
	rc := &speechpb.RecognitionConfig{
		Encoding:                   encoding(req.Encoding),
		SampleRateHertz:            int32(req.SampleRate),
		LanguageCode:               req.Language,
		Model:                      req.Model,
		EnableAutomaticPunctuation: req.Punctuation,
	}
	if req.Channels > 1 {
		rc.AudioChannelCount = int32(req.Channels)
	}
	return rc
}

func encoding(name string) speechpb.RecognitionConfig_AudioEncoding {
	switch name {
	case transcription.EncodingLinear16:
		return speechpb.RecognitionConfig_LINEAR16
	case transcription.EncodingOggOpus:
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// toResult keeps the first alternative of every result.
func toResult(results []*speechpb.SpeechRecognitionResult, language string, dur time.Duration) *transcription.Result {
	segments := make([]transcription.Segment, 0, len(results))
	for _, r := range results {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		segments = append(segments, transcription.Segment{
			Text:       alts[0].GetTranscript(),
			Confidence: float64(alts[0].GetConfidence()),
			End:        r.GetResultEndTime().AsDuration(),
		})
	}
	text, conf := transcription.Join(segments)
	if language == "" && len(results) > 0 {
		language = results[0].GetLanguageCode()
	}
	return &transcription.Result{
		Text:          text,
		Confidence:    conf,
		Language:      language,
		AudioDuration: dur,
		Segments:      segments,
	}
}

package app

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"

	"github.com/kbukum/voicescribe/audio"
	"github.com/kbukum/voicescribe/bootstrap"
	"github.com/kbukum/voicescribe/bot"
	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/database"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/server"
	"github.com/kbukum/voicescribe/telegram"
	"github.com/kbukum/voicescribe/transcription/google"
	"github.com/kbukum/voicescribe/usage"
	"github.com/kbukum/voicescribe/version"
)

// Services are the collaborators built at startup and handed to the bot
// explicitly.
type Services struct {
	Telegram      *telegram.Client
	Speech        *google.Provider
	Converter     *audio.Converter
	Database      *database.Component
	Usage         *usage.Store
	Metrics       *observability.Metrics
	Handler       *bot.Handler
	Dispatcher    *bot.Dispatcher
	Server        *server.Server
	Observability *observability.Component

	cfg *Config
}

// Option customises New.
type Option func(*options)

type options struct {
	speech []option.ClientOption
}

// WithSpeechClientOptions appends client options to the Speech-to-Text
// client, e.g. a connection to a local emulator.
func WithSpeechClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.speech = append(o.speech, opts...) }
}

// New builds every collaborator from a validated cfg. The credentials file
// is parsed and the bot token checked against the Bot API here; nothing is
// started.
func New(ctx context.Context, cfg *Config, log *logger.Logger, opts ...Option) (*Services, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	conv := audio.NewConverter(cfg.Audio, log)
	if !conv.IsAvailable(ctx) {
		log.Warn("ffmpeg not found in PATH, every conversion will fail", logger.Fields("binary", cfg.Audio.Binary))
	}

	speech, err := google.NewProvider(ctx, cfg.Google, log, o.speech...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	tg, err := telegram.NewClient(cfg.Telegram, log)
	if err != nil {
		_ = speech.Close()
		return nil, fmt.Errorf("telegram client: %w", err)
	}

	metrics, err := observability.NewMetrics(observability.Meter(ServiceName))
	if err != nil {
		_ = speech.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	db := database.NewComponent(cfg.Database, log)
	if cfg.Database.AutoMigrate {
		db.WithAutoMigrate(usage.Models()...)
	}
	store := usage.NewStore(db, usage.Limits{
		MaxAudioMinutes: cfg.Bot.MaxAudioMinutes,
		TopUsers:        cfg.Bot.TopUsers,
	}, log)

	handler := bot.NewHandler(bot.Deps{
		Messenger:   tg,
		Converter:   conv,
		Transcriber: speech,
		Usage:       store,
		Metrics:     metrics,
	}, cfg.Bot, log)

	ver := cfg.Version
	if ver == "" {
		ver = version.GetShortVersion()
	}

	return &Services{
		Telegram:      tg,
		Speech:        speech,
		Converter:     conv,
		Database:      db,
		Usage:         store,
		Metrics:       metrics,
		Handler:       handler,
		Dispatcher:    bot.NewDispatcher(tg, handler, log),
		Server:        server.New(cfg.Server, log),
		Observability: observability.NewComponent(cfg.Observability, ServiceName, ver, cfg.Environment, log),
		cfg:           cfg,
	}, nil
}

// Register adds the components in start order: telemetry, database,
// speech, HTTP server, dispatcher. The dispatcher starts last so no update
// is read before its dependencies are up.
func (s *Services) Register(reg *component.Registry) error {
	s.Server.RegisterEndpoints(ServiceName, reg, s.Usage)

	for _, c := range []component.Component{
		s.Observability,
		s.Database,
		google.NewComponent(s.Speech, s.cfg.Speech),
		server.NewComponent(s.Server),
		s.Dispatcher,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Close releases what New acquired when the services never reach the
// registry.
func (s *Services) Close() error {
	return s.Speech.Close()
}

// Run validates cfg, builds the services and runs them until SIGINT,
// SIGTERM or ctx cancellation. Configuration and startup errors are
// returned before any update is read.
func Run(ctx context.Context, cfg *Config, opts ...Option) error {
	a, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	a.Logger.Info("Configuration loaded", cfg.Summary())

	svc, err := New(ctx, cfg, a.Logger, opts...)
	if err != nil {
		return err
	}
	if err := svc.Register(a.Components); err != nil {
		return errors.Join(err, svc.Close())
	}

	a.OnReady(func(context.Context) error {
		a.Logger.Info("Bot is listening for voice messages", logger.Fields(
			"bot", svc.Telegram.BotUsername(),
			"language", cfg.Speech.Language,
		))
		return nil
	})
	return a.Run(ctx)
}

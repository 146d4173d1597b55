package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/voicescribe/audio"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/transcription"
	"github.com/kbukum/voicescribe/usage"
)

// Messenger is the chat transport. *telegram.Client satisfies it.
type Messenger interface {
	Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Converter turns a downloaded clip into LINEAR16 audio. *audio.Converter
// satisfies it.
type Converter interface {
	Convert(ctx context.Context, src []byte, hint string) (*audio.Buffer, error)
}

// UsageStore tracks processed audio against the global quota.
// *usage.Store satisfies it.
type UsageStore interface {
	CheckQuota(ctx context.Context) (float64, error)
	Record(ctx context.Context, rec usage.AudioRecord) error
	UserStats(ctx context.Context, userID int64) (usage.UserStats, error)
	GlobalStats(ctx context.Context) (usage.GlobalStats, error)
	LimitMinutes() float64
}

// Deps are the collaborators of a Handler. Usage and Metrics are optional.
type Deps struct {
	Messenger   Messenger
	Converter   Converter
	Transcriber transcription.Provider
	Usage       UsageStore
	Metrics     *observability.Metrics
}

// Handler turns one inbound voice message into exactly one reply. It holds
// no per-message state and is safe for concurrent use.
type Handler struct {
	messenger   Messenger
	converter   Converter
	transcriber transcription.Provider
	usage       UsageStore
	metrics     *observability.Metrics
	cfg         Config
	log         *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(deps Deps, cfg Config, log *logger.Logger) *Handler {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handler{
		messenger:   deps.Messenger,
		converter:   deps.Converter,
		transcriber: deps.Transcriber,
		usage:       deps.Usage,
		metrics:     deps.Metrics,
		cfg:         cfg,
		log:         log.WithComponent("bot"),
	}
}

// Stage names used in logs and metrics.
const (
	stageQuota      = "quota"
	stageDownload   = "download"
	stageConvert    = "convert"
	stageTranscribe = "transcribe"
)

// HandleVoice processes msg: quota check, placeholder, download, convert,
// transcribe, reply. It never returns an error; every failure becomes a
// notice to the chat and a log entry.
func (h *Handler) HandleVoice(ctx context.Context, msg VoiceMessage) Outcome {
	reqID := uuid.NewString()
	ctx = logger.ContextWithRequestID(ctx, reqID)
	if h.cfg.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.HandlerTimeout)
		defer cancel()
	}

	ctx, op := observability.StartOperation(ctx, observability.SpanHandleVoice, reqID, h.metrics,
		attribute.Int64(observability.AttrChatID, msg.ChatID),
		attribute.Int(observability.AttrMessageID, msg.MessageID),
	)
	log := h.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldChatID, msg.ChatID,
		logger.FieldMessageID, msg.MessageID,
		logger.FieldUserID, msg.UserID,
	))

	r := &run{h: h, msg: msg, op: op, log: log}
	outcome, err := r.safeProcess(ctx)
	op.End(ctx, string(outcome), err)

	fields := logger.Fields(
		logger.FieldOutcome, string(outcome),
		logger.FieldDuration, op.Duration().Milliseconds(),
	)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		fields[logger.FieldErrorCode] = string(apperrors.CodeOf(err))
		fields["stage"] = r.stage
		log.Error("Voice message failed", fields)
	} else {
		log.Info("Voice message handled", fields)
	}
	return outcome
}

// run carries the state of one HandleVoice call.
type run struct {
	h           *Handler
	msg         VoiceMessage
	op          *observability.Operation
	log         *logger.Logger
	placeholder int
	stage       string
	delivered   bool
}

// safeProcess runs process and turns a panic into the failure notice of
// the stage it happened in.
func (r *run) safeProcess(ctx context.Context) (outcome Outcome, err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		err = apperrors.Internal(fmt.Errorf("panic in %s: %v", r.stage, p))
		r.log.Error("Voice handler panic recovered", logger.Fields(
			logger.FieldError, err.Error(),
			"stack", string(debug.Stack()),
		))
		outcome = stageOutcome(r.stage)
		if !r.delivered {
			r.deliver(ctx, notice(outcome))
		}
	}()
	return r.process(ctx)
}

func stageOutcome(stage string) Outcome {
	switch stage {
	case stageDownload:
		return OutcomeDownloadFailed
	case stageConvert:
		return OutcomeConversionFailed
	default:
		return OutcomeTranscriptionFailed
	}
}

func (r *run) process(ctx context.Context) (Outcome, error) {
	h, msg := r.h, r.msg

	r.stage = stageQuota
	if h.usage != nil {
		if _, err := h.usage.CheckQuota(ctx); err != nil {
			if apperrors.HasCode(err, apperrors.ErrCodeQuotaExceeded) {
				r.deliver(ctx, quotaReachedNotice(h.usage.LimitMinutes()))
				return OutcomeQuotaExceeded, nil
			}
			r.log.Warn("Quota check failed, processing anyway", logger.ErrorFields("check_quota", err))
		}
	}

	if h.cfg.Placeholder {
		id, err := h.messenger.Reply(ctx, msg.ChatID, msg.MessageID, noticeProcessing)
		if err != nil {
			r.log.Warn("Failed to send placeholder", logger.ErrorFields("reply", err))
		} else {
			r.placeholder = id
		}
	}

	r.stage = stageDownload
	stageCtx, done := r.op.Stage(ctx, observability.SpanDownload, stageDownload)
	data, err := h.messenger.Download(stageCtx, msg.FileID)
	done(err)
	if err != nil {
		outcome := OutcomeDownloadFailed
		if apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
			outcome = OutcomeTooLarge
		}
		return r.fail(ctx, outcome, err)
	}

	r.stage = stageConvert
	stageCtx, done = r.op.Stage(ctx, observability.SpanConvert, stageConvert)
	buf, err := h.converter.Convert(stageCtx, data, msg.MimeType)
	done(err)
	if err != nil {
		return r.fail(ctx, OutcomeConversionFailed, err)
	}

	r.stage = stageTranscribe
	req := h.cfg.Speech.NewRequest(buf.Data, buf.SampleRate, buf.Channels)
	stageCtx, done = r.op.Stage(ctx, observability.SpanTranscribe, stageTranscribe)
	res, err := h.transcriber.Transcribe(stageCtx, req)
	done(err)
	if err != nil {
		return r.fail(ctx, OutcomeTranscriptionFailed, err)
	}

	h.metrics.RecordAudio(ctx, buf.Seconds())
	footer := r.recordUsage(ctx, buf.Seconds())

	if res.Empty() {
		r.deliver(ctx, withFooter(notice(OutcomeNoSpeech), footer))
		return OutcomeNoSpeech, nil
	}
	r.deliver(ctx, withFooter(res.Text, footer))
	return OutcomeReplied, nil
}

// fail sends the notice for outcome and returns err for logging.
func (r *run) fail(ctx context.Context, outcome Outcome, err error) (Outcome, error) {
	r.deliver(ctx, notice(outcome))
	return outcome, err
}

// recordUsage stores the processed duration and returns the quota footer
// once this message used up the remaining minutes.
func (r *run) recordUsage(ctx context.Context, seconds float64) string {
	u := r.h.usage
	if u == nil {
		return ""
	}
	err := u.Record(ctx, usage.AudioRecord{
		UserID:       r.msg.UserID,
		Username:     r.msg.Username,
		ChatID:       r.msg.ChatID,
		AudioSeconds: seconds,
	})
	if err != nil {
		r.log.Warn("Failed to record usage", logger.ErrorFields("record_usage", err))
		return ""
	}
	used, err := u.CheckQuota(ctx)
	if apperrors.HasCode(err, apperrors.ErrCodeQuotaExceeded) {
		return quotaNowReachedNotice(used, u.LimitMinutes())
	}
	return ""
}

// deliver puts text in front of the user exactly once: by editing the
// placeholder, or with a fresh reply when there is none or the edit fails.
// It is not bound by the handler deadline.
func (r *run) deliver(ctx context.Context, text string) {
	h, msg := r.h, r.msg
	r.delivered = true
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliverTimeout)
	defer cancel()

	if r.placeholder != 0 {
		err := h.messenger.Edit(ctx, msg.ChatID, r.placeholder, text)
		if err == nil {
			return
		}
		r.log.Warn("Failed to edit placeholder, sending a new message", logger.ErrorFields("edit", err))
	}
	if _, err := h.messenger.Reply(ctx, msg.ChatID, msg.MessageID, text); err != nil {
		r.log.Error("Failed to deliver reply", logger.ErrorFields("reply", err))
	}
}

const deliverTimeout = 30 * time.Second

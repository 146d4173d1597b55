package bot

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
)

const (
	textStart = "Hi! I am a voice message transcription bot. " +
		"Forward me voice messages, and I will transcribe them to text. " +
		"I specialize in Serbian language transcription."
	textHelp = "Forward me a voice message and I will transcribe it to text. " +
		"Currently optimized for Serbian language.\n\n" +
		"Use /stats to see your usage statistics.\n" +
		"Use /globalstats to see global usage statistics."
	textStatsUnavailable = "Usage statistics are not available right now."
)

// HandleCommand answers /start, /help, /stats and /globalstats. Unknown
// commands are ignored. It reports whether a reply was sent.
func (h *Handler) HandleCommand(ctx context.Context, cmd Command) bool {
	log := h.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldChatID, cmd.ChatID,
		"command", cmd.Name,
	))

	var text string
	switch cmd.Name {
	case "start":
		text = textStart
	case "help":
		text = textHelp
	case "stats":
		text = h.userStatsText(ctx, cmd, log)
	case "globalstats":
		text = h.globalStatsText(ctx, log)
	default:
		log.Debug("Ignoring unknown command")
		return false
	}

	if _, err := h.messenger.Reply(ctx, cmd.ChatID, cmd.MessageID, truncate(text, MaxMessageLength)); err != nil {
		log.Error("Failed to answer command", logger.ErrorFields("reply", err))
		return false
	}
	return true
}

func (h *Handler) userStatsText(ctx context.Context, cmd Command, log *logger.Logger) string {
	if h.usage == nil {
		return textStatsUnavailable
	}
	us, err := h.usage.UserStats(ctx, cmd.UserID)
	if err != nil {
		log.Warn("Failed to load user stats", logger.ErrorFields("user_stats", err))
		return textStatsUnavailable
	}
	used, quotaErr := h.usage.CheckQuota(ctx)
	limit := h.usage.LimitMinutes()

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Usage statistics for %s\n\n", nameOrUnknown(cmd.Username))
	fmt.Fprintf(&b, "🎤 Your total audio processed: %.2f minutes\n", us.TotalMinutes)
	if us.LastActivity != nil {
		fmt.Fprintf(&b, "🕒 Your last activity: %s\n", us.LastActivity.UTC().Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n")
	if limit > 0 {
		fmt.Fprintf(&b, "🌐 Global usage: %.2f/%s minutes", used, formatMinutes(limit))
	} else {
		fmt.Fprintf(&b, "🌐 Global usage: %.2f minutes", used)
	}
	if apperrors.HasCode(quotaErr, apperrors.ErrCodeQuotaExceeded) {
		b.WriteString("\n⚠️ Global limit reached. No more transcriptions available.")
	}
	return b.String()
}

func (h *Handler) globalStatsText(ctx context.Context, log *logger.Logger) string {
	if h.usage == nil {
		return textStatsUnavailable
	}
	gs, err := h.usage.GlobalStats(ctx)
	if err != nil {
		log.Warn("Failed to load global stats", logger.ErrorFields("global_stats", err))
		return textStatsUnavailable
	}

	var b strings.Builder
	b.WriteString("🌐 Global usage statistics\n\n")
	fmt.Fprintf(&b, "🎤 Total audio processed: %.2f minutes\n", gs.TotalMinutes)
	if gs.LimitMinutes > 0 {
		fmt.Fprintf(&b, "⏳ Remaining quota: %.2f minutes\n", gs.RemainingMinutes)
	}
	if gs.LastActivity != nil {
		fmt.Fprintf(&b, "🕒 Last activity: %s\n", gs.LastActivity.UTC().Format("2006-01-02 15:04:05"))
	}
	if gs.LimitMinutes > 0 {
		fmt.Fprintf(&b, "\nMaximum allowed audio processing is %s minutes in total.\n", formatMinutes(gs.LimitMinutes))
	}
	if len(gs.TopUsers) > 0 {
		b.WriteString("\nTop users:\n")
		for i, u := range gs.TopUsers {
			fmt.Fprintf(&b, "%d. %s: %.2f minutes\n", i+1, nameOrUnknown(u.Username), u.Minutes)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func nameOrUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

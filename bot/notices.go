package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the Bot API limit on message text, in characters.
const MaxMessageLength = 4096

const (
	noticeProcessing = "Processing your voice message..."
	noticeTruncated  = "…"
)

var notices = map[Outcome]string{
	OutcomeNoSpeech:            "I couldn't make out any speech in that voice message.",
	OutcomeConversionFailed:    "Sorry, I couldn't read the audio in that message. Please try recording it again.",
	OutcomeTranscriptionFailed: "Sorry, the transcription service is unavailable right now. Please try again later.",
	OutcomeDownloadFailed:      "Sorry, I couldn't download that voice message. Please try again.",
	OutcomeTooLarge:            "Sorry, that file is too large for me to download (the limit is 20 MB).",
}

// notice returns the user-facing text for a non-transcript outcome.
func notice(o Outcome) string {
	if text, ok := notices[o]; ok {
		return text
	}
	return notices[OutcomeTranscriptionFailed]
}

func quotaReachedNotice(limit float64) string {
	return fmt.Sprintf("⚠️ Sorry, the global audio processing limit has been reached (%s minutes). "+
		"No more transcriptions are available.", formatMinutes(limit))
}

func quotaNowReachedNotice(used, limit float64) string {
	return fmt.Sprintf("⚠️ Global limit reached: %.2f/%s minutes used.", used, formatMinutes(limit))
}

func formatMinutes(m float64) string {
	if m == float64(int64(m)) {
		return fmt.Sprintf("%d", int64(m))
	}
	return fmt.Sprintf("%.2f", m)
}

// withFooter appends footer to text as a separate paragraph and keeps the
// footer visible when the text has to be truncated.
func withFooter(text, footer string) string {
	if footer == "" {
		return truncate(text, MaxMessageLength)
	}
	room := MaxMessageLength - utf8.RuneCountInString(footer) - 2
	return truncate(text, room) + "\n\n" + footer
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit-1]), " ") + noticeTruncated
}

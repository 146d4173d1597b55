package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// VoiceMessage is one inbound voice or audio message.
type VoiceMessage struct {
	UpdateID  int
	MessageID int
	ChatID    int64
	UserID    int64
	// Username is the sender's @username, or the first name when unset.
	Username string
	FileID   string
	// Duration is the clip length in seconds as reported by Telegram.
	Duration int
	MimeType string
	FileSize int64
}

// VoiceFromUpdate extracts a VoiceMessage from u. Voice notes and audio
// attachments both qualify; anything else reports false.
func VoiceFromUpdate(u tgbotapi.Update) (VoiceMessage, bool) {
	m := u.Message
	if m == nil || m.Chat == nil {
		return VoiceMessage{}, false
	}

	vm := VoiceMessage{
		UpdateID:  u.UpdateID,
		MessageID: m.MessageID,
		ChatID:    m.Chat.ID,
	}
	if m.From != nil {
		vm.UserID = m.From.ID
		vm.Username = displayName(m.From)
	}

	switch {
	case m.Voice != nil:
		vm.FileID = m.Voice.FileID
		vm.Duration = m.Voice.Duration
		vm.MimeType = m.Voice.MimeType
		vm.FileSize = int64(m.Voice.FileSize)
	case m.Audio != nil:
		vm.FileID = m.Audio.FileID
		vm.Duration = m.Audio.Duration
		vm.MimeType = m.Audio.MimeType
		vm.FileSize = int64(m.Audio.FileSize)
	default:
		return VoiceMessage{}, false
	}
	return vm, vm.FileID != ""
}

// Command is one inbound bot command such as /stats.
type Command struct {
	Name      string
	MessageID int
	ChatID    int64
	UserID    int64
	Username  string
}

// CommandFromUpdate extracts a Command from u, with the name lower-cased
// and any @botname suffix removed.
func CommandFromUpdate(u tgbotapi.Update) (Command, bool) {
	m := u.Message
	if m == nil || m.Chat == nil || !m.IsCommand() {
		return Command{}, false
	}
	cmd := Command{
		Name:      strings.ToLower(m.Command()),
		MessageID: m.MessageID,
		ChatID:    m.Chat.ID,
	}
	if m.From != nil {
		cmd.UserID = m.From.ID
		cmd.Username = displayName(m.From)
	}
	return cmd, true
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}

// Outcome is the terminal state of one handled voice message.
type Outcome string

const (
	OutcomeReplied             Outcome = "replied"
	OutcomeNoSpeech            Outcome = "no_speech"
	OutcomeConversionFailed    Outcome = "conversion_failed"
	OutcomeTranscriptionFailed Outcome = "transcription_failed"
	OutcomeDownloadFailed      Outcome = "download_failed"
	OutcomeQuotaExceeded       Outcome = "quota_exceeded"
	OutcomeTooLarge            Outcome = "too_large"
)

// Failed reports whether the outcome is an error notice.
func (o Outcome) Failed() bool {
	return o != OutcomeReplied && o != OutcomeNoSpeech
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/voicescribe/audio"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/transcription"
	"github.com/kbukum/voicescribe/usage"
)

type sentMessage struct {
	chatID  int64
	id      int
	replyTo int
	text    string
}

// fakeMessenger records what each chat would see.
type fakeMessenger struct {
	mu        sync.Mutex
	nextID    int
	files     map[string][]byte
	downErr   map[string]error
	sent      []*sentMessage
	edits     int
	failReply map[string]bool // by text
	failEdit  bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		nextID:    1000,
		files:     make(map[string][]byte),
		downErr:   make(map[string]error),
		failReply: make(map[string]bool),
	}
}

func (m *fakeMessenger) Reply(_ context.Context, chatID int64, replyTo int, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReply[text] {
		return 0, errors.New("telegram: bad gateway")
	}
	m.nextID++
	m.sent = append(m.sent, &sentMessage{chatID: chatID, id: m.nextID, replyTo: replyTo, text: text})
	return m.nextID, nil
}

func (m *fakeMessenger) Edit(_ context.Context, chatID int64, messageID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEdit {
		return errors.New("telegram: message can't be edited")
	}
	for _, s := range m.sent {
		if s.chatID == chatID && s.id == messageID {
			s.text = text
			m.edits++
			return nil
		}
	}
	return fmt.Errorf("message %d not found", messageID)
}

func (m *fakeMessenger) Download(_ context.Context, fileID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.downErr[fileID]; err != nil {
		return nil, err
	}
	data, ok := m.files[fileID]
	if !ok {
		return nil, apperrors.DownloadFailed(fileID, errors.New("not found"))
	}
	return data, nil
}

// visible returns the texts chatID currently sees from the bot.
func (m *fakeMessenger) visible(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		if s.chatID == chatID {
			out = append(out, s.text)
		}
	}
	return out
}

// fakeConverter passes the payload through as PCM unless it is "corrupt"
// or "panic".
type fakeConverter struct{}

func (fakeConverter) Convert(ctx context.Context, src []byte, _ string) (*audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ConversionFailed("canceled", err)
	}
	if string(src) == "panic" {
		panic("decoder state corrupted")
	}
	if string(src) == "corrupt" {
		return nil, apperrors.ConversionFailed("ffmpeg exited with status 1", nil)
	}
	return &audio.Buffer{Data: src, SampleRate: 16000, Channels: 1}, nil
}

// fakeTranscriber returns the audio bytes as text. "silence" yields an
// empty result; failures are injected with failNext.
type fakeTranscriber struct {
	mu       sync.Mutex
	failNext int
	calls    int
	delay    func(req transcription.Request) time.Duration
	requests []transcription.Request
}

func (f *fakeTranscriber) Name() string                     { return "fake" }
func (f *fakeTranscriber) IsAvailable(context.Context) bool { return true }

func (f *fakeTranscriber) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	fail := f.failNext > 0
	if fail {
		f.failNext--
	}
	delay := f.delay
	f.mu.Unlock()

	if fail {
		return nil, apperrors.TranscriptionFailed(apperrors.ReasonNetwork, true, errors.New("connection refused"))
	}
	if delay != nil {
		select {
		case <-time.After(delay(req)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if string(req.Audio) == "silence" {
		return &transcription.Result{Language: req.Language}, nil
	}
	return &transcription.Result{Text: string(req.Audio), Confidence: 0.9, Language: req.Language}, nil
}

// fakeUsage is an in-memory UsageStore.
type fakeUsage struct {
	mu       sync.Mutex
	seconds  float64
	limit    float64
	records  []usage.AudioRecord
	checkErr error
}

func (u *fakeUsage) CheckQuota(context.Context) (float64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.checkErr != nil {
		return 0, u.checkErr
	}
	used := u.seconds / 60
	if u.limit > 0 && used >= u.limit {
		return used, apperrors.QuotaExceeded(used, u.limit)
	}
	return used, nil
}

func (u *fakeUsage) Record(_ context.Context, rec usage.AudioRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = append(u.records, rec)
	u.seconds += rec.AudioSeconds
	return nil
}

func (u *fakeUsage) UserStats(_ context.Context, userID int64) (usage.UserStats, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out usage.UserStats
	for _, r := range u.records {
		if r.UserID == userID {
			out.TotalMinutes += r.AudioSeconds / 60
		}
	}
	return out, nil
}

func (u *fakeUsage) GlobalStats(context.Context) (usage.GlobalStats, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	total := u.seconds / 60
	gs := usage.GlobalStats{TotalMinutes: total, LimitMinutes: u.limit}
	if u.limit > 0 {
		gs.RemainingMinutes = u.limit - total
	}
	for _, r := range u.records {
		gs.TopUsers = append(gs.TopUsers, usage.TopUser{Username: r.Username, Minutes: r.AudioSeconds / 60})
	}
	return gs, nil
}

func (u *fakeUsage) LimitMinutes() float64 { return u.limit }

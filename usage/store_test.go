package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/voicescribe/database"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
)

func newTestStore(t *testing.T, limits Limits) *Store {
	t.Helper()
	comp := database.NewComponent(database.Config{
		Enabled:     true,
		Path:        filepath.Join(t.TempDir(), "stats.db"),
		AutoMigrate: true,
		LogLevel:    "silent",
	}, logger.Nop()).WithAutoMigrate(Models()...)
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("database start: %v", err)
	}
	t.Cleanup(func() { _ = comp.Stop(context.Background()) })
	return NewStore(comp, limits, logger.Nop())
}

func TestStore_RecordAndUserStats(t *testing.T) {
	s := newTestStore(t, Limits{MaxAudioMinutes: 50})
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, secs := range []float64{30, 90} {
		err := s.Record(ctx, AudioRecord{
			UserID: 7, Username: "mika", ChatID: 70,
			AudioSeconds: secs, ProcessedAt: at.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	st, err := s.UserStats(ctx, 7)
	if err != nil {
		t.Fatalf("UserStats() failed: %v", err)
	}
	if st.TotalMinutes != 2 {
		t.Errorf("expected 2 minutes, got %v", st.TotalMinutes)
	}
	if st.LastActivity == nil || !st.LastActivity.Equal(at.Add(time.Minute)) {
		t.Errorf("expected last activity %v, got %v", at.Add(time.Minute), st.LastActivity)
	}

	none, err := s.UserStats(ctx, 8)
	if err != nil {
		t.Fatalf("UserStats() for unknown user failed: %v", err)
	}
	if none.TotalMinutes != 0 || none.LastActivity != nil {
		t.Errorf("expected empty stats for unknown user, got %+v", none)
	}
}

func TestStore_GlobalStats(t *testing.T) {
	s := newTestStore(t, Limits{MaxAudioMinutes: 10, TopUsers: 2})
	ctx := context.Background()

	records := []AudioRecord{
		{UserID: 1, Username: "ana", AudioSeconds: 60},
		{UserID: 2, Username: "boris", AudioSeconds: 180},
		{UserID: 3, Username: "ceca", AudioSeconds: 120},
		{UserID: 1, Username: "ana", AudioSeconds: 30},
	}
	for _, r := range records {
		if err := s.Record(ctx, r); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	g, err := s.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("GlobalStats() failed: %v", err)
	}
	if g.TotalMinutes != 6.5 {
		t.Errorf("expected 6.5 total minutes, got %v", g.TotalMinutes)
	}
	if g.RemainingMinutes != 3.5 {
		t.Errorf("expected 3.5 remaining minutes, got %v", g.RemainingMinutes)
	}
	if g.LimitReached {
		t.Error("limit should not be reached")
	}
	if len(g.TopUsers) != 2 {
		t.Fatalf("expected 2 top users, got %d", len(g.TopUsers))
	}
	if g.TopUsers[0].Username != "boris" || g.TopUsers[0].Minutes != 3 {
		t.Errorf("unexpected leader %+v", g.TopUsers[0])
	}
	if g.TopUsers[1].Username != "ceca" {
		t.Errorf("unexpected runner-up %+v", g.TopUsers[1])
	}
}

func TestStore_CheckQuota(t *testing.T) {
	s := newTestStore(t, Limits{MaxAudioMinutes: 1})
	ctx := context.Background()

	used, err := s.CheckQuota(ctx)
	if err != nil || used != 0 {
		t.Fatalf("expected fresh quota, got used=%v err=%v", used, err)
	}

	if err := s.Record(ctx, AudioRecord{UserID: 1, AudioSeconds: 61}); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	used, err = s.CheckQuota(ctx)
	if !apperrors.HasCode(err, apperrors.ErrCodeQuotaExceeded) {
		t.Fatalf("expected QUOTA_EXCEEDED, got %v", err)
	}
	if used <= 1 {
		t.Errorf("expected used above the limit, got %v", used)
	}
}

func TestStore_UnlimitedQuota(t *testing.T) {
	s := newTestStore(t, Limits{MaxAudioMinutes: 0})
	ctx := context.Background()

	if err := s.Record(ctx, AudioRecord{UserID: 1, AudioSeconds: 6000}); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if _, err := s.CheckQuota(ctx); err != nil {
		t.Errorf("zero limit should be unlimited, got %v", err)
	}
	g, _ := s.GlobalStats(ctx)
	if g.LimitReached {
		t.Error("unlimited quota should never be reached")
	}
}

type noDB struct{}

func (noDB) DB() *database.DB { return nil }

func TestStore_WithoutDatabase(t *testing.T) {
	s := NewStore(noDB{}, Limits{MaxAudioMinutes: 50}, logger.Nop())
	ctx := context.Background()

	if s.Enabled() {
		t.Error("store without a database should report disabled")
	}
	if err := s.Record(ctx, AudioRecord{UserID: 1, AudioSeconds: 10}); err != nil {
		t.Errorf("Record() without database should be a no-op, got %v", err)
	}
	if _, err := s.CheckQuota(ctx); err != nil {
		t.Errorf("CheckQuota() without database should pass, got %v", err)
	}
	g, err := s.GlobalStats(ctx)
	if err != nil || g.RemainingMinutes != 50 {
		t.Errorf("unexpected global stats %+v err=%v", g, err)
	}
}

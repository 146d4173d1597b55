package usage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/voicescribe/database"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
)

// DefaultTopUsers is the leaderboard size reported by GlobalStats.
const DefaultTopUsers = 5

// Source yields the open database, or nil while usage tracking is off.
// *database.Component satisfies it.
type Source interface {
	DB() *database.DB
}

// Limits configures the global audio quota.
type Limits struct {
	// MaxAudioMinutes caps the total audio processed across all users.
	// Zero means unlimited.
	MaxAudioMinutes float64
	// TopUsers is the leaderboard size; defaults to DefaultTopUsers.
	TopUsers int
}

// Store records processed audio and answers quota and stats queries.
type Store struct {
	src    Source
	limits Limits
	log    *logger.Logger
	now    func() time.Time
}

// NewStore creates a store on src.
func NewStore(src Source, limits Limits, log *logger.Logger) *Store {
	if limits.TopUsers <= 0 {
		limits.TopUsers = DefaultTopUsers
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Store{
		src:    src,
		limits: limits,
		log:    log.WithComponent("usage"),
		now:    time.Now,
	}
}

// LimitMinutes returns the configured global quota; zero means unlimited.
func (s *Store) LimitMinutes() float64 { return s.limits.MaxAudioMinutes }

// Enabled reports whether a database is available.
func (s *Store) Enabled() bool { return s.db() != nil }

func (s *Store) db() *database.DB {
	if s.src == nil {
		return nil
	}
	return s.src.DB()
}

// Record stores one processed message and adds its duration to the global
// total in a single transaction. Without a database it is a no-op.
func (s *Store) Record(ctx context.Context, rec AudioRecord) error {
	db := s.db()
	if db == nil {
		return nil
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = s.now().UTC()
	}
	rec.ID = 0

	err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_audio_seconds": gorm.Expr("total_audio_seconds + ?", rec.AudioSeconds),
				"last_updated":        rec.ProcessedAt,
			}),
		}).Create(&GlobalStat{
			ID:                globalStatID,
			TotalAudioSeconds: rec.AudioSeconds,
			LastUpdated:       rec.ProcessedAt,
		}).Error
	})
	if err != nil {
		return database.FromDatabase(err, "record_usage")
	}

	s.log.WithContext(ctx).Debug("Usage recorded", map[string]interface{}{
		logger.FieldUserID: rec.UserID,
		"audio_seconds":    rec.AudioSeconds,
	})
	return nil
}

// UsedMinutes returns the global total of processed audio in minutes.
func (s *Store) UsedMinutes(ctx context.Context) (float64, error) {
	db := s.db()
	if db == nil {
		return 0, nil
	}
	var stat GlobalStat
	err := db.WithContext(ctx).Where("id = ?", globalStatID).Take(&stat).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, database.FromDatabase(err, "used_minutes")
	}
	return stat.TotalAudioSeconds / 60, nil
}

// CheckQuota returns the minutes used so far, and a QUOTA_EXCEEDED error
// once they reach the configured limit.
func (s *Store) CheckQuota(ctx context.Context) (float64, error) {
	used, err := s.UsedMinutes(ctx)
	if err != nil {
		return 0, err
	}
	if s.limits.MaxAudioMinutes > 0 && used >= s.limits.MaxAudioMinutes {
		return used, apperrors.QuotaExceeded(used, s.limits.MaxAudioMinutes)
	}
	return used, nil
}

// UserStats returns the usage of one user.
func (s *Store) UserStats(ctx context.Context, userID int64) (UserStats, error) {
	var out UserStats
	db := s.db()
	if db == nil {
		return out, nil
	}

	var total float64
	err := db.WithContext(ctx).Model(&AudioRecord{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(audio_seconds), 0)").
		Scan(&total).Error
	if err != nil {
		return out, database.FromDatabase(err, "user_stats")
	}
	out.TotalMinutes = total / 60

	var last AudioRecord
	err = db.WithContext(ctx).Where("user_id = ?", userID).Order("processed_at DESC").Take(&last).Error
	switch {
	case err == nil:
		out.LastActivity = &last.ProcessedAt
	case !database.IsNotFoundError(err):
		return out, database.FromDatabase(err, "user_stats")
	}
	return out, nil
}

// GlobalStats returns the global total, the remaining quota and the top
// users by processed audio.
func (s *Store) GlobalStats(ctx context.Context) (GlobalStats, error) {
	out := GlobalStats{LimitMinutes: s.limits.MaxAudioMinutes, TopUsers: []TopUser{}}
	db := s.db()
	if db == nil {
		out.RemainingMinutes = s.limits.MaxAudioMinutes
		return out, nil
	}

	var stat GlobalStat
	err := db.WithContext(ctx).Where("id = ?", globalStatID).Take(&stat).Error
	switch {
	case err == nil:
		out.TotalMinutes = stat.TotalAudioSeconds / 60
		out.LastActivity = &stat.LastUpdated
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return out, database.FromDatabase(err, "global_stats")
	}

	var rows []struct {
		Username string
		Seconds  float64
	}
	err = db.WithContext(ctx).Model(&AudioRecord{}).
		Select("MAX(username) AS username, SUM(audio_seconds) AS seconds").
		Group("user_id").
		Order("seconds DESC").
		Limit(s.limits.TopUsers).
		Scan(&rows).Error
	if err != nil {
		return out, database.FromDatabase(err, "global_stats")
	}
	for _, r := range rows {
		out.TopUsers = append(out.TopUsers, TopUser{Username: r.Username, Minutes: r.Seconds / 60})
	}

	if s.limits.MaxAudioMinutes > 0 {
		out.RemainingMinutes = s.limits.MaxAudioMinutes - out.TotalMinutes
		if out.RemainingMinutes < 0 {
			out.RemainingMinutes = 0
		}
		out.LimitReached = out.TotalMinutes >= s.limits.MaxAudioMinutes
	}
	return out, nil
}

package usage

import "time"

// globalStatID is the primary key of the single GlobalStat row.
const globalStatID = 1

// AudioRecord is one processed voice message.
type AudioRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"index;not null" json:"user_id"`
	Username     string    `json:"username"`
	ChatID       int64     `json:"chat_id"`
	AudioSeconds float64   `gorm:"not null" json:"audio_seconds"`
	ProcessedAt  time.Time `gorm:"index;not null" json:"processed_at"`
}

// TableName keeps the table name stable across renames of the Go type.
func (AudioRecord) TableName() string { return "audio_stats" }

// GlobalStat is the singleton running total of processed audio.
type GlobalStat struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	TotalAudioSeconds float64   `gorm:"not null;default:0" json:"total_audio_seconds"`
	LastUpdated       time.Time `json:"last_updated"`
}

func (GlobalStat) TableName() string { return "global_stats" }

// Models lists the tables the store needs, for database auto-migration.
func Models() []interface{} {
	return []interface{}{&AudioRecord{}, &GlobalStat{}}
}

// UserStats summarises one user's usage.
type UserStats struct {
	TotalMinutes float64    `json:"total_minutes"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// TopUser is one row of the global leaderboard.
type TopUser struct {
	Username string  `json:"username"`
	Minutes  float64 `json:"minutes"`
}

// GlobalStats summarises usage across all users.
type GlobalStats struct {
	TotalMinutes     float64    `json:"total_minutes"`
	LimitMinutes     float64    `json:"limit_minutes"`
	RemainingMinutes float64    `json:"remaining_minutes"`
	LimitReached     bool       `json:"limit_reached"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
	TopUsers         []TopUser  `json:"top_users"`
}

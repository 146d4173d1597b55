package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/voicescribe/component"
	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
)

type note struct {
	ID   uint `gorm:"primaryKey"`
	Text string
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Enabled:     true,
		Path:        filepath.Join(t.TempDir(), "nested", "stats.db"),
		AutoMigrate: true,
		LogLevel:    "silent",
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Path != "data/stats.db" {
		t.Errorf("expected default path data/stats.db, got %q", cfg.Path)
	}
	if cfg.MaxOpenConns != 1 {
		t.Errorf("expected a single connection by default, got %d", cfg.MaxOpenConns)
	}
	if cfg.BusyTimeout != 5*time.Second {
		t.Errorf("expected 5s busy timeout, got %v", cfg.BusyTimeout)
	}
	if !strings.Contains(cfg.DSN(), "_busy_timeout=5000") {
		t.Errorf("expected busy timeout in DSN, got %q", cfg.DSN())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled skips checks", Config{}, false},
		{"valid", Config{Enabled: true, Path: "x.db", MaxOpenConns: 1, MaxRetries: 1, LogLevel: "warn"}, false},
		{"missing path", Config{Enabled: true, MaxOpenConns: 1, MaxRetries: 1, LogLevel: "warn"}, true},
		{"bad log level", Config{Enabled: true, Path: "x.db", MaxOpenConns: 1, MaxRetries: 1, LogLevel: "loud"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	cfg := testConfig(t)
	db, err := Open(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(cfg.Path)); err != nil {
		t.Errorf("expected database dir to exist: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		t.Errorf("PingContext() failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() should be a no-op, got %v", err)
	}
}

func TestOpen_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t)
	cfg.MaxRetries = 3
	if _, err := Open(ctx, cfg, logger.Nop()); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestDB_WithTransaction(t *testing.T) {
	db, err := Open(context.Background(), testConfig(t), logger.Nop())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&note{}); err != nil {
		t.Fatalf("AutoMigrate() failed: %v", err)
	}

	ctx := context.Background()
	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&note{Text: "rolled back"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&note{Text: "kept"}).Error
	})
	if err != nil {
		t.Fatalf("WithTransaction() failed: %v", err)
	}

	var count int64
	db.WithContext(ctx).Model(&note{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 committed row, got %d", count)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent(testConfig(t), logger.Nop()).WithAutoMigrate(&note{})
	ctx := context.Background()

	if comp.DB() != nil {
		t.Error("DB() should be nil before Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start, got %s", h.Status)
	}

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !comp.DB().GormDB.Migrator().HasTable(&note{}) {
		t.Error("expected auto-migrated table")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after Start, got %s (%s)", h.Status, h.Message)
	}
	if d := comp.Describe(); !strings.HasPrefix(d.Details, "sqlite ") {
		t.Errorf("unexpected description %q", d.Details)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if comp.DB() != nil {
		t.Error("DB() should be nil after Stop")
	}
}

func TestComponent_Disabled(t *testing.T) {
	comp := NewComponent(Config{Enabled: false}, logger.Nop())
	ctx := context.Background()

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() on disabled component failed: %v", err)
	}
	if comp.DB() != nil {
		t.Error("disabled component should not open a database")
	}
	h := comp.Health(ctx)
	if h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestFromDatabase(t *testing.T) {
	if FromDatabase(nil, "op") != nil {
		t.Error("expected nil for nil error")
	}

	busy := FromDatabase(errors.New("database is locked"), "record")
	if busy.Code != apperrors.ErrCodeDatabaseError || !busy.Retryable {
		t.Errorf("expected retryable DATABASE_ERROR, got %+v", busy)
	}
	if busy.Detail("operation") != "record" {
		t.Errorf("expected operation detail, got %q", busy.Detail("operation"))
	}

	other := FromDatabase(errors.New("no such table"), "record")
	if other.Retryable {
		t.Error("schema errors should not be retryable")
	}

	if !IsNotFoundError(gorm.ErrRecordNotFound) {
		t.Error("expected record-not-found detection")
	}
}

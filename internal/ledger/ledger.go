package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/postpilot/composer/internal/submit"
)

// Entry is one persisted dispatch outcome. The ledger is append-only; a
// retried bucket produces a new row rather than rewriting the old one.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	BatchID   string    `gorm:"index" json:"batch_id"`
	BrandID   string    `json:"brand_id"`
	Platforms string    `json:"platforms"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Entry) TableName() string { return "dispatches" }

// Ledger records dispatched submission buckets in a local sqlite database.
// It implements submit.Recorder.
type Ledger struct {
	db *gorm.DB
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}
	return filepath.Join(home, ".composer", "ledger.db"), nil
}

func Open(path string) (*Ledger, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("ledger path is required")
	}
	if dir := filepath.Dir(trimmed); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(trimmed), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// RecordDispatch appends one bucket outcome.
func (l *Ledger) RecordDispatch(ctx context.Context, record submit.DispatchRecord) error {
	if l == nil || l.db == nil {
		return errors.New("ledger is not open")
	}
	entry := Entry{
		BatchID:   record.BatchID,
		BrandID:   record.BrandID,
		Platforms: strings.Join(record.Platforms, ","),
		Status:    record.Status,
		Error:     record.Error,
		CreatedAt: record.CreatedAt,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("ledger is not open")
	}
	if limit <= 0 {
		limit = 20
	}
	var entries []Entry
	err := l.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	return entries, nil
}

// ForBatch returns every bucket outcome recorded for one batch id.
func (l *Ledger) ForBatch(ctx context.Context, batchID string) ([]Entry, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("ledger is not open")
	}
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return nil, errors.New("batch id is required")
	}
	var entries []Entry
	err := l.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list batch dispatches: %w", err)
	}
	return entries, nil
}

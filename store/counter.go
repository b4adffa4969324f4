package store

import (
	"context"
	"fmt"
	"time"

	"catalog-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultPadding = 5

// CounterStore issues atomic per-key sequence numbers. Run it on a
// transaction handle to make the number part of the caller's unit of work.
type CounterStore struct {
	db *gorm.DB
}

func NewCounterStore(db *gorm.DB) *CounterStore {
	return &CounterStore{db: db}
}

func (s *CounterStore) WithTx(tx *gorm.DB) *CounterStore {
	return &CounterStore{db: tx}
}

// Next increments the sequence for key and returns the new value. The first
// call for a key returns 1. prefix and padding are only stored on first use.
func (s *CounterStore) Next(ctx context.Context, key, prefix string, padding int) (int64, error) {
	if padding < 1 || padding > 12 {
		padding = DefaultPadding
	}

	counter := models.Counter{Key: key, Prefix: prefix, Padding: padding, NextNumber: 1}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "seq_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"next_number": gorm.Expr("counters.next_number + 1"),
			"updated_at":  time.Now(),
		}),
	}).Create(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}

	var current models.Counter
	if err := s.db.WithContext(ctx).Where("seq_key = ?", key).First(&current).Error; err != nil {
		return 0, fmt.Errorf("read counter %s: %w", key, err)
	}
	return current.NextNumber, nil
}

// NextID returns the next formatted id for key, e.g. A00001.
func (s *CounterStore) NextID(ctx context.Context, key, prefix string, padding int) (string, error) {
	n, err := s.Next(ctx, key, prefix, padding)
	if err != nil {
		return "", err
	}
	if padding < 1 || padding > 12 {
		padding = DefaultPadding
	}
	return FormatSequence(prefix, n, padding), nil
}

func FormatSequence(prefix string, n int64, padding int) string {
	return fmt.Sprintf("%s%0*d", prefix, padding, n)
}

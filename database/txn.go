package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"catalog-backend/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TxFunc runs inside a transaction. It may be invoked more than once when a
// serialization failure is retried, so it must not depend on state mutated
// by a previous attempt.
type TxFunc func(tx *gorm.DB) error

// TxRunner executes units of work in a single database transaction. Commit
// or rollback happens exactly once per attempt, including when fn panics.
type TxRunner struct {
	DB         *gorm.DB
	Log        *zap.Logger
	Isolation  sql.IsolationLevel
	Timeout    time.Duration
	MaxRetries int
}

func NewTxRunner(db *gorm.DB, log *zap.Logger) *TxRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &TxRunner{
		DB:         db,
		Log:        log,
		Isolation:  sql.LevelDefault,
		Timeout:    10 * time.Second,
		MaxRetries: 3,
	}
}

func (r *TxRunner) Run(ctx context.Context, fn TxFunc) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var opts []*sql.TxOptions
	if r.Isolation != sql.LevelDefault {
		opts = append(opts, &sql.TxOptions{Isolation: r.Isolation})
	}

	for attempt := 1; ; attempt++ {
		err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(tx)
		}, opts...)
		if err == nil {
			return nil
		}

		if IsRetryable(err) && attempt <= r.MaxRetries && ctx.Err() == nil {
			r.Log.Warn("retrying transaction", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Status < 500 {
			r.Log.Debug("transaction rolled back", zap.String("code", string(appErr.Code)))
		} else {
			r.Log.Warn("transaction rolled back", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}
}

// IsRetryable reports postgres serialization failures and deadlocks.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// ParseIsolation maps a TX_ISOLATION value to a sql.IsolationLevel.
func ParseIsolation(s string) sql.IsolationLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "serializable":
		return sql.LevelSerializable
	case "repeatable_read", "repeatable-read", "snapshot":
		return sql.LevelRepeatableRead
	case "read_committed", "read-committed":
		return sql.LevelReadCommitted
	default:
		return sql.LevelDefault
	}
}

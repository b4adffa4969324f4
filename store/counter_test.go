package store

import (
	"context"
	"testing"

	"catalog-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCounterNextIsSequentialPerKey(t *testing.T) {
	s := NewCounterStore(newTestDB(t))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.Next(ctx, "USER:ADMIN", "A", 5)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := s.Next(ctx, "USER:EMPLOYEE", "E", 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got, "independent keys have independent sequences")
}

func TestCounterNextIDFormatsWithPadding(t *testing.T) {
	s := NewCounterStore(newTestDB(t))
	ctx := context.Background()

	id, err := s.NextID(ctx, "USER:ADMIN", "A", 5)
	require.NoError(t, err)
	assert.Equal(t, "A00001", id)

	id, err = s.NextID(ctx, "USER:ADMIN", "A", 5)
	require.NoError(t, err)
	assert.Equal(t, "A00002", id)
}

func TestCounterRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	s := NewCounterStore(db)
	ctx := context.Background()

	_, err := s.Next(ctx, "SKU:M1", "", 5)
	require.NoError(t, err)

	_ = db.Transaction(func(tx *gorm.DB) error {
		_, err := s.WithTx(tx).Next(ctx, "SKU:M1", "", 5)
		require.NoError(t, err)
		return assert.AnError
	})

	var c models.Counter
	require.NoError(t, db.Where("seq_key = ?", "SKU:M1").First(&c).Error)
	assert.EqualValues(t, 1, c.NextNumber)
}

func TestFormatSequence(t *testing.T) {
	assert.Equal(t, "E00042", FormatSequence("E", 42, 5))
	assert.Equal(t, "123456", FormatSequence("", 123456, 5))
}

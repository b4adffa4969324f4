package store

import (
	"context"
	"fmt"
	"testing"

	"catalog-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Counter{}, &models.Inventory{}, &models.Product{}))
	return db
}

// insertNode prepares and inserts a category the same way the service does.
func insertNode(t *testing.T, s *CategoryStore, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	node := &models.Category{Name: name, ParentID: parentID, IsActive: true}
	require.NoError(t, s.Prepare(context.Background(), node, false))
	require.NoError(t, s.Insert(context.Background(), node))
	return node
}

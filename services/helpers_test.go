package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"catalog-backend/database"
	"catalog-backend/dtos"
	"catalog-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRunner(t *testing.T) *database.TxRunner {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return database.NewTxRunner(db, zap.NewNop())
}

// memoryCache is a TreeCache that records how it was used. Like the redis
// cache it keys entries by generation.
type memoryCache struct {
	mu            sync.Mutex
	gen           int64
	trees         map[string][]*models.Category
	hits          int
	invalidations int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{trees: map[string][]*models.Category{}}
}

func memoryKey(gen int64, onlyActive bool) string {
	return fmt.Sprintf("%d:%t", gen, onlyActive)
}

func (m *memoryCache) GetTree(_ context.Context, onlyActive bool) ([]*models.Category, int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roots, ok := m.trees[memoryKey(m.gen, onlyActive)]
	if ok {
		m.hits++
	}
	return roots, m.gen, ok
}

func (m *memoryCache) SetTree(_ context.Context, onlyActive bool, gen int64, roots []*models.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trees[memoryKey(gen, onlyActive)] = roots
}

func (m *memoryCache) Invalidate(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.invalidations++
}

func newTestCategoryService(t *testing.T) (*CategoryService, *memoryCache) {
	t.Helper()
	cache := newMemoryCache()
	return NewCategoryService(newTestRunner(t), cache, zap.NewNop()), cache
}

func mustCreate(t *testing.T, svc *CategoryService, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	node, err := svc.Create(context.Background(), dtos.CreateCategoryRequest{Name: name, ParentID: parentID}, nil)
	require.NoError(t, err)
	return node
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

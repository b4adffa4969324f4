package store

import (
	"context"
	"testing"

	"catalog-backend/apperrors"
	"catalog-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareDerivesSlugTreeFieldsAndSortOrder(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	electronics := insertNode(t, s, "Electronics", nil)
	assert.Equal(t, "electronics", electronics.Slug)
	assert.Equal(t, "/electronics", electronics.Path)
	assert.Equal(t, 1, electronics.SortOrder)

	toasters := insertNode(t, s, "Toasters", &electronics.ID)
	assert.Equal(t, 1, toasters.Level)
	assert.Equal(t, "/electronics/toasters", toasters.Path)
	assert.Equal(t, []uuid.UUID{electronics.ID}, []uuid.UUID(toasters.Ancestors))
	assert.Equal(t, 1, toasters.SortOrder, "first child starts at 1")

	kettles := insertNode(t, s, "Kettles", &electronics.ID)
	assert.Equal(t, 2, kettles.SortOrder)

	next, err := s.GetNextSortOrder(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestPrepareNormalizesExplicitSlugAndKeepsExplicitSortOrder(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))

	node := &models.Category{Name: "Garden", Slug: "  Outdoor & Garden ", SortOrder: 9}
	require.NoError(t, s.Prepare(context.Background(), node, true))

	assert.Equal(t, "outdoor-garden", node.Slug)
	assert.Equal(t, 9, node.SortOrder)
}

func TestPrepareRejectsEmptySlug(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))

	err := s.Prepare(context.Background(), &models.Category{Name: "???"}, false)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestIsNameTakenIsCaseInsensitiveAndSiblingScoped(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	root := insertNode(t, s, "Electronics", nil)
	child := insertNode(t, s, "Audio", &root.ID)

	taken, err := s.IsNameTaken(ctx, "AUDIO", &root.ID, nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.IsNameTaken(ctx, "audio", nil, nil)
	require.NoError(t, err)
	assert.False(t, taken, "same name under another parent is allowed")

	taken, err = s.IsNameTaken(ctx, "Audio", &root.ID, &child.ID)
	require.NoError(t, err)
	assert.False(t, taken, "the node itself is excluded")
}

func TestIsSlugTaken(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()
	node := insertNode(t, s, "Books", nil)

	taken, err := s.IsSlugTaken(ctx, "books", nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.IsSlugTaken(ctx, "books", &node.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestHasChildrenAndListChildren(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	root := insertNode(t, s, "Home", nil)
	has, err := s.HasChildren(ctx, root.ID)
	require.NoError(t, err)
	assert.False(t, has)

	insertNode(t, s, "Lighting", &root.ID)
	hidden := insertNode(t, s, "Rugs", &root.ID)
	require.NoError(t, s.db.Model(hidden).Update("is_active", false).Error)

	has, err = s.HasChildren(ctx, root.ID)
	require.NoError(t, err)
	assert.True(t, has)

	all, err := s.ListChildren(ctx, &root.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Lighting", all[0].Name)

	active, err := s.ListChildren(ctx, &root.ID, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestShiftSortOrders(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	a := insertNode(t, s, "A", nil) // 1
	b := insertNode(t, s, "B", nil) // 2
	c := insertNode(t, s, "C", nil) // 3

	n, err := s.ShiftSortOrders(ctx, nil, 2, &c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	reloadA, _ := s.FindByID(ctx, a.ID, false)
	reloadB, _ := s.FindByID(ctx, b.ID, false)
	reloadC, _ := s.FindByID(ctx, c.ID, false)
	assert.Equal(t, 1, reloadA.SortOrder)
	assert.Equal(t, 3, reloadB.SortOrder)
	assert.Equal(t, 3, reloadC.SortOrder, "excluded node is untouched")
}

func TestReconcileRecomputesAfterMove(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	electronics := insertNode(t, s, "Electronics", nil)
	kitchen := insertNode(t, s, "Kitchen", nil)
	toasters := insertNode(t, s, "Toasters", &electronics.ID)

	toasters.ParentID = &kitchen.ID
	require.NoError(t, s.db.Model(toasters).Update("parent_id", kitchen.ID).Error)
	require.NoError(t, s.Reconcile(ctx, toasters))

	reloaded, err := s.FindByID(ctx, toasters.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "/kitchen/toasters", reloaded.Path)
	assert.Equal(t, []uuid.UUID{kitchen.ID}, []uuid.UUID(reloaded.Ancestors))
	assert.Equal(t, 1, reloaded.Level)
}

func TestRecomputeDescendants(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	electronics := insertNode(t, s, "Electronics", nil)
	kitchen := insertNode(t, s, "Kitchen", &electronics.ID)
	toasters := insertNode(t, s, "Toasters", &kitchen.ID)
	slots := insertNode(t, s, "Four Slot", &toasters.ID)

	// move kitchen to root
	kitchen.ParentID = nil
	require.NoError(t, s.db.Model(kitchen).Update("parent_id", nil).Error)
	require.NoError(t, s.Reconcile(ctx, kitchen))

	n, err := s.RecomputeDescendants(ctx, kitchen)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	reloaded, _ := s.FindByID(ctx, slots.ID, false)
	assert.Equal(t, "/kitchen/toasters/four-slot", reloaded.Path)
	assert.Equal(t, 2, reloaded.Level)
	assert.Equal(t, []uuid.UUID{kitchen.ID, toasters.ID}, []uuid.UUID(reloaded.Ancestors))
}

func TestCountReferences(t *testing.T) {
	db := newTestDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	cat := insertNode(t, s, "Phones", nil)
	n, err := s.CountReferences(ctx, cat.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.Create(&models.Inventory{SKU: "X-1", Name: "X", ModelCode: "M1", CategoryID: cat.ID, IsActive: true}).Error)
	n, err = s.CountReferences(ctx, cat.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFindParentMissingIsNil(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	parent, err := s.FindParent(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, parent)
}

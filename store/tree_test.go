package store

import (
	"context"
	"errors"
	"testing"

	"catalog-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestComputeTreeFieldsRoot(t *testing.T) {
	node := &models.Category{Slug: "electronics"}
	require.NoError(t, ComputeTreeFields(context.Background(), node, MapLookup{}))

	assert.Equal(t, 0, node.Level)
	assert.Equal(t, "/electronics", node.Path)
	assert.NotNil(t, node.Ancestors)
	assert.Empty(t, node.Ancestors)
}

func TestComputeTreeFieldsChild(t *testing.T) {
	root := &models.Category{ID: uuid.New(), Slug: "electronics", Path: "/electronics", Ancestors: datatypes.JSONSlice[uuid.UUID]{}}
	mid := &models.Category{ID: uuid.New(), Slug: "kitchen", Path: "/electronics/kitchen", Level: 1,
		Ancestors: datatypes.JSONSlice[uuid.UUID]{root.ID}}
	lookup := MapLookup{root.ID: root, mid.ID: mid}

	node := &models.Category{Slug: "toasters", ParentID: &mid.ID}
	require.NoError(t, ComputeTreeFields(context.Background(), node, lookup))

	assert.Equal(t, 2, node.Level)
	assert.Equal(t, "/electronics/kitchen/toasters", node.Path)
	assert.Equal(t, []uuid.UUID{root.ID, mid.ID}, []uuid.UUID(node.Ancestors))
	assert.Len(t, mid.Ancestors, 1, "parent ancestors must not be aliased")
}

func TestComputeTreeFieldsMissingParentFallsBackToRoot(t *testing.T) {
	ghost := uuid.New()
	node := &models.Category{Slug: "orphan", ParentID: &ghost, Level: 4, Path: "/stale/orphan"}
	require.NoError(t, ComputeTreeFields(context.Background(), node, MapLookup{}))

	assert.Equal(t, 0, node.Level)
	assert.Equal(t, "/orphan", node.Path)
	assert.Empty(t, node.Ancestors)
}

func TestComputeTreeFieldsCollapsesSeparators(t *testing.T) {
	parent := &models.Category{ID: uuid.New(), Slug: "a", Path: "/a/"}
	node := &models.Category{Slug: "b", ParentID: &parent.ID}
	require.NoError(t, ComputeTreeFields(context.Background(), node, MapLookup{parent.ID: parent}))

	assert.Equal(t, "/a/b", node.Path)
}

type failingLookup struct{}

func (failingLookup) FindParent(context.Context, uuid.UUID) (*models.Category, error) {
	return nil, errors.New("db down")
}

func TestComputeTreeFieldsPropagatesLookupError(t *testing.T) {
	parent := uuid.New()
	node := &models.Category{Slug: "x", ParentID: &parent}
	assert.Error(t, ComputeTreeFields(context.Background(), node, failingLookup{}))
}

package store

import (
	"context"
	"regexp"

	"catalog-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ParentLookup resolves a parent category. A missing parent is reported as
// (nil, nil), not as an error.
type ParentLookup interface {
	FindParent(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// MapLookup resolves parents from categories already held in memory.
type MapLookup map[uuid.UUID]*models.Category

func (m MapLookup) FindParent(_ context.Context, id uuid.UUID) (*models.Category, error) {
	return m[id], nil
}

var repeatedSeparators = regexp.MustCompile(`/{2,}`)

// ComputeTreeFields derives Level, Ancestors and Path of node from its
// parent. A parent that cannot be found leaves node with root values;
// existence is enforced by callers before they get here.
func ComputeTreeFields(ctx context.Context, node *models.Category, lookup ParentLookup) error {
	node.Level = 0
	node.Ancestors = datatypes.JSONSlice[uuid.UUID]{}
	node.Path = repeatedSeparators.ReplaceAllString("/"+node.Slug, "/")

	if node.ParentID == nil {
		return nil
	}

	parent, err := lookup.FindParent(ctx, *node.ParentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return nil
	}

	ancestors := make(datatypes.JSONSlice[uuid.UUID], 0, len(parent.Ancestors)+1)
	ancestors = append(ancestors, parent.Ancestors...)
	ancestors = append(ancestors, parent.ID)

	node.Level = parent.Level + 1
	node.Ancestors = ancestors
	node.Path = repeatedSeparators.ReplaceAllString(parent.Path+"/"+node.Slug, "/")
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-backend/apperrors"
	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryStore owns persistence of the category tree and the recomputation
// of derived tree fields. Bind it to a transaction with WithTx for writes.
type CategoryStore struct {
	db *gorm.DB
}

func NewCategoryStore(db *gorm.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) WithTx(tx *gorm.DB) *CategoryStore {
	return &CategoryStore{db: tx}
}

func (s *CategoryStore) siblings(ctx context.Context, parentID *uuid.UUID) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Category{})
	if parentID == nil {
		return q.Where("parent_id IS NULL")
	}
	return q.Where("parent_id = ?", *parentID)
}

func (s *CategoryStore) FindParent(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var parent models.Category
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&parent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

// FindByID returns gorm.ErrRecordNotFound when the node is absent. With
// forUpdate the row stays locked until the surrounding transaction ends.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.Category, error) {
	q := s.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var node models.Category
	if err := q.Where("id = ?", id).First(&node).Error; err != nil {
		return nil, err
	}
	return &node, nil
}

func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var node models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&node).Error; err != nil {
		return nil, err
	}
	return &node, nil
}

// GetNextSortOrder returns one past the highest sort order among the
// children of parentID, or 1 when there are none.
func (s *CategoryStore) GetNextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error) {
	var max sql.NullInt64
	if err := s.siblings(ctx, parentID).Select("MAX(sort_order)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return int(max.Int64) + 1, nil
}

// IsNameTaken compares names case-insensitively among siblings only.
func (s *CategoryStore) IsNameTaken(ctx context.Context, name string, parentID, excludeID *uuid.UUID) (bool, error) {
	q := s.siblings(ctx, parentID).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *CategoryStore) IsSlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *CategoryStore) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := s.siblings(ctx, &id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListChildren returns the direct children of parentID in display order.
func (s *CategoryStore) ListChildren(ctx context.Context, parentID *uuid.UUID, onlyActive bool) ([]models.Category, error) {
	q := s.siblings(ctx, parentID)
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var children []models.Category
	err := q.Order("sort_order ASC").Order("created_at ASC").Find(&children).Error
	return children, err
}

// CountReferences counts inventory and product rows pointing at id.
func (s *CategoryStore) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var inventories, products int64
	if err := s.db.WithContext(ctx).Model(&models.Inventory{}).Where("category_id = ?", id).Count(&inventories).Error; err != nil {
		return 0, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
		return 0, err
	}
	return inventories + products, nil
}

// ShiftSortOrders moves every child of parentID whose sort order is at least
// from one position down, making room for an insert at from.
func (s *CategoryStore) ShiftSortOrders(ctx context.Context, parentID *uuid.UUID, from int, excludeID *uuid.UUID) (int64, error) {
	q := s.siblings(ctx, parentID).Where("sort_order >= ?", from)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	res := q.UpdateColumn("sort_order", gorm.Expr("sort_order + ?", 1))
	return res.RowsAffected, res.Error
}

// Prepare fills in the derived fields of a node about to be inserted: the
// slug (from Name unless one was supplied), the tree fields and, unless the
// caller chose one, the next free sort order among its siblings.
func (s *CategoryStore) Prepare(ctx context.Context, node *models.Category, explicitSortOrder bool) error {
	if node.Slug == "" {
		node.Slug = utils.NormalizeSlug(node.Name)
	} else {
		node.Slug = utils.NormalizeSlug(node.Slug)
	}
	if node.Slug == "" {
		return apperrors.BadRequest(apperrors.CodeValidation, "Slug cannot be empty")
	}

	if err := ComputeTreeFields(ctx, node, s); err != nil {
		return err
	}

	if !explicitSortOrder {
		next, err := s.GetNextSortOrder(ctx, node.ParentID)
		if err != nil {
			return err
		}
		node.SortOrder = next
	}
	return nil
}

func (s *CategoryStore) Insert(ctx context.Context, node *models.Category) error {
	return s.db.WithContext(ctx).Create(node).Error
}

// Reconcile recomputes slug and tree fields after an in-place update has
// been written and persists them in a second write.
func (s *CategoryStore) Reconcile(ctx context.Context, node *models.Category) error {
	if node.Slug != "" {
		node.Slug = utils.NormalizeSlug(node.Slug)
	}
	if err := ComputeTreeFields(ctx, node, s); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", node.ID).Updates(map[string]interface{}{
		"slug":      node.Slug,
		"level":     node.Level,
		"path":      node.Path,
		"ancestors": node.Ancestors,
	}).Error
}

// RecomputeDescendants walks the subtree below root level by level and
// rewrites every descendant's tree fields from its freshly computed parent.
// It returns the number of descendants updated.
func (s *CategoryStore) RecomputeDescendants(ctx context.Context, root *models.Category) (int, error) {
	known := MapLookup{root.ID: root}
	frontier := []uuid.UUID{root.ID}
	updated := 0

	for len(frontier) > 0 {
		var children []*models.Category
		if err := s.db.WithContext(ctx).Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return updated, fmt.Errorf("load descendants: %w", err)
		}

		next := make([]uuid.UUID, 0, len(children))
		for _, child := range children {
			if _, seen := known[child.ID]; seen {
				continue
			}
			if err := ComputeTreeFields(ctx, child, known); err != nil {
				return updated, err
			}
			err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", child.ID).Updates(map[string]interface{}{
				"level":     child.Level,
				"path":      child.Path,
				"ancestors": child.Ancestors,
			}).Error
			if err != nil {
				return updated, fmt.Errorf("update descendant %s: %w", child.ID, err)
			}
			known[child.ID] = child
			next = append(next, child.ID)
			updated++
		}
		frontier = next
	}
	return updated, nil
}

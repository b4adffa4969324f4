package services

import (
	"context"
	"errors"
	"strings"

	"catalog-backend/apperrors"
	"catalog-backend/database"
	"catalog-backend/dtos"
	"catalog-backend/models"
	"catalog-backend/store"
	"catalog-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TreeCache stores rendered category forests between mutations. GetTree
// reports the cache generation it looked at; a miss is filled with SetTree
// under that same generation so a fill racing a mutation is discarded.
type TreeCache interface {
	GetTree(ctx context.Context, onlyActive bool) ([]*models.Category, int64, bool)
	SetTree(ctx context.Context, onlyActive bool, gen int64, roots []*models.Category)
	Invalidate(ctx context.Context)
}

var categorySortColumns = map[string]string{
	"name":       "name",
	"sortOrder":  "sort_order",
	"sort_order": "sort_order",
	"createdAt":  "created_at",
	"created_at": "created_at",
}

// CategoryListParams selects one level of the tree. A nil ParentID lists
// root categories.
type CategoryListParams struct {
	ParentID *uuid.UUID
	IsActive *bool
	Query    utils.ListQuery
}

type CategoryPage struct {
	Items []models.Category
	Total int64
	Page  int
	Limit int
}

type CategoryService struct {
	db     *gorm.DB
	runner *database.TxRunner
	store  *store.CategoryStore
	cache  TreeCache
	log    *zap.Logger
}

func NewCategoryService(runner *database.TxRunner, cache TreeCache, log *zap.Logger) *CategoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{
		db:     runner.DB,
		runner: runner,
		store:  store.NewCategoryStore(runner.DB),
		cache:  cache,
		log:    log,
	}
}

func categoryNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("Category not found")
	}
	return err
}

func duplicateKey(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict(apperrors.CodeConflict, "Category conflicts with an existing category")
	}
	return err
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// validateParent checks that parentID can hold the node selfID (nil for a
// new node): it must exist, must not be the node itself and must not lie
// inside the node's own subtree.
func validateParent(ctx context.Context, st *store.CategoryStore, parentID, selfID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if selfID != nil && *parentID == *selfID {
		return apperrors.BadRequest(apperrors.CodeSelfParent, "A category cannot be its own parent")
	}

	parent, err := st.FindParent(ctx, *parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperrors.BadRequest(apperrors.CodeParentNotFound, "Parent category not found")
	}
	if selfID != nil && parent.HasAncestor(*selfID) {
		return apperrors.BadRequest(apperrors.CodeCycleDetected, "Cannot move a category into its own subtree")
	}
	return nil
}

func ensureNameFree(ctx context.Context, st *store.CategoryStore, name string, parentID, selfID *uuid.UUID) error {
	taken, err := st.IsNameTaken(ctx, name, parentID, selfID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.Conflict(apperrors.CodeDuplicateName, "A sibling category with this name already exists")
	}
	return nil
}

func ensureSlugFree(ctx context.Context, st *store.CategoryStore, slug string, selfID *uuid.UUID) error {
	taken, err := st.IsSlugTaken(ctx, slug, selfID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.Conflict(apperrors.CodeDuplicateSlug, "Slug is already in use")
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func blankName() error {
	return apperrors.BadRequest(apperrors.CodeValidation, "name cannot be blank")
}

func (s *CategoryService) Create(ctx context.Context, req dtos.CreateCategoryRequest, createdBy *uuid.UUID) (*models.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, blankName()
	}
	var created *models.Category

	err := s.runner.Run(ctx, func(tx *gorm.DB) error {
		st := s.store.WithTx(tx)

		node := &models.Category{
			Name:            strings.TrimSpace(req.Name),
			Slug:            req.Slug,
			ParentID:        req.ParentID,
			IsActive:        true,
			Description:     req.Description,
			Icon:            req.Icon,
			Image:           req.Image,
			MetaTitle:       req.MetaTitle,
			MetaDescription: req.MetaDescription,
			CreatedBy:       createdBy,
		}
		if req.IsActive != nil {
			node.IsActive = *req.IsActive
		}

		if err := validateParent(ctx, st, node.ParentID, nil); err != nil {
			return err
		}
		if err := ensureNameFree(ctx, st, node.Name, node.ParentID, nil); err != nil {
			return err
		}

		if req.SortOrder != nil {
			if _, err := st.ShiftSortOrders(ctx, node.ParentID, *req.SortOrder, nil); err != nil {
				return err
			}
			node.SortOrder = *req.SortOrder
		}

		if err := st.Prepare(ctx, node, req.SortOrder != nil); err != nil {
			return err
		}
		if err := ensureSlugFree(ctx, st, node.Slug, nil); err != nil {
			return err
		}
		if err := st.Insert(ctx, node); err != nil {
			return duplicateKey(err)
		}

		created = node
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("category created",
		zap.String("id", created.ID.String()),
		zap.String("path", created.Path),
		zap.Int("sort_order", created.SortOrder))
	return created, nil
}

// Update applies the fields present in req. A changed parent or slug
// recomputes the node's tree fields and those of all its descendants in the
// same transaction.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req dtos.UpdateCategoryRequest) (*models.Category, error) {
	var (
		updated  *models.Category
		cascaded int
	)

	err := s.runner.Run(ctx, func(tx *gorm.DB) error {
		st := s.store.WithTx(tx)

		node, err := st.FindByID(ctx, id, true)
		if err != nil {
			return categoryNotFound(err)
		}

		parentID := node.ParentID
		if req.ParentID.Set {
			parentID = req.ParentID.Value
		}
		if err := validateParent(ctx, st, parentID, &node.ID); err != nil {
			return err
		}
		parentChanged := !sameParent(node.ParentID, parentID)

		updates := map[string]interface{}{}

		name := node.Name
		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
			if name == "" {
				return blankName()
			}
			updates["name"] = name
		}
		if req.Name != nil || parentChanged {
			if err := ensureNameFree(ctx, st, name, parentID, &node.ID); err != nil {
				return err
			}
		}
		node.Name = name

		slugChanged := false
		if req.Slug != nil {
			slug := utils.NormalizeSlug(*req.Slug)
			if slug == "" {
				return apperrors.BadRequest(apperrors.CodeValidation, "Slug cannot be empty")
			}
			if slug != node.Slug {
				if err := ensureSlugFree(ctx, st, slug, &node.ID); err != nil {
					return err
				}
				slugChanged = true
			}
			node.Slug = slug
			updates["slug"] = slug
		}

		if req.SortOrder != nil {
			if _, err := st.ShiftSortOrders(ctx, parentID, *req.SortOrder, &node.ID); err != nil {
				return err
			}
			node.SortOrder = *req.SortOrder
			updates["sort_order"] = *req.SortOrder
		}

		if req.ParentID.Set {
			node.ParentID = parentID
			if parentID == nil {
				updates["parent_id"] = nil
			} else {
				updates["parent_id"] = *parentID
			}
		}
		if req.IsActive != nil {
			node.IsActive = *req.IsActive
			updates["is_active"] = *req.IsActive
		}
		for column, value := range map[string]*string{
			"description":      req.Description,
			"icon":             req.Icon,
			"image":            req.Image,
			"meta_title":       req.MetaTitle,
			"meta_description": req.MetaDescription,
		} {
			if value != nil {
				updates[column] = *value
			}
		}

		if len(updates) > 0 {
			if err := tx.WithContext(ctx).Model(&models.Category{}).Where("id = ?", node.ID).Updates(updates).Error; err != nil {
				return duplicateKey(err)
			}
		}

		if err := st.Reconcile(ctx, node); err != nil {
			return duplicateKey(err)
		}

		if parentChanged || slugChanged {
			n, err := st.RecomputeDescendants(ctx, node)
			if err != nil {
				return err
			}
			cascaded = n
		}

		fresh, err := st.FindByID(ctx, node.ID, false)
		if err != nil {
			return err
		}
		updated = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("category updated",
		zap.String("id", updated.ID.String()),
		zap.String("path", updated.Path),
		zap.Int("descendants_recomputed", cascaded))
	return updated, nil
}

// Move reparents a node; a nil parentID makes it a root.
func (s *CategoryService) Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error) {
	return s.Update(ctx, id, dtos.UpdateCategoryRequest{ParentID: dtos.SetUUID(parentID)})
}

// Reorder places a node at sortOrder under its current parent.
func (s *CategoryService) Reorder(ctx context.Context, id uuid.UUID, sortOrder int) (*models.Category, error) {
	return s.Update(ctx, id, dtos.UpdateCategoryRequest{SortOrder: &sortOrder})
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	node, err := s.store.FindByID(ctx, id, false)
	if err != nil {
		return nil, categoryNotFound(err)
	}
	return node, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	node, err := s.store.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, categoryNotFound(err)
	}
	return node, nil
}

// GetByIDOrSlug treats anything that parses as a UUID as an id.
func (s *CategoryService) GetByIDOrSlug(ctx context.Context, key string) (*models.Category, error) {
	if id, err := uuid.Parse(key); err == nil {
		return s.GetByID(ctx, id)
	}
	return s.GetBySlug(ctx, key)
}

// oldestFirst breaks ties left by the requested sort. It must run as a scope
// after SortBy so the requested column stays the primary key.
func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func (s *CategoryService) List(ctx context.Context, params CategoryListParams) (*CategoryPage, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if params.ParentID == nil {
			db = db.Where("parent_id IS NULL")
		} else {
			db = db.Where("parent_id = ?", *params.ParentID)
		}
		if params.IsActive != nil {
			db = db.Where("is_active = ?", *params.IsActive)
		}
		return db.Scopes(utils.Search(params.Query.Search, "name", "slug"))
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]models.Category, 0)
	err := s.db.WithContext(ctx).
		Scopes(filter, utils.SortBy(params.Query.Sort, categorySortColumns, "sortOrder"), oldestFirst, utils.Paginate(params.Query)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &CategoryPage{Items: items, Total: total, Page: params.Query.Page, Limit: params.Query.Limit}, nil
}

// GetTree returns the whole catalog as a forest ordered by sort order.
func (s *CategoryService) GetTree(ctx context.Context, onlyActive bool) ([]*models.Category, error) {
	gen := int64(-1)
	if s.cache != nil {
		roots, g, ok := s.cache.GetTree(ctx, onlyActive)
		if ok {
			return roots, nil
		}
		gen = g
	}

	q := s.db.WithContext(ctx).Model(&models.Category{})
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var nodes []*models.Category
	if err := q.Order("level ASC").Order("sort_order ASC").Order("created_at ASC").Find(&nodes).Error; err != nil {
		return nil, err
	}

	roots := BuildForest(nodes)
	if s.cache != nil {
		s.cache.SetTree(ctx, onlyActive, gen, roots)
	}
	return roots, nil
}

// Delete deactivates a node, or with hard removes it. Hard deletion is
// refused while the node has children or is referenced by inventory or
// products.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID, hard bool) (*models.Category, error) {
	var node *models.Category

	err := s.runner.Run(ctx, func(tx *gorm.DB) error {
		st := s.store.WithTx(tx)

		found, err := st.FindByID(ctx, id, true)
		if err != nil {
			return categoryNotFound(err)
		}

		if !hard {
			if err := tx.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
				return err
			}
			found.IsActive = false
			node = found
			return nil
		}

		hasChildren, err := st.HasChildren(ctx, id)
		if err != nil {
			return err
		}
		if hasChildren {
			return apperrors.BadRequest(apperrors.CodeHasChildren, "Cannot delete a category that has child categories")
		}

		refs, err := st.CountReferences(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.BadRequest(apperrors.CodeCategoryInUse, "Cannot delete a category referenced by inventory or products")
		}

		if err := tx.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error; err != nil {
			return err
		}
		node = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("category deleted", zap.String("id", id.String()), zap.Bool("hard", hard))
	return node, nil
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"catalog-backend/apperrors"
	"catalog-backend/database"
	"catalog-backend/dtos"
	"catalog-backend/models"
	"catalog-backend/services"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductHandler struct {
	Runner     *database.TxRunner
	Categories *services.CategoryService
	Log        *zap.Logger
}

// CreateProduct lists a published inventory row in the storefront. The
// product starts offline; price, category and images default to the
// inventory's.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dtos.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	slug := utils.NormalizeSlug(req.Slug)
	if slug == "" {
		slug = utils.NormalizeSlug(req.Title)
	}
	ctx := c.Request.Context()

	var product models.Product
	err := h.Runner.Run(ctx, func(tx *gorm.DB) error {
		var inv models.Inventory
		err := tx.WithContext(ctx).Where("id = ?", req.InventoryID).First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Inventory not found")
		}
		if err != nil {
			return err
		}
		if !inv.IsPublished {
			return apperrors.BadRequest(apperrors.CodeBadRequest, "Inventory must be published before it can be listed")
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&models.Product{}).Where("inventory_id = ?", inv.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict(apperrors.CodeConflict, "A product already exists for this inventory")
		}

		if err := tx.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict(apperrors.CodeDuplicateSlug, "Slug is already in use")
		}

		categoryID := inv.CategoryID
		if req.CategoryID != nil {
			if err := tx.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *req.CategoryID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperrors.BadRequest(apperrors.CodeBadRequest, "Category not found")
			}
			categoryID = *req.CategoryID
		}

		price := inv.SellingPrice
		if req.Price != nil {
			price = *req.Price
		}
		images := inv.Images
		if len(req.Images) > 0 {
			images = datatypes.JSONSlice[string](req.Images)
		}

		product = models.Product{
			InventoryID:      inv.ID,
			Title:            strings.TrimSpace(req.Title),
			Slug:             slug,
			ShortDescription: req.ShortDescription,
			Description:      req.Description,
			Price:            price,
			Images:           images,
			CategoryID:       categoryID,
		}
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict(apperrors.CodeConflict, "Product conflicts with an existing product")
			}
			return err
		}
		return nil
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	h.Log.Info("product created", zap.String("id", product.ID.String()), zap.String("slug", product.Slug))
	respond(c, http.StatusCreated, "Product created successfully", product)
}

func (h *ProductHandler) PublishProduct(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	ctx := c.Request.Context()

	var product models.Product
	err = h.Runner.Run(ctx, func(tx *gorm.DB) error {
		err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Product not found")
		}
		if err != nil {
			return err
		}
		if product.IsLive {
			return apperrors.BadRequest(apperrors.CodeBadRequest, "Product already live")
		}

		product.IsLive = true
		return tx.WithContext(ctx).Model(&product).Update("is_live", true).Error
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	respond(c, http.StatusOK, "Product published successfully", product)
}

func parsePrice(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, apperrors.BadRequest(apperrors.CodeBadRequest, "Invalid "+key)
	}
	return &v, nil
}

// ListProducts is the public storefront listing. A category filter matches
// the category and everything below it.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	query := utils.ParseListQuery(c)
	ctx := c.Request.Context()

	minPrice, err := parsePrice(c, "minPrice")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	maxPrice, err := parsePrice(c, "maxPrice")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	var category *models.Category
	if key := c.Query("category"); key != "" {
		category, err = h.Categories.GetByIDOrSlug(ctx, key)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}
	}

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_live = ?", true)
		if category != nil {
			subtree := h.Runner.DB.Model(&models.Category{}).Select("id").
				Where(`path = ? OR path LIKE ? ESCAPE '\'`, category.Path, utils.EscapeLike(category.Path)+"/%")
			db = db.Where("category_id IN (?)", subtree)
		}
		if minPrice != nil {
			db = db.Where("price >= ?", *minPrice)
		}
		if maxPrice != nil {
			db = db.Where("price <= ?", *maxPrice)
		}
		return db.Scopes(utils.Search(query.Search, "title"))
	}

	db := h.Runner.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Product{}).Scopes(filter).Count(&total).Error; err != nil {
		respondError(c, h.Log, err)
		return
	}

	order := "created_at DESC"
	switch query.Sort {
	case "price_asc":
		order = "price ASC"
	case "price_desc":
		order = "price DESC"
	}

	products := make([]models.Product, 0)
	err = db.Preload("Category").
		Scopes(filter, utils.Paginate(query)).
		Order(order).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	respondPage(c, "Products fetched successfully", products, dtos.NewPageMeta(query.Page, query.Limit, total))
}

// GetProduct looks up a live product by id or slug.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	key := c.Param("idOrSlug")
	q := h.Runner.DB.WithContext(c.Request.Context()).Preload("Category").Where("is_live = ?", true)
	if id, err := uuid.Parse(key); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", strings.ToLower(key))
	}

	var product models.Product
	if err := q.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = apperrors.NotFound("Product not found")
		}
		respondError(c, h.Log, err)
		return
	}
	respond(c, http.StatusOK, "Product fetched successfully", product)
}

package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"catalog-backend/apperrors"
	"catalog-backend/database"
	"catalog-backend/dtos"
	"catalog-backend/firebase"
	"catalog-backend/models"
	"catalog-backend/store"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxInventoryImages = 10

var inventorySortColumns = map[string]string{
	"createdAt":    "created_at",
	"created_at":   "created_at",
	"name":         "name",
	"sku":          "sku",
	"quantity":     "quantity",
	"sellingPrice": "selling_price",
}

type InventoryHandler struct {
	Runner  *database.TxRunner
	Storage firebase.StorageClient
	Log     *zap.Logger
}

// CreateInventory stores a new unpublished inventory row. Its SKU is
// <FIRSTWORD>-<MODEL>-<nnnnn>, numbered per first word.
func (h *InventoryHandler) CreateInventory(c *gin.Context) {
	var req dtos.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	word, model := utils.SKUStem(req.Name, req.ModelCode)
	if model == "" {
		respondError(c, h.Log, apperrors.BadRequest(apperrors.CodeValidation, "model_code must contain letters or digits"))
		return
	}
	modelCode := strings.ToUpper(strings.TrimSpace(req.ModelCode))
	ctx := c.Request.Context()

	var item models.Inventory
	err := h.Runner.Run(ctx, func(tx *gorm.DB) error {
		var category models.Category
		err := tx.WithContext(ctx).Where("id = ? AND is_active = ?", req.CategoryID, true).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.BadRequest(apperrors.CodeBadRequest, "Category not found or inactive")
		}
		if err != nil {
			return err
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&models.Inventory{}).Where("model_code = ?", modelCode).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict(apperrors.CodeConflict, "Model code already exists")
		}

		sku, err := store.NewCounterStore(tx).NextID(ctx, "SKU:"+word, word+"-"+model+"-", store.DefaultPadding)
		if err != nil {
			return err
		}

		item = models.Inventory{
			SKU:             sku,
			Name:            strings.TrimSpace(req.Name),
			Description:     req.Description,
			ModelCode:       modelCode,
			CategoryID:      category.ID,
			Quantity:        req.Quantity,
			CostPrice:       req.CostPrice,
			SellingPrice:    req.SellingPrice,
			SupplierName:    req.SupplierName,
			SupplierContact: req.SupplierContact,
			Images:          datatypes.JSONSlice[string](req.Images),
			IsActive:        true,
		}
		if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict(apperrors.CodeConflict, "Inventory conflicts with an existing item")
			}
			return err
		}
		return nil
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	h.Log.Info("inventory created", zap.String("id", item.ID.String()), zap.String("sku", item.SKU))
	respond(c, http.StatusCreated, "Inventory created successfully", item)
}

func (h *InventoryHandler) PublishInventory(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	ctx := c.Request.Context()

	var item models.Inventory
	err = h.Runner.Run(ctx, func(tx *gorm.DB) error {
		err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Inventory not found")
		}
		if err != nil {
			return err
		}

		item.IsPublished = true
		return tx.WithContext(ctx).Model(&item).Update("is_published", true).Error
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	respond(c, http.StatusOK, "Inventory published successfully", item)
}

func (h *InventoryHandler) ListInventory(c *gin.Context) {
	query := utils.ParseListQuery(c)

	filter := func(db *gorm.DB) *gorm.DB {
		if raw := c.Query("categoryId"); raw != "" {
			db = db.Where("category_id = ?", raw)
		}
		if published := utils.ParseOptionalBool(c, "isPublished"); published != nil {
			db = db.Where("is_published = ?", *published)
		}
		return db.Scopes(utils.Search(query.Search, "name", "sku", "model_code"))
	}

	if raw := c.Query("categoryId"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			respondError(c, h.Log, apperrors.BadRequest(apperrors.CodeBadRequest, "Invalid categoryId"))
			return
		}
	}

	db := h.Runner.DB.WithContext(c.Request.Context())

	var total int64
	if err := db.Model(&models.Inventory{}).Scopes(filter).Count(&total).Error; err != nil {
		respondError(c, h.Log, err)
		return
	}

	items := make([]models.Inventory, 0)
	err := db.Preload("Category").
		Scopes(filter, utils.SortBy(query.Sort, inventorySortColumns, "-createdAt"), utils.Paginate(query)).
		Find(&items).Error
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	respondPage(c, "Inventory fetched successfully", items, dtos.NewPageMeta(query.Page, query.Limit, total))
}

// UploadImages accepts one or more multipart "images" files and appends
// their URLs to the inventory row.
func (h *InventoryHandler) UploadImages(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, h.Log, apperrors.BadRequest(apperrors.CodeValidation, "images are required"))
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		respondError(c, h.Log, apperrors.BadRequest(apperrors.CodeValidation, "images are required"))
		return
	}
	for _, fh := range files {
		if err := utils.ValidateFileUpload(fh); err != nil {
			respondError(c, h.Log, apperrors.BadRequest(apperrors.CodeValidation, err.Error()))
			return
		}
	}

	ctx := c.Request.Context()
	var existing models.Inventory
	if err := h.Runner.DB.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = apperrors.NotFound("Inventory not found")
		}
		respondError(c, h.Log, err)
		return
	}
	if len(existing.Images)+len(files) > maxInventoryImages {
		respondError(c, h.Log, apperrors.BadRequest(apperrors.CodeValidation, "an inventory item can have at most 10 images"))
		return
	}

	uploaded := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.upload(c, id, fh)
		if err != nil {
			h.discard(c, uploaded)
			respondError(c, h.Log, apperrors.Internal("Failed to upload image", err))
			return
		}
		uploaded = append(uploaded, url)
	}

	var item models.Inventory
	err = h.Runner.Run(ctx, func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}
		item.Images = append(item.Images, uploaded...)
		return tx.WithContext(ctx).Model(&item).Update("images", item.Images).Error
	})
	if err != nil {
		h.discard(c, uploaded)
		respondError(c, h.Log, err)
		return
	}

	respond(c, http.StatusOK, "Images uploaded successfully", item)
}

func (h *InventoryHandler) upload(c *gin.Context, id uuid.UUID, fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()
	return h.Storage.UploadInventoryImage(c.Request.Context(), id.String(), file, fh.Filename, fh.Header.Get("Content-Type"))
}

// discard removes already uploaded files after a failed request.
func (h *InventoryHandler) discard(c *gin.Context, urls []string) {
	for _, url := range urls {
		if err := h.Storage.DeleteFile(c.Request.Context(), url); err != nil {
			h.Log.Warn("failed to remove orphaned upload", zap.String("url", url), zap.Error(err))
		}
	}
}

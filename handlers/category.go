package handlers

import (
	"net/http"
	"strconv"

	"catalog-backend/apperrors"
	"catalog-backend/dtos"
	"catalog-backend/firebase"
	"catalog-backend/services"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	Service *services.CategoryService
	Storage firebase.StorageClient
	Log     *zap.Logger
}

// parentFilter reads parentId (or parent_id). Absent, empty, "null" and
// "root" all select root categories.
func parentFilter(c *gin.Context) (*uuid.UUID, error) {
	raw := c.Query("parentId")
	if raw == "" {
		raw = c.Query("parent_id")
	}
	if raw == "" || raw == "null" || raw == "root" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.BadRequest(apperrors.CodeBadRequest, "Invalid parentId")
	}
	return &id, nil
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	parentID, err := parentFilter(c)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	isActive := utils.ParseOptionalBool(c, "isActive")
	if isActive == nil {
		isActive = utils.ParseOptionalBool(c, "is_active")
	}

	query := utils.ParseListQuery(c)
	page, err := h.Service.List(c.Request.Context(), services.CategoryListParams{
		ParentID: parentID,
		IsActive: isActive,
		Query:    query,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	respondPage(c, "Categories fetched successfully", page.Items, dtos.NewPageMeta(page.Page, page.Limit, page.Total))
}

func (h *CategoryHandler) GetTree(c *gin.Context) {
	onlyActive := true
	if raw := c.Query("onlyActive"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			onlyActive = b
		}
	}

	roots, err := h.Service.GetTree(c.Request.Context(), onlyActive)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	respond(c, http.StatusOK, "Category tree fetched successfully", roots)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	node, err := h.Service.GetByIDOrSlug(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	respond(c, http.StatusOK, "Category fetched successfully", node)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dtos.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var createdBy *uuid.UUID
	if id, err := currentUserID(c); err == nil {
		createdBy = &id
	}

	node, err := h.Service.Create(c.Request.Context(), req, createdBy)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", node)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	var req dtos.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	node, err := h.Service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", node)
}

func (h *CategoryHandler) MoveCategory(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	var req dtos.MoveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	node, err := h.Service.Move(c.Request.Context(), id, req.ParentID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	respond(c, http.StatusOK, "Category moved successfully", node)
}

func (h *CategoryHandler) ReorderCategory(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	var req dtos.ReorderCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	node, err := h.Service.Reorder(c.Request.Context(), id, *req.SortOrder)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	respond(c, http.StatusOK, "Category reordered successfully", node)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	hard, _ := strconv.ParseBool(c.DefaultQuery("hard", "false"))

	node, err := h.Service.Delete(c.Request.Context(), id, hard)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	if hard && node.Image != "" && h.Storage != nil {
		if err := h.Storage.DeleteFile(c.Request.Context(), node.Image); err != nil {
			h.Log.Warn("failed to delete category image", zap.String("id", id.String()), zap.Error(err))
		}
	}

	message := "Category deactivated successfully"
	if hard {
		message = "Category deleted successfully"
	}
	respond(c, http.StatusOK, message, nil)
}

// UploadImage stores the multipart "image" file and makes it the category
// image. The previous image is removed from storage afterwards.
func (h *CategoryHandler) UploadImage(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		respondError(c, h.Log, apperrors.BadRequest(apperrors.CodeValidation, "image file is required"))
		return
	}
	if err := utils.ValidateFileUpload(fh); err != nil {
		respondError(c, h.Log, apperrors.BadRequest(apperrors.CodeValidation, err.Error()))
		return
	}

	existing, err := h.Service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	file, err := fh.Open()
	if err != nil {
		respondError(c, h.Log, apperrors.Internal("Failed to read uploaded file", err))
		return
	}
	defer file.Close()

	url, err := h.Storage.UploadCategoryImage(c.Request.Context(), id.String(), file, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.Log, apperrors.Internal("Failed to upload image", err))
		return
	}

	node, err := h.Service.Update(c.Request.Context(), id, dtos.UpdateCategoryRequest{Image: &url})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	if existing.Image != "" && existing.Image != url {
		if err := h.Storage.DeleteFile(c.Request.Context(), existing.Image); err != nil {
			h.Log.Warn("failed to delete previous category image", zap.String("id", id.String()), zap.Error(err))
		}
	}

	respond(c, http.StatusOK, "Category image uploaded successfully", node)
}

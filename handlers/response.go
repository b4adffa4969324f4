package handlers

import (
	"errors"
	"net/http"

	"catalog-backend/apperrors"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondPage(c *gin.Context, message string, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
		"meta":    meta,
	})
}

// respondError writes the error envelope for err. Unknown errors become a
// generic 500 and their cause is only logged.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	appErr := apperrors.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		if log == nil {
			log = zap.NewNop()
		}
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(appErr.Status, gin.H{
		"success": false,
		"message": appErr.Message,
		"error":   appErr.Code,
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": utils.SanitizeValidationError(err),
		"error":   apperrors.CodeValidation,
	})
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest(apperrors.CodeBadRequest, "Invalid "+name)
	}
	return id, nil
}

// currentUserID reads the user id set by AuthMiddleware.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, apperrors.Unauthorized("Unauthorized")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user_id has unexpected type")
	}
	return id, nil
}

package firebase

import (
	"context"
	"io"
)

// StorageClient abstracts image storage for dependency injection and testing.
type StorageClient interface {
	UploadCategoryImage(ctx context.Context, categoryID string, file io.Reader, filename, contentType string) (string, error)
	UploadInventoryImage(ctx context.Context, inventoryID string, file io.Reader, filename, contentType string) (string, error)
	DeleteFile(ctx context.Context, url string) error
}

var _ StorageClient = (*Storage)(nil)

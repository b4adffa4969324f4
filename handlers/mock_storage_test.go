package handlers

import (
	"context"
	"io"
)

type mockStorage struct {
	UploadCategoryImageFn  func(categoryID, filename string) (string, error)
	UploadInventoryImageFn func(inventoryID, filename string) (string, error)
	DeleteFileFn           func(url string) error
	DeleteFileCalls        []string
	UploadCallCount        int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) UploadCategoryImage(_ context.Context, categoryID string, _ io.Reader, filename, _ string) (string, error) {
	m.UploadCallCount++
	if m.UploadCategoryImageFn != nil {
		return m.UploadCategoryImageFn(categoryID, filename)
	}
	return "https://storage.googleapis.com/test-bucket/categories/" + categoryID + "/" + filename, nil
}

func (m *mockStorage) UploadInventoryImage(_ context.Context, inventoryID string, _ io.Reader, filename, _ string) (string, error) {
	m.UploadCallCount++
	if m.UploadInventoryImageFn != nil {
		return m.UploadInventoryImageFn(inventoryID, filename)
	}
	return "https://storage.googleapis.com/test-bucket/inventory/" + inventoryID + "/" + filename, nil
}

func (m *mockStorage) DeleteFile(_ context.Context, url string) error {
	m.DeleteFileCalls = append(m.DeleteFileCalls, url)
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(url)
	}
	return nil
}

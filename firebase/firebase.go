package firebase

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const publicHost = "https://storage.googleapis.com/"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

// Init creates the Firebase app. GOOGLE_APPLICATION_CREDENTIALS may hold
// either a path to a service account file or the JSON itself.
func Init(ctx context.Context, log *zap.Logger) (*firebase.App, error) {
	credJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	var opts []option.ClientOption

	if credJSON != "" {
		if strings.HasPrefix(credJSON, "{") {
			log.Info("using firebase credentials from environment variable")
			opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			log.Info("using firebase credentials from file", zap.String("path", credJSON))
			opts = append(opts, option.WithCredentialsFile(credJSON))
		}
	} else {
		log.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}

	log.Info("firebase initialized")
	return app, nil
}

// Storage uploads public images to one Firebase Storage bucket.
type Storage struct {
	app    *firebase.App
	bucket string
	log    *zap.Logger
}

func NewStorage(app *firebase.App, bucket string, log *zap.Logger) *Storage {
	if log == nil {
		log = zap.NewNop()
	}
	return &Storage{app: app, bucket: bucket, log: log}
}

func (s *Storage) handle(ctx context.Context) (*storage.BucketHandle, error) {
	if s.app == nil {
		return nil, fmt.Errorf("firebase app not initialized")
	}
	if s.bucket == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := s.app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return client.Bucket(s.bucket)
}

// objectName builds "<folder>/<owner>/<unix>_<short id>_<filename>".
func objectName(folder, owner, filename string) string {
	return fmt.Sprintf("%s/%s/%d_%s_%s",
		folder,
		sanitizeFilename(owner),
		time.Now().Unix(),
		uuid.NewString()[:8],
		sanitizeFilename(filename),
	)
}

// PublicURL is the URL under which an object of bucket is served.
func PublicURL(bucket, objectPath string) string {
	return publicHost + bucket + "/" + objectPath
}

// ObjectPath reverses PublicURL. It reports false for URLs that do not
// point into bucket.
func ObjectPath(bucket, url string) (string, bool) {
	prefix := publicHost + bucket + "/"
	if bucket == "" || !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func (s *Storage) upload(ctx context.Context, objectPath string, file io.Reader, contentType string) (string, error) {
	bucket, err := s.handle(ctx)
	if err != nil {
		return "", err
	}

	obj := bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", err
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		s.log.Warn("failed to set public ACL", zap.String("object", objectPath), zap.Error(err))
	}

	s.log.Info("image uploaded", zap.String("object", objectPath))
	return PublicURL(s.bucket, objectPath), nil
}

func (s *Storage) UploadCategoryImage(ctx context.Context, categoryID string, file io.Reader, filename, contentType string) (string, error) {
	return s.upload(ctx, objectName("categories", categoryID, filename), file, contentType)
}

func (s *Storage) UploadInventoryImage(ctx context.Context, inventoryID string, file io.Reader, filename, contentType string) (string, error) {
	return s.upload(ctx, objectName("inventory", inventoryID, filename), file, contentType)
}

// DeleteFile removes the object behind a public URL. URLs outside the
// configured bucket are ignored.
func (s *Storage) DeleteFile(ctx context.Context, url string) error {
	objectPath, ok := ObjectPath(s.bucket, url)
	if !ok {
		return nil
	}

	bucket, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if err := bucket.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}

	s.log.Info("image deleted", zap.String("object", objectPath))
	return nil
}

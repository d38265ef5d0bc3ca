package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"expressivart/pkg/logger"
)

const publicURLPrefix = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("storage: bucket name is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	c := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}

	if err := c.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set bucket CORS configuration: %v", err)
	}
	return c, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	attrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %w", err)
	}
	if len(attrs.CORS) > 0 {
		return nil
	}

	_, err = bucket.Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{{
			MaxAge:          3600,
			Methods:         []string{"GET", "HEAD"},
			Origins:         []string{"*"},
			ResponseHeaders: []string{"Content-Type"},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to update bucket CORS: %w", err)
	}
	return nil
}

// ObjectName builds `<owner>/<folder>/<uuid><ext>` for a new upload.
func ObjectName(ownerID, folder, ext string) string {
	return path.Join(ownerID, folder, uuid.NewString()+ext)
}

// Upload writes data under objectName, makes it world-readable and returns its public URL.
func (c *CloudStorageClient) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	obj := c.client.Bucket(c.bucketName).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := bytes.NewReader(data).WriteTo(w); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("failed to set ACL: %w", err)
	}

	return c.PublicURL(objectName), nil
}

func (c *CloudStorageClient) PublicURL(objectName string) string {
	return publicURLPrefix + c.bucketName + "/" + objectName
}

// Delete removes the object behind a URL previously returned by Upload.
func (c *CloudStorageClient) Delete(ctx context.Context, fileURL string) error {
	prefix := publicURLPrefix + c.bucketName + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return fmt.Errorf("storage: %q is not an object in bucket %s", fileURL, c.bucketName)
	}

	if err := c.client.Bucket(c.bucketName).Object(strings.TrimPrefix(fileURL, prefix)).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

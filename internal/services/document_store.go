package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"rentflow/internal/common"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Upload is one file handed over by the HTTP layer.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DocumentStore keeps lease documents and inspection photos. Keys are object names in a single bucket.
type DocumentStore interface {
	Put(ctx context.Context, prefix string, file Upload) (string, error)
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	EnsureBucket(ctx context.Context) error
}

type minioDocumentStore struct {
	client *minio.Client
	bucket string
}

func NewMinioDocumentStore(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (DocumentStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioDocumentStore{client: client, bucket: bucket}, nil
}

func objectKey(prefix, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return path.Join(prefix, uuid.NewString()+"-"+base)
}

func (m *minioDocumentStore) Put(ctx context.Context, prefix string, file Upload) (string, error) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectKey(prefix, file.Name)
	_, err := m.client.PutObject(ctx, m.bucket, key, file.Body, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *minioDocumentStore) Remove(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *minioDocumentStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *minioDocumentStore) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// storeUploads puts every file under prefix. On a failed put the files already stored are removed again.
func storeUploads(ctx context.Context, store DocumentStore, prefix string, files []Upload, logger *zap.Logger) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key, err := store.Put(ctx, prefix, f)
		if err != nil {
			if cleanupErr := removeDocuments(context.WithoutCancel(ctx), store, keys); cleanupErr != nil {
				logger.Warn("Failed to clean up partial upload", zap.Strings("keys", keys), zap.Error(cleanupErr))
			}
			return nil, common.NewFileSystemError(fmt.Sprintf("store %s", f.Name), err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func removeDocuments(ctx context.Context, store DocumentStore, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return common.NewFileSystemError("remove documents", errors.Join(errs...))
	}
	return nil
}

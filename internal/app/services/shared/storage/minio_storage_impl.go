package storage

import (
	"bytes"
	"context"
	"medbridge-service/internal/app/contracts"
	"medbridge-service/internal/pkg/exceptions"
	"mime"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
)

type minioStorage struct {
	MinioClient        *minio.Client
	PresignedURLExpiry time.Duration
}

func NewMinioStorage(minioClient *minio.Client, presignedURLExpiry time.Duration) contracts.ObjectStorage {
	return &minioStorage{
		MinioClient:        minioClient,
		PresignedURLExpiry: presignedURLExpiry,
	}
}

func (m *minioStorage) UploadObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(objectName))
	}
	_, err := m.MinioClient.PutObject(
		ctx,
		bucketName,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return exceptions.ErrMinioCreateObject(err, bucketName)
	}
	return nil
}

func (m *minioStorage) FindObjectURLByPrefix(ctx context.Context, bucketName, prefix string) (string, bool, error) {
	objects := m.MinioClient.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Prefix: prefix,
	})
	for object := range objects {
		if object.Err != nil {
			return "", false, exceptions.ErrMinioFindObject(object.Err, bucketName)
		}
		presigned, err := m.MinioClient.PresignedGetObject(ctx, bucketName, object.Key, m.PresignedURLExpiry, url.Values{})
		if err != nil {
			return "", false, exceptions.ErrMinioFindObject(err, bucketName)
		}
		return presigned.String(), true, nil
	}
	return "", false, nil
}

func (m *minioStorage) DeleteObject(ctx context.Context, bucketName, objectName string) error {
	err := m.MinioClient.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return exceptions.ErrMinioDeleteObject(err, bucketName)
	}
	return nil
}

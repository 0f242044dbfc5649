package contracts

import "context"

// ObjectStorage is the attachment-store boundary. Objects are keyed by
// "{patientID}/{resourceID}{extension}" inside a bucket; retrieval is always
// by recomputing the same key, never by a URL stored on the resource.
type ObjectStorage interface {
	UploadObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
	FindObjectURLByPrefix(ctx context.Context, bucketName, prefix string) (url string, found bool, err error)
	DeleteObject(ctx context.Context, bucketName, objectName string) error
}

// internal/storage/uploader.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	commonaws "nexoprec/internal/common/aws"
	"nexoprec/internal/common/logger"
)

var (
	ErrUploadFailed = errors.New("STORAGE_UPLOAD_FAILED")
)

// Define interface for mocking
type S3Service interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ S3Service = (*commonaws.S3Client)(nil)

// Uploader stores applicant files in S3. Objects are keyed under the
// event id with a random name so uploads never collide and never leak
// the applicant's file name.
type Uploader struct {
	client  S3Service
	bucket  string
	baseURL string
	logger  logger.Logger
}

func NewUploader(awsCfg aws.Config, region, bucket, baseURL string, log logger.Logger) *Uploader {
	return &Uploader{
		client:  commonaws.NewS3Client(awsCfg, region),
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.WithFields(map[string]interface{}{"component": "uploader"}),
	}
}

// NewUploaderWithClient wires an explicit client, used by tests.
func NewUploaderWithClient(client S3Service, bucket, baseURL string, log logger.Logger) *Uploader {
	return &Uploader{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.WithFields(map[string]interface{}{"component": "uploader"}),
	}
}

// ObjectKey builds the storage key for an uploaded file. The original
// name contributes only its extension.
func ObjectKey(eventID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := strings.ReplaceAll(uuid.New().String(), "-", "")
	return eventID + "/" + name + ext
}

// Upload stores one file and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, eventID, filename, contentType string, body io.Reader) (string, error) {
	key := ObjectKey(eventID, filename)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &u.bucket,
		Key:         &key,
		ContentType: &contentType,
		Body:        body,
	})
	if err != nil {
		u.logger.Error("file upload failed", map[string]interface{}{
			"eventId": eventID,
			"key":     key,
			"error":   err.Error(),
		})
		return "", fmt.Errorf("%w: put object: %v", ErrUploadFailed, err)
	}

	u.logger.Info("file uploaded", map[string]interface{}{
		"eventId": eventID,
		"key":     key,
	})
	return u.baseURL + "/" + key, nil
}

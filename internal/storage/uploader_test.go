// internal/storage/uploader_test.go
package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nexoprec/internal/common/logger"
)

type mockS3 struct {
	lastInput *s3.PutObjectInput
	err       error
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func TestObjectKey_Shape(t *testing.T) {
	key := ObjectKey("event-1", "resume.PDF")

	assert.True(t, strings.HasPrefix(key, "event-1/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotContains(t, key, "resume")
}

func TestObjectKey_Unique(t *testing.T) {
	a := ObjectKey("event-1", "resume.pdf")
	b := ObjectKey("event-1", "resume.pdf")
	assert.NotEqual(t, a, b)
}

func TestObjectKey_NoExtension(t *testing.T) {
	key := ObjectKey("event-1", "README")
	assert.True(t, strings.HasPrefix(key, "event-1/"))
	assert.NotContains(t, key, ".")
}

func TestNewUploader_BuildsClientFromSharedConfig(t *testing.T) {
	uploader := NewUploader(aws.Config{Region: "us-east-1"}, "eu-west-1", "nexoprec-files", "https://files.example.com/", createTestLogger(t))

	require.NotNil(t, uploader.client)
	assert.Equal(t, "https://files.example.com", uploader.baseURL)
}

func TestUploader_Upload(t *testing.T) {
	mock := &mockS3{}
	uploader := NewUploaderWithClient(mock, "nexoprec-files", "https://files.example.com/", createTestLogger(t))

	url, err := uploader.Upload(context.Background(), "event-1", "resume.pdf", "application/pdf", strings.NewReader("content"))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://files.example.com/event-1/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	require.NotNil(t, mock.lastInput)
	assert.Equal(t, "nexoprec-files", *mock.lastInput.Bucket)
	assert.Equal(t, "application/pdf", *mock.lastInput.ContentType)

	body, _ := io.ReadAll(mock.lastInput.Body)
	assert.Equal(t, "content", string(body))
}

func TestUploader_UploadFailure(t *testing.T) {
	mock := &mockS3{err: assert.AnError}
	uploader := NewUploaderWithClient(mock, "nexoprec-files", "https://files.example.com", createTestLogger(t))

	_, err := uploader.Upload(context.Background(), "event-1", "resume.pdf", "application/pdf", strings.NewReader("content"))

	assert.ErrorIs(t, err, ErrUploadFailed)
}

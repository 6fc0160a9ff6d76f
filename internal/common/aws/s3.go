// internal/common/aws/s3.go
package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client stores applicant file uploads.
type S3Client struct {
	client *s3.Client
}

// NewS3Client builds an S3 client from the shared config. The bucket
// region may differ from the default region, so it can be overridden
// per client.
func NewS3Client(cfg awssdk.Config, region string) *S3Client {
	return &S3Client{client: s3.NewFromConfig(cfg, func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
	})}
}

func (s *S3Client) PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return s.client.PutObject(ctx, input, optFns...)
}

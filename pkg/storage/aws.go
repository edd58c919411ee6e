package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// AWSAdapter AWS S3 适配器，也用于 MinIO 等通用 S3 兼容存储
type AWSAdapter struct {
	client *s3.Client
	bucket string
}

// NewAWSAdapter 创建 AWS S3 适配器
func NewAWSAdapter(ctx context.Context, opts Options) (*AWSAdapter, error) {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := newS3Client(ctx, region, opts)
	if err != nil {
		return nil, err
	}

	return &AWSAdapter{
		client: client,
		bucket: opts.Bucket,
	}, nil
}

// PutObject 上传对象，存储类型在上传时直接指定
func (a *AWSAdapter) PutObject(ctx context.Context, key string, body io.Reader, size int64, opts UploadOptions) error {
	input := putObjectInput(a.bucket, key, body, size, opts)
	if opts.StorageClass.IsValid() {
		input.StorageClass = types.StorageClass(opts.StorageClass.String())
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// SupportedStorageClasses 返回支持的存储类型
func (a *AWSAdapter) SupportedStorageClasses() []StorageClass {
	return []StorageClass{
		StorageClassStandard,
		StorageClassInfrequent,
		StorageClassArchive,
		StorageClassDeepArchive,
		StorageClassGlacierIR,
		StorageClassIntelligentTiering,
	}
}

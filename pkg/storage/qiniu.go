package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// QiniuAdapter 七牛云适配器
// 七牛云 Kodo 支持 S3 协议，但存储类型取值不同
type QiniuAdapter struct {
	client *s3.Client
	bucket string
}

// NewQiniuAdapter 创建七牛云适配器
// 七牛云 S3 协议端点格式: s3.<region>.qiniucs.com
func NewQiniuAdapter(ctx context.Context, opts Options) (*QiniuAdapter, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("qiniu endpoint is required")
	}
	region := opts.Region
	if region == "" {
		region = "qiniu" // 七牛云使用自定义 region
	}
	client, err := newS3Client(ctx, region, opts)
	if err != nil {
		return nil, err
	}

	return &QiniuAdapter{
		client: client,
		bucket: opts.Bucket,
	}, nil
}

// PutObject 上传对象
func (q *QiniuAdapter) PutObject(ctx context.Context, key string, body io.Reader, size int64, opts UploadOptions) error {
	input := putObjectInput(q.bucket, key, body, size, opts)
	if opts.StorageClass.IsValid() {
		input.StorageClass = types.StorageClass(q.mapStorageClass(opts.StorageClass))
	}

	if _, err := q.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// SupportedStorageClasses 返回支持的存储类型
func (q *QiniuAdapter) SupportedStorageClasses() []StorageClass {
	return []StorageClass{
		StorageClassStandard,
		StorageClassInfrequent,
		StorageClassArchive,
		StorageClassDeepArchive,
		StorageClassGlacierIR,
		StorageClassIntelligentTiering,
	}
}

// mapStorageClass 将通用存储类型映射到七牛云 S3 协议的存储类型值
func (q *QiniuAdapter) mapStorageClass(sc StorageClass) string {
	switch sc {
	case StorageClassStandard:
		return "STANDARD"
	case StorageClassInfrequent:
		return "LINE" // 低频存储
	case StorageClassArchive:
		return "GLACIER" // 归档存储
	case StorageClassDeepArchive:
		return "DEEP_ARCHIVE"
	case StorageClassGlacierIR:
		return "GLACIER_IR" // 归档直读
	case StorageClassIntelligentTiering:
		return "INTELLIGENT_TIERING"
	default:
		return "STANDARD"
	}
}

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// aliyunStorageClassHeader 阿里云 OSS 通过该请求头指定存储类型
const aliyunStorageClassHeader = "x-oss-storage-class"

// AliyunAdapter 阿里云 OSS 适配器
// 阿里云 OSS 支持 S3 协议，但存储类型映射不同
type AliyunAdapter struct {
	client *s3.Client
	bucket string
}

// NewAliyunAdapter 创建阿里云 OSS 适配器
func NewAliyunAdapter(ctx context.Context, opts Options) (*AliyunAdapter, error) {
	region := opts.Region
	if region == "" {
		region = "oss-cn-hangzhou"
	}
	client, err := newS3Client(ctx, region, opts)
	if err != nil {
		return nil, err
	}

	return &AliyunAdapter{
		client: client,
		bucket: opts.Bucket,
	}, nil
}

// PutObject 上传对象
func (a *AliyunAdapter) PutObject(ctx context.Context, key string, body io.Reader, size int64, opts UploadOptions) error {
	input := putObjectInput(a.bucket, key, body, size, opts)

	var optFns []func(*s3.Options)
	if opts.StorageClass.IsValid() {
		optFns = append(optFns, s3.WithAPIOptions(
			smithyhttp.AddHeaderValue(aliyunStorageClassHeader, a.mapStorageClass(opts.StorageClass)),
		))
	}

	if _, err := a.client.PutObject(ctx, input, optFns...); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// SupportedStorageClasses 返回支持的存储类型
func (a *AliyunAdapter) SupportedStorageClasses() []StorageClass {
	return []StorageClass{
		StorageClassStandard,
		StorageClassInfrequent,
		StorageClassArchive,
		StorageClassDeepArchive,
	}
}

// mapStorageClass 将通用存储类型映射到阿里云 OSS 的存储类型值
// 阿里云 OSS 存储类型: Standard, IA, Archive, ColdArchive, DeepColdArchive
func (a *AliyunAdapter) mapStorageClass(sc StorageClass) string {
	switch sc {
	case StorageClassStandard:
		return "Standard"
	case StorageClassInfrequent:
		return "IA"
	case StorageClassArchive:
		return "Archive"
	case StorageClassDeepArchive:
		return "ColdArchive"
	default:
		return "Standard"
	}
}

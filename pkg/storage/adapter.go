package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Adapter 定义存储适配器接口
type Adapter interface {
	// PutObject 上传单个对象，size 为 -1 表示长度未知
	PutObject(ctx context.Context, key string, body io.Reader, size int64, opts UploadOptions) error

	// SupportedStorageClasses 获取支持的存储类型
	SupportedStorageClasses() []StorageClass
}

// UploadOptions 上传选项
type UploadOptions struct {
	StorageClass StorageClass
	ContentType  string
	Metadata     map[string]string
}

// Options 创建适配器所需的连接参数
type Options struct {
	Provider  string // aws, qiniu, aliyun
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// NewAdapter 按提供商创建存储适配器
func NewAdapter(ctx context.Context, opts Options) (Adapter, error) {
	switch strings.ToLower(opts.Provider) {
	case "aws", "":
		return NewAWSAdapter(ctx, opts)
	case "qiniu":
		return NewQiniuAdapter(ctx, opts)
	case "aliyun":
		return NewAliyunAdapter(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", opts.Provider)
	}
}

package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// 对象元数据中记录摘要的键
const (
	MetaDigest          = "rst-digest"
	MetaDigestAlgorithm = "rst-digest-algorithm"
)

// MirrorOptions 镜像上传选项
type MirrorOptions struct {
	Prefix          string
	StorageClass    StorageClass
	Digest          string
	DigestAlgorithm string
}

// ObjectKey 由前缀和文件名生成对象键
func ObjectKey(prefix, filePath string) string {
	name := filepath.Base(filePath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Mirror 将接收完成的文件上传到对象存储，返回对象键
func Mirror(ctx context.Context, a Adapter, filePath string, opts MirrorOptions) (string, error) {
	if opts.StorageClass != "" && !Supports(a, opts.StorageClass) {
		return "", fmt.Errorf("storage class %s is not supported by this provider", opts.StorageClass)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file for mirror: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	upload := UploadOptions{
		StorageClass: opts.StorageClass,
		ContentType:  contentType,
	}
	if opts.Digest != "" {
		upload.Metadata = map[string]string{
			MetaDigest:          opts.Digest,
			MetaDigestAlgorithm: opts.DigestAlgorithm,
		}
	}

	key := ObjectKey(opts.Prefix, filePath)
	if err := a.PutObject(ctx, key, f, info.Size(), upload); err != nil {
		return "", err
	}
	return key, nil
}

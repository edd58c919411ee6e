package storage

import (
	"fmt"
	"slices"
	"strings"
)

// StorageClass 存储类型
type StorageClass string

const (
	StorageClassStandard           StorageClass = "STANDARD"
	StorageClassInfrequent         StorageClass = "INFREQUENT_ACCESS"
	StorageClassArchive            StorageClass = "ARCHIVE"
	StorageClassDeepArchive        StorageClass = "DEEP_ARCHIVE"
	StorageClassGlacierIR          StorageClass = "GLACIER_IR"
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"
)

// ParseStorageClass 解析存储类型字符串，空字符串为标准存储
func ParseStorageClass(s string) (StorageClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return StorageClassStandard, nil
	case "ia", "infrequent", "infrequent_access":
		return StorageClassInfrequent, nil
	case "archive":
		return StorageClassArchive, nil
	case "deep_archive":
		return StorageClassDeepArchive, nil
	case "glacier_ir":
		return StorageClassGlacierIR, nil
	case "intelligent", "intelligent_tiering":
		return StorageClassIntelligentTiering, nil
	default:
		return "", fmt.Errorf("unknown storage class: %s", s)
	}
}

// String 返回存储类型的字符串表示
func (sc StorageClass) String() string {
	return string(sc)
}

// IsValid 检查存储类型是否有效
func (sc StorageClass) IsValid() bool {
	switch sc {
	case StorageClassStandard,
		StorageClassInfrequent,
		StorageClassArchive,
		StorageClassDeepArchive,
		StorageClassGlacierIR,
		StorageClassIntelligentTiering:
		return true
	default:
		return false
	}
}

// Supports 检查适配器是否支持该存储类型
func Supports(a Adapter, sc StorageClass) bool {
	return slices.Contains(a.SupportedStorageClasses(), sc)
}

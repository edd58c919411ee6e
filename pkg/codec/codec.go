package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Algorithm 压缩算法
type Algorithm string

const (
	None Algorithm = "none"
	Gzip Algorithm = "gzip"
	Zstd Algorithm = "zstd"
)

// DefaultLevel 使用各算法的默认压缩级别
const DefaultLevel = 0

// ErrFormat 解码器遇到的输入不是匹配的压缩流
var ErrFormat = errors.New("invalid compressed stream")

// ParseAlgorithm 解析算法名称
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", None, "off", "raw":
		return None, nil
	case Gzip, "gz", "deflate":
		return Gzip, nil
	case Zstd, "zst", "zstandard":
		return Zstd, nil
	default:
		return "", fmt.Errorf("unsupported codec: %s", s)
	}
}

// String 返回算法名称
func (a Algorithm) String() string {
	return string(a)
}

// Transform 流式压缩/解压变换
type Transform struct {
	algo  Algorithm
	level int
}

// NewTransform 创建变换，level 为 0 时使用默认级别
func NewTransform(algo Algorithm, level int) (*Transform, error) {
	switch algo {
	case None, "":
		return &Transform{algo: None}, nil
	case Gzip:
		if level != DefaultLevel && (level < gzip.HuffmanOnly || level > gzip.BestCompression) {
			return nil, fmt.Errorf("invalid gzip level: %d", level)
		}
	case Zstd:
		if level < 0 || level > 22 {
			return nil, fmt.Errorf("invalid zstd level: %d", level)
		}
	default:
		return nil, fmt.Errorf("unsupported codec: %s", algo)
	}
	return &Transform{algo: algo, level: level}, nil
}

// Passthrough 返回恒等变换
func Passthrough() *Transform {
	return &Transform{algo: None}
}

// Algorithm 返回算法
func (t *Transform) Algorithm() Algorithm {
	return t.algo
}

// Enabled 是否启用压缩
func (t *Transform) Enabled() bool {
	return t.algo != None
}

// WrapWriter 包装一个 writer 为压缩写入器
// 必须调用 Close 写出尾部，Close 不会关闭底层 writer
func (t *Transform) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	switch t.algo {
	case Gzip:
		level := gzip.DefaultCompression
		if t.level != DefaultLevel {
			level = t.level
		}
		gz, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		return gz, nil
	case Zstd:
		opts := []zstd.EOption{
			zstd.WithEncoderConcurrency(1),
			// 空输入也要输出完整的帧，否则对端无法区分空文件和格式错误
			zstd.WithZeroFrames(true),
		}
		if t.level != DefaultLevel {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(t.level)))
		}
		enc, err := zstd.NewWriter(w, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nopWriteCloser{w}, nil
	}
}

// WrapReader 包装一个 reader 为解压读取器
// 解码器在第一次 Read 时才读取流头，所有错误都从 Read 返回
func (t *Transform) WrapReader(r io.Reader) (io.ReadCloser, error) {
	if t.algo == None {
		return io.NopCloser(r), nil
	}
	return &decodeReader{
		algo: t.algo,
		src:  &sourceReader{r: r},
	}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

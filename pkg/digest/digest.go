package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Algorithm 摘要算法
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	BLAKE2b Algorithm = "blake2b"
)

// Default 默认摘要算法
const Default = SHA256

// BufferSize 校验时每次读取的字节数
const BufferSize = 8192

// ParseAlgorithm 解析算法名称，空字符串返回默认算法
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", SHA256, "sha-256":
		return SHA256, nil
	case BLAKE2b, "blake2b-256", "b2":
		return BLAKE2b, nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm: %s", s)
	}
}

// String 返回算法名称
func (a Algorithm) String() string {
	return string(a)
}

// New 创建对应算法的哈希器
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case SHA256, "":
		return sha256.New(), nil
	case BLAKE2b:
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("unsupported digest algorithm: %s", a)
	}
}

// File 重新打开文件并计算摘要，返回小写十六进制字符串
func File(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for digest: %w", err)
	}
	defer f.Close()

	sum, err := Reader(f, algo)
	if err != nil {
		return "", fmt.Errorf("failed to digest %s: %w", path, err)
	}
	return sum, nil
}

// Reader 以 BufferSize 分块读取 r 直到 EOF 并计算摘要
func Reader(r io.Reader, algo Algorithm) (string, error) {
	h, err := algo.New()
	if err != nil {
		return "", err
	}

	buf := make([]byte, BufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

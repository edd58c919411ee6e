package transfer

import (
	"errors"

	"github.com/lukelzlz/rst/pkg/codec"
)

var (
	// ErrFileNotFound 待发送的文件不存在
	ErrFileNotFound = errors.New("file not found")
	// ErrCreateFailed 无法创建目标文件
	ErrCreateFailed = errors.New("failed to create destination file")
)

// Role 会话角色
type Role int

const (
	RoleSend Role = iota
	RoleReceive
)

// String 返回角色名称
func (r Role) String() string {
	switch r {
	case RoleSend:
		return "send"
	case RoleReceive:
		return "receive"
	default:
		return "unknown"
	}
}

// Session 一次传输会话，每次调用创建一个，不复用
type Session struct {
	Role       Role
	Path       string
	Total      uint64
	TotalKnown bool
	Codec      codec.Algorithm
}

// Compressed 是否启用压缩
func (s Session) Compressed() bool {
	return s.Codec != "" && s.Codec != codec.None
}

// Result 传输结果
type Result struct {
	Session Session
	// Bytes 本端文件读写的字节数
	Bytes uint64
	// Digest 文件摘要（小写十六进制），校验失败时为空
	Digest string
	// DigestErr 校验失败的原因，不影响传输结果
	DigestErr error
}

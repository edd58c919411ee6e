package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 日志选项
type Options struct {
	// Level 基础级别：debug、info、warn、error
	Level string
	// Verbosity -v 出现的次数，1 次提升到 info，2 次及以上提升到 debug
	Verbosity int
	// File 非空时同时写入按大小轮转的日志文件
	File string
	// Writer 终端输出，通常为 os.Stderr
	Writer io.Writer
}

// ParseLevel 解析日志级别，空字符串为 warn
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", s)
	}
}

// EffectiveLevel 合并配置级别与 -v 次数，取更详细的一方
func EffectiveLevel(base slog.Level, verbosity int) slog.Level {
	level := base
	switch {
	case verbosity >= 2:
		level = min(level, slog.LevelDebug)
	case verbosity == 1:
		level = min(level, slog.LevelInfo)
	}
	return level
}

// New 创建日志记录器，返回的 Closer 负责关闭日志文件
func New(opts Options) (*slog.Logger, io.Closer, error) {
	base, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	out := opts.Writer
	if out == nil {
		out = io.Discard
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     0,
			Compress:   false,
		}
		out = io.MultiWriter(out, rotator)
		closer = rotator
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: EffectiveLevel(base, opts.Verbosity),
	})
	return slog.New(handler), closer, nil
}

// Nop 返回丢弃所有输出的记录器
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

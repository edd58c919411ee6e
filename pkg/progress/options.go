package progress

import (
	"fmt"
	"io"
	"strings"
)

// Style 进度显示风格
type Style string

const (
	StyleClassic Style = "classic" // 单行文本进度条
	StyleRich    Style = "rich"    // progressbar 渲染，带速度
	StyleNone    Style = "none"    // 不输出
)

// ParseStyle 解析风格字符串
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleClassic:
		return StyleClassic, nil
	case StyleRich:
		return StyleRich, nil
	case StyleNone, "silent", "quiet":
		return StyleNone, nil
	default:
		return "", fmt.Errorf("unknown progress style: %s", s)
	}
}

// Factory 为一次传输选择报告器变体
type Factory interface {
	// Bounded 已知总量（发送端）
	Bounded(total uint64) Reporter
	// Unbounded 未知总量（接收端）
	Unbounded() Reporter
}

// Options 报告器选项
type Options struct {
	Style  Style
	Width  int
	Writer io.Writer
}

// Bounded 创建已知总量的报告器
func (o Options) Bounded(total uint64) Reporter {
	switch o.Style {
	case StyleNone:
		return NewSilent()
	case StyleRich:
		return NewRich(o.writer(), total, true, o.Width)
	default:
		return NewBar(o.writer(), total, o.Width)
	}
}

// Unbounded 创建未知总量的报告器
func (o Options) Unbounded() Reporter {
	switch o.Style {
	case StyleNone:
		return NewSilent()
	case StyleRich:
		return NewRich(o.writer(), 0, false, o.Width)
	default:
		return NewCounter(o.writer())
	}
}

func (o Options) writer() io.Writer {
	if o.Writer == nil {
		return io.Discard
	}
	return o.Writer
}

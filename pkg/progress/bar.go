package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Bar 已知总量时的进度条（发送端）
type Bar struct {
	w        io.Writer
	total    uint64
	current  uint64
	width    int
	finished bool
}

// NewBar 创建进度条，total 为文件总字节数
func NewBar(w io.Writer, total uint64, width int) *Bar {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Bar{
		w:     w,
		total: total,
		width: width,
	}
}

func (b *Bar) reporter() {}

// Update 增加已发送的字节数并重绘
func (b *Bar) Update(n uint64) {
	b.current += n
	b.render()
}

// Finish 将显示值校正为总量，重绘后换行
func (b *Bar) Finish() {
	b.current = b.total
	b.finished = true
	b.render()
	fmt.Fprintln(b.w)
}

// ratio 返回 [0,1] 内的完成比例，总量为 0 时视为已完成
func (b *Bar) ratio() float64 {
	if b.total == 0 {
		return 1
	}
	r := float64(b.current) / float64(b.total)
	if r > 1 {
		r = 1
	}
	return r
}

// Filled 返回进度条已填充的字符数
func (b *Bar) Filled() int {
	return int(math.Round(b.ratio() * float64(b.width)))
}

// Percent 返回四舍五入后的百分比
func (b *Bar) Percent() int {
	return int(math.Round(b.ratio() * 100))
}

// Current 返回当前显示的字节数
func (b *Bar) Current() uint64 { return b.current }

// Total 返回总字节数
func (b *Bar) Total() uint64 { return b.total }

// Finished 是否已调用 Finish
func (b *Bar) Finished() bool { return b.finished }

// render 覆盖当前行
func (b *Bar) render() {
	filled := b.Filled()
	fmt.Fprintf(b.w, "\r[%s%s] %3d%% %d/%d bytes",
		strings.Repeat("#", filled),
		strings.Repeat("-", b.width-filled),
		b.Percent(),
		b.current,
		b.total,
	)
}

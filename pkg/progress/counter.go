package progress

import (
	"fmt"
	"io"
)

// Counter 未知总量时的字节计数器（接收端）
//
// 线路上没有长度头，接收端无法得知文件大小，因此只显示累计字节数。
type Counter struct {
	w        io.Writer
	current  uint64
	finished bool
}

// NewCounter 创建字节计数器
func NewCounter(w io.Writer) *Counter {
	return &Counter{w: w}
}

func (c *Counter) reporter() {}

// Update 增加已接收的字节数并重绘
func (c *Counter) Update(n uint64) {
	c.current += n
	c.render()
}

// Finish 重绘后换行
func (c *Counter) Finish() {
	c.finished = true
	c.render()
	fmt.Fprintln(c.w)
}

// Current 返回累计字节数
func (c *Counter) Current() uint64 { return c.current }

// Finished 是否已调用 Finish
func (c *Counter) Finished() bool { return c.finished }

func (c *Counter) render() {
	fmt.Fprintf(c.w, "\rReceived: %d bytes", c.current)
}

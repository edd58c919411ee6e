package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Rich 基于 progressbar 的终端进度条，显示速度与耗时
//
// 计数由自身维护，Finish 语义与 Bar/Counter 一致，不依赖库的内部状态。
type Rich struct {
	bar      *progressbar.ProgressBar
	empty    *Bar
	w        io.Writer
	total    uint64
	known    bool
	current  uint64
	finished bool
}

// NewRich 创建进度条；known 为 false 时进入不确定模式
func NewRich(w io.Writer, total uint64, known bool, width int) *Rich {
	if width <= 0 {
		width = DefaultWidth
	}

	max := int64(-1)
	description := "Receiving"
	if known {
		max = int64(total)
		description = "Sending"
	}

	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(width),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "─",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	}
	if known {
		if total == 0 {
			// progressbar 不接受 max 为 0，空文件直接用经典进度条画出 100%
			return &Rich{empty: NewBar(w, 0, width), w: w, known: true}
		}
		// 到达 max 时库会忽略节流强制重绘，只有有界模式可以节流
		opts = append(opts,
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(w, "\n")
			}),
		)
	} else {
		opts = append(opts, progressbar.OptionSpinnerType(14))
	}

	return &Rich{
		bar:   progressbar.NewOptions64(max, opts...),
		w:     w,
		total: total,
		known: known,
	}
}

func (r *Rich) reporter() {}

// Update 增加已传输的字节数
func (r *Rich) Update(n uint64) {
	r.current += n
	if r.empty != nil {
		r.empty.Update(n)
		return
	}
	_ = r.bar.Add64(int64(n))
}

// Finish 标记完成
func (r *Rich) Finish() {
	r.finished = true
	if r.empty != nil {
		r.current = r.total
		r.empty.Finish()
		return
	}
	if r.known {
		r.current = r.total
		_ = r.bar.Finish()
		return
	}
	// 不确定模式下库的 Finish 会把计数置为 -1，这里只做最后一次绘制
	_ = r.bar.Set64(int64(r.current))
	fmt.Fprint(r.w, "\n")
}

// Current 返回当前显示的字节数
func (r *Rich) Current() uint64 { return r.current }

// Finished 是否已调用 Finish
func (r *Rich) Finished() bool { return r.finished }

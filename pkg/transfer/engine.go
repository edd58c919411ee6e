package transfer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/lukelzlz/rst/pkg/codec"
	"github.com/lukelzlz/rst/pkg/digest"
	"github.com/lukelzlz/rst/pkg/logging"
	"github.com/lukelzlz/rst/pkg/progress"
	"github.com/lukelzlz/rst/pkg/stream"
)

const compareNote = "请将上面的摘要与对端输出的摘要进行比对，一致即表示文件完整"

var divider = strings.Repeat("-", 64)

// Options 传输引擎选项
type Options struct {
	// Transform 压缩变换，nil 表示不压缩
	Transform *codec.Transform
	// Digest 校验使用的摘要算法
	Digest digest.Algorithm
	// Progress 为每次会话选择进度报告器
	Progress progress.Factory
	// Out 结果输出（摘要块）
	Out io.Writer
	// Logger 日志记录器
	Logger *slog.Logger
}

// Engine 传输引擎，负责组合文件、压缩变换、复制循环与校验
type Engine struct {
	transform *codec.Transform
	digest    digest.Algorithm
	progress  progress.Factory
	out       io.Writer
	logger    *slog.Logger
}

// NewEngine 创建传输引擎
func NewEngine(opts Options) *Engine {
	e := &Engine{
		transform: opts.Transform,
		digest:    opts.Digest,
		progress:  opts.Progress,
		out:       opts.Out,
		logger:    opts.Logger,
	}
	if e.transform == nil {
		e.transform = codec.Passthrough()
	}
	if e.digest == "" {
		e.digest = digest.Default
	}
	if e.progress == nil {
		e.progress = progress.Options{Style: progress.StyleNone}
	}
	if e.out == nil {
		e.out = io.Discard
	}
	if e.logger == nil {
		e.logger = logging.Nop()
	}
	return e
}

// Send 将 path 的内容经压缩变换写入 sink
//
// sink 支持 CloseWrite 时在数据写完后半关闭，用于通知对端传输结束。
// sink 本身由调用方关闭。
func (e *Engine) Send(path string, sink io.Writer) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, only single files can be sent", path)
	}

	sess := Session{
		Role:       RoleSend,
		Path:       path,
		Total:      uint64(info.Size()),
		TotalKnown: true,
		Codec:      e.transform.Algorithm(),
	}
	e.logger.Debug("send started", "path", path, "size", sess.Total, "codec", sess.Codec)

	w, err := e.transform.WrapWriter(sink)
	if err != nil {
		return nil, err
	}

	n, err := stream.Copy(w, f, e.progress.Bounded(sess.Total))
	if err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to finalize %s stream: %w", stream.ErrWriteFailed, sess.Codec, err)
	}
	if cw, ok := sink.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err != nil {
			return nil, fmt.Errorf("%w: failed to close connection for writing: %w", stream.ErrWriteFailed, err)
		}
	}

	if err := f.Close(); err != nil {
		e.logger.Debug("failed to close source file", "path", path, "error", err)
	}
	e.logger.Info("send complete", "path", path, "bytes", n)

	return e.finish(sess, n), nil
}

// Receive 从 source 读取直到 EOF，经解压变换写入 path
//
// 目标文件会被创建或截断。出错时已写入的部分保留在磁盘上。
func (e *Engine) Receive(path string, source io.Reader) (*Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	defer f.Close()

	sess := Session{
		Role:  RoleReceive,
		Path:  path,
		Codec: e.transform.Algorithm(),
	}
	e.logger.Debug("receive started", "path", path, "codec", sess.Codec)

	r, err := e.transform.WrapReader(source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	n, err := stream.Copy(f, r, e.progress.Unbounded())
	if err != nil {
		return nil, err
	}

	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("%w: failed to sync file: %w", stream.ErrWriteFailed, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to close file: %w", stream.ErrWriteFailed, err)
	}
	e.logger.Info("receive complete", "path", path, "bytes", n)

	return e.finish(sess, n), nil
}

// finish 重新打开文件计算摘要并输出结果块，校验失败只告警
func (e *Engine) finish(sess Session, n uint64) *Result {
	res := &Result{Session: sess, Bytes: n}

	sum, err := digest.File(sess.Path, e.digest)
	if err != nil {
		res.DigestErr = err
		e.logger.Warn("verification failed", "path", sess.Path, "error", err)
	} else {
		res.Digest = sum
	}

	e.printResult(res)
	return res
}

func (e *Engine) printResult(res *Result) {
	verb := "已发送"
	if res.Session.Role == RoleReceive {
		verb = "已接收"
	}
	fmt.Fprintf(e.out, "%s %s (%d 字节)\n", verb, res.Session.Path, res.Bytes)

	if res.DigestErr != nil {
		fmt.Fprintf(e.out, "%s 无法计算摘要: %v\n", color.YellowString("warning:"), res.DigestErr)
		return
	}
	fmt.Fprintf(e.out, "%s: %s\n", e.digest, color.New(color.FgGreen, color.Bold).Sprint(res.Digest))
	fmt.Fprintln(e.out, divider)
	fmt.Fprintln(e.out, compareNote)
}

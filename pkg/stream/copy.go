package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/lukelzlz/rst/pkg/progress"
)

// ChunkSize 每次读写的分块大小
const ChunkSize = 4096

var (
	// ErrReadFailed 从源读取失败
	ErrReadFailed = errors.New("read failed")
	// ErrWriteFailed 向目标写入失败
	ErrWriteFailed = errors.New("write failed")

	errInvalidWrite = errors.New("invalid write result")
)

// Copy 以固定分块从 src 复制到 dst，每写完一块调用 r.Update
//
// 正常结束时恰好调用一次 r.Finish；任何读写错误立即中止，不重试，也不调用 Finish。
func Copy(dst io.Writer, src io.Reader, r progress.Reporter) (uint64, error) {
	buf := make([]byte, ChunkSize)
	var written uint64

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if err := writeFull(dst, buf[:n]); err != nil {
				return written, fmt.Errorf("%w: %w", ErrWriteFailed, err)
			}
			written += uint64(n)
			r.Update(uint64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, fmt.Errorf("%w: %w", ErrReadFailed, rerr)
		}
	}

	r.Finish()
	return written, nil
}

// writeFull 循环写入直到整块写完
func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if n < 0 || n > len(p) {
			return errInvalidWrite
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// sourceReader 记录底层 reader 的读取情况，用于区分传输错误和格式错误
type sourceReader struct {
	r    io.Reader
	n    int64
	errs []error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.n += int64(n)
	if err != nil && err != io.EOF {
		s.errs = append(s.errs, err)
	}
	return n, err
}

// fromSource 判断 err 是否来自底层 reader
func (s *sourceReader) fromSource(err error) bool {
	for _, e := range s.errs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// decodeReader 解压读取器
type decodeReader struct {
	algo Algorithm
	src  *sourceReader
	dec  io.ReadCloser
	err  error
}

// Read 读取并解压数据，只有完整读到压缩流尾部才返回 io.EOF
func (d *decodeReader) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if d.dec == nil {
		if err := d.open(); err != nil {
			d.err = d.classify(err)
			return 0, d.err
		}
	}

	n, err := d.dec.Read(p)
	if err != nil {
		if err == io.EOF && d.src.n == 0 {
			// 没有收到任何字节：对端没有发送压缩流
			err = io.ErrUnexpectedEOF
		}
		if err != io.EOF {
			err = d.classify(err)
		}
		d.err = err
	}
	return n, err
}

// Close 释放解码器，不关闭底层 reader
func (d *decodeReader) Close() error {
	if d.dec == nil {
		return nil
	}
	return d.dec.Close()
}

func (d *decodeReader) open() error {
	switch d.algo {
	case Gzip:
		gz, err := gzip.NewReader(d.src)
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		d.dec = gz
	case Zstd:
		dec, err := zstd.NewReader(d.src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("failed to create zstd reader: %w", err)
		}
		d.dec = dec.IOReadCloser()
	default:
		return fmt.Errorf("unsupported codec: %s", d.algo)
	}
	return nil
}

// classify 将非传输错误包装为 ErrFormat
func (d *decodeReader) classify(err error) error {
	if d.src.fromSource(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrFormat, d.algo, err)
}

package stream

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/lukelzlz/rst/pkg/progress"
)

func randomBytes(size int) []byte {
	data := make([]byte, size)
	rand.New(rand.NewSource(int64(size))).Read(data)
	return data
}

// TestCopyIdentical 测试直通复制得到完全相同的字节
func TestCopyIdentical(t *testing.T) {
	sizes := []int{0, 1, ChunkSize - 1, ChunkSize, ChunkSize + 1, 3*ChunkSize + 5, 1 << 20}

	for _, size := range sizes {
		data := randomBytes(size)
		var dst bytes.Buffer
		rec := progress.NewRecorder()

		n, err := Copy(&dst, bytes.NewReader(data), rec)
		if err != nil {
			t.Fatalf("Copy(%d bytes) error = %v", size, err)
		}
		if n != uint64(size) {
			t.Errorf("Copy returned %d, want %d", n, size)
		}
		if !bytes.Equal(dst.Bytes(), data) {
			t.Errorf("destination differs from source for %d bytes", size)
		}
		if rec.Bytes != uint64(size) {
			t.Errorf("reported %d bytes, want %d", rec.Bytes, size)
		}
		wantChunks := (size + ChunkSize - 1) / ChunkSize
		if rec.UpdateCalls != wantChunks {
			t.Errorf("Update called %d times, want %d", rec.UpdateCalls, wantChunks)
		}
		if rec.FinishCalls != 1 {
			t.Errorf("Finish called %d times, want 1", rec.FinishCalls)
		}
		if rec.UpdateAfterFinish {
			t.Error("Update called after Finish")
		}
	}
}

// TestCopyEmpty 测试空源不进行任何分块迭代
func TestCopyEmpty(t *testing.T) {
	rec := progress.NewRecorder()
	n, err := Copy(io.Discard, bytes.NewReader(nil), rec)
	if err != nil {
		t.Fatalf("Copy error = %v", err)
	}
	if n != 0 || rec.UpdateCalls != 0 {
		t.Errorf("expected zero iterations, got n=%d updates=%d", n, rec.UpdateCalls)
	}
	if rec.FinishCalls != 1 {
		t.Errorf("Finish called %d times, want 1", rec.FinishCalls)
	}
}

type chunkRecorder struct {
	max int
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	if len(p) > c.max {
		c.max = len(p)
	}
	return len(p), nil
}

func TestCopyChunkBound(t *testing.T) {
	w := &chunkRecorder{}
	if _, err := Copy(w, bytes.NewReader(randomBytes(5*ChunkSize)), progress.NewSilent()); err != nil {
		t.Fatalf("Copy error = %v", err)
	}
	if w.max != ChunkSize {
		t.Errorf("largest write = %d, want %d", w.max, ChunkSize)
	}
}

// shortWriter 每次最多接受 limit 字节
type shortWriter struct {
	buf   bytes.Buffer
	limit int
	calls int
}

func (s *shortWriter) Write(p []byte) (int, error) {
	s.calls++
	if len(p) > s.limit {
		p = p[:s.limit]
	}
	return s.buf.Write(p)
}

// TestCopyShortWrites 测试短写会被循环补齐
func TestCopyShortWrites(t *testing.T) {
	data := randomBytes(2*ChunkSize + 17)
	w := &shortWriter{limit: 100}

	if _, err := Copy(w, bytes.NewReader(data), progress.NewSilent()); err != nil {
		t.Fatalf("Copy error = %v", err)
	}
	if !bytes.Equal(w.buf.Bytes(), data) {
		t.Error("short writes lost data")
	}
	if w.calls <= 3 {
		t.Errorf("expected many write calls, got %d", w.calls)
	}
}

type stuckWriter struct{}

func (stuckWriter) Write(p []byte) (int, error) { return 0, nil }

func TestCopyNoProgressWriter(t *testing.T) {
	rec := progress.NewRecorder()
	_, err := Copy(stuckWriter{}, bytes.NewReader([]byte("data")), rec)
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
	if !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("expected io.ErrShortWrite cause, got %v", err)
	}
	if rec.FinishCalls != 0 {
		t.Error("Finish must not be called on failure")
	}
}

type failingWriter struct {
	err   error
	after int
	n     int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n >= f.after {
		return 0, f.err
	}
	f.n += len(p)
	return len(p), nil
}

// TestCopyErrors 测试读写错误立即中止
func TestCopyErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name        string
		dst         io.Writer
		src         io.Reader
		wantErr     error
		wantWritten uint64
	}{
		{
			name:    "read error",
			dst:     io.Discard,
			src:     iotest.ErrReader(boom),
			wantErr: ErrReadFailed,
		},
		{
			name:        "read error after data",
			dst:         io.Discard,
			src:         io.MultiReader(bytes.NewReader(randomBytes(ChunkSize)), iotest.ErrReader(boom)),
			wantErr:     ErrReadFailed,
			wantWritten: ChunkSize,
		},
		{
			name:    "write error",
			dst:     &failingWriter{err: boom},
			src:     bytes.NewReader(randomBytes(10)),
			wantErr: ErrWriteFailed,
		},
		{
			name:        "write error on second chunk",
			dst:         &failingWriter{err: boom, after: ChunkSize},
			src:         bytes.NewReader(randomBytes(3 * ChunkSize)),
			wantErr:     ErrWriteFailed,
			wantWritten: ChunkSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := progress.NewRecorder()
			n, err := Copy(tt.dst, tt.src, rec)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Copy error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, boom) {
				t.Errorf("underlying cause lost: %v", err)
			}
			if n != tt.wantWritten {
				t.Errorf("written = %d, want %d", n, tt.wantWritten)
			}
			if rec.Bytes != tt.wantWritten {
				t.Errorf("reported = %d, want %d", rec.Bytes, tt.wantWritten)
			}
			if rec.FinishCalls != 0 {
				t.Error("Finish must not be called on failure")
			}
		})
	}
}

// TestCopyDataWithEOF 测试读取同时返回数据和 io.EOF 的情况
func TestCopyDataWithEOF(t *testing.T) {
	data := randomBytes(ChunkSize / 2)
	var dst bytes.Buffer

	n, err := Copy(&dst, iotest.DataErrReader(bytes.NewReader(data)), progress.NewSilent())
	if err != nil {
		t.Fatalf("Copy error = %v", err)
	}
	if n != uint64(len(data)) || !bytes.Equal(dst.Bytes(), data) {
		t.Error("data returned together with io.EOF was lost")
	}
}

func TestCopyOneByteReader(t *testing.T) {
	data := randomBytes(300)
	var dst bytes.Buffer
	rec := progress.NewRecorder()

	if _, err := Copy(&dst, iotest.OneByteReader(bytes.NewReader(data)), rec); err != nil {
		t.Fatalf("Copy error = %v", err)
	}
	if rec.UpdateCalls != len(data) {
		t.Errorf("Update called %d times, want %d", rec.UpdateCalls, len(data))
	}
	if !bytes.Equal(dst.Bytes(), data) {
		t.Error("destination differs from source")
	}
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"无协议前缀", "s3.cn-east-1.qiniucs.com", "https://s3.cn-east-1.qiniucs.com"},
		{"已有 HTTPS 前缀", "https://s3.cn-east-1.qiniucs.com", "https://s3.cn-east-1.qiniucs.com"},
		{"已有 HTTP 前缀", "http://127.0.0.1:9000", "http://127.0.0.1:9000"},
		{"空字符串", "", ""},
		{"带空格的端点", "  oss-cn-hangzhou.aliyuncs.com  ", "https://oss-cn-hangzhou.aliyuncs.com"},
		{"大写前缀", "HTTP://minio.local", "HTTP://minio.local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeEndpoint(tt.input); got != tt.expected {
				t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestParseStorageClass 测试存储类型解析
func TestParseStorageClass(t *testing.T) {
	tests := []struct {
		input    string
		expected StorageClass
		wantErr  bool
	}{
		{"", StorageClassStandard, false},
		{"standard", StorageClassStandard, false},
		{"IA", StorageClassInfrequent, false},
		{"infrequent", StorageClassInfrequent, false},
		{"archive", StorageClassArchive, false},
		{"DEEP_ARCHIVE", StorageClassDeepArchive, false},
		{"glacier_ir", StorageClassGlacierIR, false},
		{"intelligent", StorageClassIntelligentTiering, false},
		{"cold", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStorageClass(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseStorageClass(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseStorageClass(%q) = %v, want %v", tt.input, got, tt.expected)
		}
		if !tt.wantErr && !got.IsValid() {
			t.Errorf("ParseStorageClass(%q) returned invalid class %v", tt.input, got)
		}
	}

	if StorageClass("COLD").IsValid() {
		t.Error("unknown storage class should not be valid")
	}
}

func TestStorageClassMapping(t *testing.T) {
	aliyun := &AliyunAdapter{}
	qiniu := &QiniuAdapter{}

	tests := []struct {
		class  StorageClass
		aliyun string
		qiniu  string
	}{
		{StorageClassStandard, "Standard", "STANDARD"},
		{StorageClassInfrequent, "IA", "LINE"},
		{StorageClassArchive, "Archive", "GLACIER"},
		{StorageClassDeepArchive, "ColdArchive", "DEEP_ARCHIVE"},
	}

	for _, tt := range tests {
		if got := aliyun.mapStorageClass(tt.class); got != tt.aliyun {
			t.Errorf("aliyun map %s = %s, want %s", tt.class, got, tt.aliyun)
		}
		if got := qiniu.mapStorageClass(tt.class); got != tt.qiniu {
			t.Errorf("qiniu map %s = %s, want %s", tt.class, got, tt.qiniu)
		}
	}
}

// TestNewAdapter 测试按提供商创建适配器（不发起网络请求）
func TestNewAdapter(t *testing.T) {
	ctx := context.Background()
	base := Options{Bucket: "test-bucket", AccessKey: "test-key", SecretKey: "test-secret"}

	tests := []struct {
		provider string
		endpoint string
		wantErr  bool
	}{
		{"aws", "", false},
		{"", "", false},
		{"AWS", "", false},
		{"aliyun", "oss-cn-hangzhou.aliyuncs.com", false},
		{"qiniu", "s3.cn-east-1.qiniucs.com", false},
		{"qiniu", "", true},
		{"gcp", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.endpoint, func(t *testing.T) {
			opts := base
			opts.Provider = tt.provider
			opts.Endpoint = tt.endpoint

			a, err := NewAdapter(ctx, opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAdapter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !Supports(a, StorageClassStandard) {
				t.Error("every provider should support the standard class")
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "/tmp/report.pdf", "report.pdf"},
		{"incoming", "report.pdf", "incoming/report.pdf"},
		{"/incoming/2024/", "/data/report.pdf", "incoming/2024/report.pdf"},
	}

	for _, tt := range tests {
		if got := ObjectKey(tt.prefix, tt.path); got != tt.want {
			t.Errorf("ObjectKey(%q, %q) = %q, want %q", tt.prefix, tt.path, got, tt.want)
		}
	}
}

// fakeAdapter 记录上传请求的内存适配器
type fakeAdapter struct {
	key     string
	body    []byte
	size    int64
	opts    UploadOptions
	classes []StorageClass
	err     error
}

func (f *fakeAdapter) PutObject(ctx context.Context, key string, body io.Reader, size int64, opts UploadOptions) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.key, f.body, f.size, f.opts = key, data, size, opts
	return nil
}

func (f *fakeAdapter) SupportedStorageClasses() []StorageClass {
	if f.classes != nil {
		return f.classes
	}
	return []StorageClass{StorageClassStandard, StorageClassInfrequent}
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// TestMirror 测试上传文件并在元数据中记录摘要
func TestMirror(t *testing.T) {
	data := []byte("received file content")
	path := writeTemp(t, "notes.txt", data)
	fake := &fakeAdapter{}

	key, err := Mirror(context.Background(), fake, path, MirrorOptions{
		Prefix:          "inbox",
		StorageClass:    StorageClassInfrequent,
		Digest:          "abc123",
		DigestAlgorithm: "sha256",
	})
	if err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}

	if key != "inbox/notes.txt" || fake.key != key {
		t.Errorf("key = %q (adapter saw %q), want inbox/notes.txt", key, fake.key)
	}
	if !bytes.Equal(fake.body, data) || fake.size != int64(len(data)) {
		t.Errorf("uploaded %d bytes (size %d), want %d", len(fake.body), fake.size, len(data))
	}
	if fake.opts.Metadata[MetaDigest] != "abc123" || fake.opts.Metadata[MetaDigestAlgorithm] != "sha256" {
		t.Errorf("unexpected metadata %v", fake.opts.Metadata)
	}
	if fake.opts.StorageClass != StorageClassInfrequent {
		t.Errorf("storage class = %s", fake.opts.StorageClass)
	}
	if fake.opts.ContentType == "" {
		t.Error("content type should be set")
	}
}

func TestMirrorErrors(t *testing.T) {
	path := writeTemp(t, "file.bin", []byte("x"))
	boom := errors.New("access denied")

	if _, err := Mirror(context.Background(), &fakeAdapter{err: boom}, path, MirrorOptions{}); !errors.Is(err, boom) {
		t.Errorf("expected adapter error, got %v", err)
	}
	if _, err := Mirror(context.Background(), &fakeAdapter{}, filepath.Join(t.TempDir(), "missing"), MirrorOptions{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	if _, err := Mirror(context.Background(), &fakeAdapter{}, path, MirrorOptions{StorageClass: StorageClassDeepArchive}); err == nil {
		t.Error("expected error for unsupported storage class")
	}
}

// recordedRequest S3 测试服务器记录的请求
type recordedRequest struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newS3Server(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: body})
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

// TestPutObjectOverHTTP 测试各适配器发出的 PutObject 请求
func TestPutObjectOverHTTP(t *testing.T) {
	tests := []struct {
		provider    string
		class       StorageClass
		classHeader string
		classValue  string
	}{
		{"aws", StorageClassInfrequent, "X-Amz-Storage-Class", "INFREQUENT_ACCESS"},
		{"aliyun", StorageClassArchive, "X-Oss-Storage-Class", "Archive"},
		{"qiniu", StorageClassInfrequent, "X-Amz-Storage-Class", "LINE"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			srv, requests := newS3Server(t)
			a, err := NewAdapter(context.Background(), Options{
				Provider:  tt.provider,
				Endpoint:  srv.URL,
				Region:    "us-east-1",
				Bucket:    "files",
				AccessKey: "test-key",
				SecretKey: "test-secret",
				PathStyle: true,
			})
			if err != nil {
				t.Fatalf("NewAdapter() error = %v", err)
			}

			data := []byte("mirrored payload")
			path := writeTemp(t, "payload.bin", data)
			key, err := Mirror(context.Background(), a, path, MirrorOptions{
				Prefix:          "in",
				StorageClass:    tt.class,
				Digest:          "feedface",
				DigestAlgorithm: "sha256",
			})
			if err != nil {
				t.Fatalf("Mirror() error = %v", err)
			}

			reqs := requests()
			if len(reqs) != 1 {
				t.Fatalf("expected 1 request, got %d", len(reqs))
			}
			req := reqs[0]
			if req.method != http.MethodPut || req.path != "/files/"+key {
				t.Errorf("request = %s %s, want PUT /files/%s", req.method, req.path, key)
			}
			if !bytes.Equal(req.body, data) {
				t.Errorf("body = %q, want %q", req.body, data)
			}
			if got := req.header.Get(tt.classHeader); got != tt.classValue {
				t.Errorf("%s = %q, want %q", tt.classHeader, got, tt.classValue)
			}
			if got := req.header.Get("X-Amz-Meta-" + MetaDigest); got != "feedface" {
				t.Errorf("digest metadata = %q, want feedface", got)
			}
		})
	}
}

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/config"
)

type memStorage struct {
	objects map[string][]byte
	failGet string
}

func (m *memStorage) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for k, v := range m.objects {
		out = append(out, ObjectInfo{Key: k, Size: int64(len(v))})
	}
	return out, nil
}

func (m *memStorage) GetObject(_ context.Context, key string) ([]byte, error) {
	if key == m.failGet {
		return nil, errors.New("boom")
	}
	return m.objects[key], nil
}

func (m *memStorage) UploadObject(_ context.Context, key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func TestLoadInputs(t *testing.T) {
	store := &memStorage{objects: map[string][]byte{
		"exports/b/Outbound 235.xlsx": []byte("x"),
		"exports/a/complaints.csv":    []byte("y"),
		"exports/readme.md":           []byte("z"),
	}}
	inputs, err := LoadInputs(context.Background(), store, "exports")
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 2 {
		t.Fatalf("got %d inputs", len(inputs))
	}
	if inputs[0].Name != "complaints.csv" || string(inputs[0].Data) != "y" || inputs[1].Name != "Outbound 235.xlsx" {
		t.Fatalf("unexpected inputs %+v", inputs)
	}

	store.failGet = "exports/a/complaints.csv"
	if _, err := LoadInputs(context.Background(), store, "exports"); err == nil {
		t.Fatal("expected download error")
	}
}

func TestLocalClient(t *testing.T) {
	ctx := context.Background()
	c, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.UploadObject(ctx, "complaints.csv", []byte("Notification\n1\n")); err != nil {
		t.Fatal(err)
	}
	if err := c.UploadObject(ctx, "notes.pdf", []byte("%PDF")); err != nil {
		t.Fatal(err)
	}

	inputs, err := LoadInputs(ctx, c, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 1 || inputs[0].Name != "complaints.csv" || string(inputs[0].Data) != "Notification\n1\n" {
		t.Fatalf("unexpected inputs %+v", inputs)
	}
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		in         string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"https://s3.example.com/", false, "s3.example.com", true},
		{"http://minio:9000", true, "minio:9000", false},
		{"minio:9000", true, "minio:9000", true},
		{"//minio:9000", false, "minio:9000", false},
	}
	for _, tt := range tests {
		host, secure := splitEndpoint(tt.in, tt.useSSL)
		if host != tt.wantHost || secure != tt.wantSecure {
			t.Errorf("splitEndpoint(%q, %v) = %q, %v", tt.in, tt.useSSL, host, secure)
		}
	}
}

func TestNewMinioClientValidation(t *testing.T) {
	if _, err := NewMinioClient(configWith("", "ak", "sk", "b")); err == nil {
		t.Fatal("expected endpoint error")
	}
	if _, err := NewMinioClient(configWith("minio:9000", "", "sk", "b")); err == nil {
		t.Fatal("expected credentials error")
	}
	if _, err := NewMinioClient(configWith("minio:9000", "ak", "sk", "")); err == nil {
		t.Fatal("expected bucket error")
	}
	if _, err := NewMinioClient(configWith("minio:9000", "ak", "sk", "exports")); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func configWith(endpoint, ak, sk, bucket string) config.StorageConfig {
	return config.StorageConfig{Endpoint: endpoint, AccessKey: ak, SecretKey: sk, Bucket: bucket}
}

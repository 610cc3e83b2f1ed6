package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureScheme(t *testing.T) {
	tests := []struct {
		name       string
		location   string
		wantScheme string
	}{
		{name: "s3 url", location: "s3://bucket/table", wantScheme: "s3"},
		{name: "file url", location: "file:///tmp/table", wantScheme: "file"},
		{name: "bare absolute path", location: "/tmp/table", wantScheme: "file"},
		{name: "bare relative path", location: "table", wantScheme: "file"},
		{name: "memory url", location: "memory://t", wantScheme: "memory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := EnsureScheme(tt.location)
			if err != nil {
				t.Fatalf("EnsureScheme(%q) error: %v", tt.location, err)
			}
			if u.Scheme != tt.wantScheme {
				t.Errorf("scheme = %q, want %q", u.Scheme, tt.wantScheme)
			}
		})
	}
}

func TestEnsureSchemeBarePathIsAbsolute(t *testing.T) {
	u, err := EnsureScheme("some/rel/path")
	if err != nil {
		t.Fatalf("EnsureScheme() error: %v", err)
	}
	if !filepath.IsAbs(u.Path) {
		t.Errorf("path %q not absolute", u.Path)
	}
}

func TestTablePath(t *testing.T) {
	got, err := TablePath("s3://bucket/warehouse/sales/")
	if err != nil {
		t.Fatalf("TablePath() error: %v", err)
	}
	if want := "/warehouse/sales"; got != want {
		t.Errorf("TablePath() = %q, want %q", got, want)
	}
}

func TestResolve(t *testing.T) {
	if _, err := Resolve("/tmp/table", nil); err != nil {
		t.Errorf("Resolve(file) error: %v", err)
	}
	if _, err := Resolve("memory://t", nil); err == nil {
		t.Error("Resolve(memory) expected error")
	}
	if _, err := Resolve("ftp://host/table", nil); err == nil {
		t.Error("Resolve(ftp) expected error for unsupported scheme")
	}
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	content := []byte("hello parquet")
	path := filepath.Join(dir, "sub", "data.parquet")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewLocalStore()
	ctx := context.Background()

	obj, err := store.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer obj.Close()
	if obj.Size() != int64(len(content)) {
		t.Errorf("Size() = %d, want %d", obj.Size(), len(content))
	}
	buf := make([]byte, 5)
	if _, err := obj.ReadAt(buf, 6); err != nil {
		t.Fatalf("ReadAt() error: %v", err)
	}
	if string(buf) != "parqu" {
		t.Errorf("ReadAt() = %q, want %q", buf, "parqu")
	}

	infos, err := store.List(ctx, dir)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("List() returned %d objects, want 1", len(infos))
	}
	if !strings.HasSuffix(infos[0].Path, "data.parquet") {
		t.Errorf("listed path = %q", infos[0].Path)
	}
	if infos[0].Size != int64(len(content)) {
		t.Errorf("listed size = %d, want %d", infos[0].Size, len(content))
	}

	if _, err := store.Open(ctx, filepath.Join(dir, "missing.parquet")); err == nil {
		t.Error("Open() expected error for missing file")
	}
}

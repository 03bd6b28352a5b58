package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/openscripture/bibleapi/core/errors"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"KJV.xml", "kjv"},
		{"english/Web_Bible.xml", "web_bible"},
		{"romanian/cornilescu.xml.xz", "cornilescu"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Identifier(tt.name); got != tt.want {
			t.Errorf("Identifier(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestHashStable(t *testing.T) {
	a := Hash([]byte("content"))
	b := Hash([]byte("content"))
	c := Hash([]byte("other"))
	if a != b {
		t.Error("Hash should be deterministic")
	}
	if a == c {
		t.Error("Hash should differ for different content")
	}
	if len(a) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(a))
	}
}

func TestFSProviderListAndFetch(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "kjv.xml"), []byte("<osis/>"))
	mustWrite(t, filepath.Join(dir, "english", "web.xml"), []byte("<usfx/>"))
	mustWrite(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))

	p, err := NewFSProvider(dir)
	if err != nil {
		t.Fatalf("NewFSProvider failed: %v", err)
	}

	names, err := p.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	sort.Strings(names)
	want := []string{"english/web.xml", "kjv.xml"}
	if len(names) != len(want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	data, err := p.Fetch(context.Background(), "english/web.xml")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "<usfx/>" {
		t.Errorf("Fetch = %q", data)
	}
}

func TestFSProviderFetchMissing(t *testing.T) {
	p, err := NewFSProvider(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSProvider failed: %v", err)
	}
	_, err = p.Fetch(context.Background(), "missing.xml")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fetch missing = %v, want ErrNotFound", err)
	}
}

func TestFSProviderXZ(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz.NewWriter failed: %v", err)
	}
	if _, err := w.Write([]byte("<osis>compressed</osis>")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	mustWrite(t, filepath.Join(dir, "vdc.xml.xz"), buf.Bytes())

	p, err := NewFSProvider(dir)
	if err != nil {
		t.Fatalf("NewFSProvider failed: %v", err)
	}

	names, err := p.List(context.Background())
	if err != nil || len(names) != 1 {
		t.Fatalf("List = %v, %v", names, err)
	}

	data, err := p.Fetch(context.Background(), "vdc.xml.xz")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "<osis>compressed</osis>" {
		t.Errorf("Fetch = %q", data)
	}
}

func TestNewFSProviderMissingDir(t *testing.T) {
	if _, err := NewFSProvider("/nonexistent/path/for/test"); err == nil {
		t.Error("NewFSProvider should fail on missing directory")
	}
}

func mustWrite(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

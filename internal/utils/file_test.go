package utils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"b.jpg", true},
		{"c.jpeg", true},
		{"D.PNG", true},
		{"e.JpEg", true},
		{"f.txt", false},
		{"g.gif", false},
		{"h.webp", false},
		{"png", false},
		{"noext", false},
		{"archive.png.zip", false},
	}

	for _, tt := range tests {
		if got := IsImageFile(tt.name); got != tt.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.jpg", "c.txt", "D.JPEG"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	// A directory with an image-like name must not qualify.
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested.png", "inner.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write inner: %v", err)
	}

	files, err := ListImageFiles(dir)
	if err != nil {
		t.Fatalf("ListImageFiles failed: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	sort.Strings(names)

	want := []string{"D.JPEG", "a.png", "b.jpg"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
			break
		}
	}
}

func TestListImageFilesMissingDir(t *testing.T) {
	if _, err := ListImageFiles(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDirAndFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "x.png")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !DirExists(dir) {
		t.Error("expected DirExists for temp dir")
	}
	if DirExists(file) {
		t.Error("a file is not a directory")
	}
	if DirExists("") {
		t.Error("empty path is not a directory")
	}
	if !FileExists(file) {
		t.Error("expected FileExists for regular file")
	}
	if FileExists(dir) {
		t.Error("a directory is not a regular file")
	}
}

func TestEnsureDirCreatesParents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if !DirExists(dir) {
		t.Error("expected nested directory to exist")
	}
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir should be idempotent: %v", err)
	}
	if err := EnsureDir(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatFileSize(tt.size); got != tt.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

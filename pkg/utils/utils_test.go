package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDirIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "music", "artwork")

	for i := 0; i < 2; i++ {
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() call %d error: %v", i+1, err)
		}
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
}

func TestEnsureDirBlockedByFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "music")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(filepath.Join(blocker, "artwork")); err == nil {
		t.Fatal("expected error when a file sits in the path")
	}
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes", "album.md")
	if err := WriteFileAtomic(path, []byte("old content that is long"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestResolveWithin(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		rel     string
		wantErr bool
	}{
		{"notes/animals.md", false},
		{"animals.md", false},
		{"a/../b.md", false},
		{"../outside.md", true},
		{"notes/../../outside.md", true},
		{"/etc/passwd", true},
		{"", true},
	}

	for _, tt := range tests {
		got, err := ResolveWithin(root, tt.rel)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveWithin(%q) error = %v, wantErr %v", tt.rel, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && filepath.Dir(got) == "" {
			t.Errorf("ResolveWithin(%q) = %q", tt.rel, got)
		}
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.jpg.part")
	dst := filepath.Join(dir, "art", "cover.jpg")
	if err := os.WriteFile(src, []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile() error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after move")
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "jpeg" {
		t.Errorf("dst content = %q", got)
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := MoveFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomic(dir, "a.json", []byte("hello"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("content = %q, want hello", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.json.tmp-") {
			t.Fatalf("temp file left behind: %q", e.Name())
		}
	}
}

func TestWriteFileAtomic_Replaces(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomic(dir, "a", []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(dir, "a", []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "a"))
	if string(b) != "two" {
		t.Fatalf("content = %q, want two", string(b))
	}
}

func TestWriteFileAtomic_RenameFailCleansTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	if err := WriteFileAtomic(dir, "a", []byte("x"), 0o644); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}

func TestMoveNoReplace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")
	if err := os.WriteFile(src, []byte("s"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("d"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := MoveNoReplace(src, dst)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("err = %v, want ErrDestinationExists", err)
	}
	if !Exists(src) {
		t.Fatal("source must survive a refused move")
	}

	if err := os.Remove(dst); err != nil {
		t.Fatal(err)
	}
	if err := MoveNoReplace(src, dst); err != nil {
		t.Fatalf("move: %v", err)
	}
	if Exists(src) || !Exists(dst) {
		t.Fatal("file was not moved")
	}
}

func TestIsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	empty, err := IsEmptyDir(dir)
	if err != nil || !empty {
		t.Fatalf("IsEmptyDir = %v, %v; want true, nil", empty, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	empty, err = IsEmptyDir(dir)
	if err != nil || empty {
		t.Fatalf("IsEmptyDir = %v, %v; want false, nil", empty, err)
	}
	if _, err := IsEmptyDir(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

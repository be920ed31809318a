package osfilesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "a", "b", "test.txt")

	if err := fs.WriteFile(testPath, []byte("hello world")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", data)
	}
}

func TestFileSystem_CreateStreamsAndTruncates(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "out", "frames.bin")

	if err := fs.WriteFile(testPath, []byte("previous contents")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := fs.Create(testPath)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, chunk := range []string{"one", "two"} {
		if _, err := f.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := f.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	size, err := fs.Size(testPath)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != 6 {
		t.Errorf("expected size 6, got %d", size)
	}

	r, err := fs.Open(testPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "onetwo" {
		t.Errorf("expected %q, got %q", "onetwo", data)
	}
}

func TestFileSystem_Rename(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "frames.bin.tmp")
	newPath := filepath.Join(dir, "frames.bin")

	os.WriteFile(oldPath, []byte("new"), 0644)
	os.WriteFile(newPath, []byte("old"), 0644)

	if err := fs.Rename(oldPath, newPath); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if exists, _ := fs.Exists(oldPath); exists {
		t.Error("expected source to be gone")
	}
	data, _ := fs.ReadFile(newPath)
	if string(data) != "new" {
		t.Errorf("expected replaced contents, got %q", data)
	}
}

func TestFileSystem_ExistsAndRemove(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	testPath := filepath.Join(dir, "test.txt")

	if exists, err := fs.Exists(testPath); err != nil || exists {
		t.Fatalf("expected missing file, got exists=%v err=%v", exists, err)
	}

	os.WriteFile(testPath, []byte("test"), 0644)
	if exists, _ := fs.Exists(testPath); !exists {
		t.Fatal("expected file to exist")
	}

	if err := fs.Remove(testPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := fs.Exists(testPath); exists {
		t.Error("expected file to be removed")
	}

	if err := fs.MkdirAll(filepath.Join(dir, "x", "y")); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if exists, _ := fs.Exists(filepath.Join(dir, "x", "y")); !exists {
		t.Error("expected directory to exist")
	}
}

func TestFileSystem_SizeMissing(t *testing.T) {
	if _, err := New().Size(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

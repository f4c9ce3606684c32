package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_CreateReadRemove(t *testing.T) {
	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "spool", "nested")
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	path := filepath.Join(dir, "upload.zip")
	w, err := fsys.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.Write([]byte("PK")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !fsys.Exists(path) {
		t.Fatal("file should exist after Create")
	}
	data, err := fsys.ReadFile(path)
	if err != nil || string(data) != "PK" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}

	if err := fsys.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if fsys.Exists(path) {
		t.Error("file should be gone after Remove")
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("os.Stat after Remove: %v", err)
	}
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	m := NewMemoryFileSystem()

	w, err := m.Create("/spool/a.zip")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w.Write([]byte("hello "))
	w.Write([]byte("world"))

	if data, _ := m.ReadFile("/spool/a.zip"); len(data) != 0 {
		t.Errorf("contents visible before Close: %q", data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := m.ReadFile("/spool/./a.zip")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("ReadFile = %q", data)
	}

	// Returned slices are copies.
	data[0] = 'J'
	again, _ := m.ReadFile("/spool/a.zip")
	if string(again) != "hello world" {
		t.Errorf("ReadFile returned shared buffer: %q", again)
	}
}

func TestMemoryFileSystem_RemoveAndExists(t *testing.T) {
	m := NewMemoryFileSystem()
	if err := m.MkdirAll("/var/spool/weld", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, d := range []string{"/var", "/var/spool", "/var/spool/weld"} {
		if !m.Exists(d) {
			t.Errorf("directory %s should exist", d)
		}
	}

	w, _ := m.Create("/var/spool/weld/x.zip")
	w.Close()
	if got := m.Files(); len(got) != 1 || got[0] != "/var/spool/weld/x.zip" {
		t.Errorf("Files() = %v", got)
	}

	if err := m.Remove("/var/spool/weld/x.zip"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Exists("/var/spool/weld/x.zip") {
		t.Error("file should be removed")
	}

	err := m.Remove("/var/spool/weld/x.zip")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Remove missing = %v, want ErrNotExist", err)
	}
	if _, err := m.ReadFile("/nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile missing = %v, want ErrNotExist", err)
	}
}

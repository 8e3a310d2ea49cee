package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeString(t *testing.T, fsys FileSystem, name, content string) {
	t.Helper()
	err := WriteWith(fsys, name, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
	if err != nil {
		t.Fatalf("WriteWith(%s) failed: %v", name, err)
	}
}

func TestOSFileSystem_RoundTrip(t *testing.T) {
	osfs := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "frames", "run")

	if err := osfs.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory %s, err=%v", dir, err)
	}

	name := filepath.Join(dir, "frame_000000.png")
	writeString(t, osfs, name, "png")
	writeString(t, osfs, name, "jpg")

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "jpg" {
		t.Errorf("expected truncated rewrite %q, got %q", "jpg", data)
	}
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()
	writeString(t, mfs, "/out/a.txt", "old")

	w, err := mfs.Create("/out/a.txt")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	w.Write([]byte("new content"))

	data, _ := mfs.ReadFile("/out/a.txt")
	if len(data) != 0 {
		t.Errorf("expected truncated file before Close, got %q", data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, _ = mfs.ReadFile("/out/a.txt")
	if string(data) != "new content" {
		t.Errorf("expected 'new content', got %q", data)
	}

	// Callers own the returned slice.
	data[0] = 'N'
	again, _ := mfs.ReadFile("/out/a.txt")
	if string(again) != "new content" {
		t.Errorf("ReadFile must return a copy, got %q", again)
	}
}

func TestMemoryFileSystem_MissingFile(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if _, err := mfs.ReadFile("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist from ReadFile, got %v", err)
	}
}

func TestMemoryFileSystem_MkdirAll(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/out/frames/run", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/out", "/out/frames", "/out/frames/run/"} {
		if !mfs.IsDir(dir) {
			t.Errorf("expected %s to be a directory", dir)
		}
	}
	if mfs.IsDir("/out/charts") {
		t.Error("sibling directory was never created")
	}
}

func TestMemoryFileSystem_Files(t *testing.T) {
	mfs := NewMemoryFileSystem()
	writeString(t, mfs, "/out/b.png", "")
	writeString(t, mfs, "/out/a.png", "")
	writeString(t, mfs, "/out/sub/c.png", "")

	got := mfs.Files("/out/")
	want := []string{"/out/a.png", "/out/b.png"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestMemoryFileSystem_ConcurrentCreate(t *testing.T) {
	mfs := NewMemoryFileSystem()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := filepath.Join("/out", string(rune('a'+i%26))+string(rune('0'+i/26))+".png")
			WriteWith(mfs, name, func(w io.Writer) error {
				_, err := w.Write([]byte{byte(i)})
				return err
			})
		}(i)
	}
	wg.Wait()

	if n := len(mfs.Files("/out")); n != 32 {
		t.Errorf("expected 32 files, got %d", n)
	}
}

type failingFS struct {
	*MemoryFileSystem
}

func (f failingFS) Create(name string) (io.WriteCloser, error) {
	return nil, errors.New("disk full")
}

func TestWriteWith_Errors(t *testing.T) {
	err := WriteWith(failingFS{NewMemoryFileSystem()}, "/x", func(io.Writer) error {
		t.Fatal("write must not run when Create fails")
		return nil
	})
	if err == nil || err.Error() != "disk full" {
		t.Errorf("expected create error, got %v", err)
	}

	mfs := NewMemoryFileSystem()
	boom := errors.New("encode failed")
	err = WriteWith(mfs, "/y", func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected write error, got %v", err)
	}
	if _, err := mfs.ReadFile("/y"); err != nil {
		t.Errorf("expected file to be closed and present after failed write, got %v", err)
	}
}

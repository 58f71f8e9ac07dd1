package filelock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewFileLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "report.lock")

	lock := NewFileLock(lockPath)
	if lock == nil {
		t.Fatal("NewFileLock should not return nil")
	}
	if err := lock.Lock(context.Background()); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer lock.Unlock()
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not created at %s: %v", lockPath, err)
	}
}

func TestLockUnlock(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "report.lock"))

	if err := lock.Lock(context.Background()); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Failed to release lock: %v", err)
	}
}

func TestLock_ContextTimeout(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "report.lock")
	holder := NewFileLock(lockPath)
	if err := holder.Lock(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := NewFileLock(lockPath).Lock(ctx)
	if err == nil {
		t.Fatal("expected lock to time out")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "report.txt")

	err := WriteAtomic(target, func(w io.Writer) error {
		_, err := io.WriteString(w, "first\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\n" {
		t.Errorf("content = %q", data)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestWriteAtomic_ErrorKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(target, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("render failed")
	err := WriteAtomic(target, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}

	data, _ := os.ReadFile(target)
	if string(data) != "original" {
		t.Errorf("target modified: %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}

func TestLockAndWrite_Concurrent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "report.txt")

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			errs <- LockAndWrite(context.Background(), target, func(w io.Writer) error {
				for line := 0; line < 100; line++ {
					if _, err := fmt.Fprintf(w, "writer-%d line-%d\n", n, line); err != nil {
						return err
					}
				}
				return nil
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("LockAndWrite failed: %v", err)
		}
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	// Whole-file replacement: exactly one writer's 100 lines survive
	var first string
	fmt.Sscanf(string(data), "%s", &first)
	expected := ""
	for line := 0; line < 100; line++ {
		expected += fmt.Sprintf("%s line-%d\n", first, line)
	}
	if string(data) != expected {
		t.Error("report content was interleaved between writers")
	}
}

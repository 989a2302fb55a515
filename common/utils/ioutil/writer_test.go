package ioutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestProgressWriterAt(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var last int64
	var mu sync.Mutex
	w := NewProgressWriterAt(f, func(written int64) {
		mu.Lock()
		if written > last {
			last = written
		}
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(off int64) {
			defer wg.Done()
			if _, err := w.WriteAt(bytes.Repeat([]byte{'x'}, 8), off*8); err != nil {
				t.Error(err)
			}
		}(int64(i))
	}
	wg.Wait()
	if w.Written() != 32 || last != 32 {
		t.Errorf("written = %d, last callback = %d", w.Written(), last)
	}
}

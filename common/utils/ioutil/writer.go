package ioutil

import (
	"io"
	"sync/atomic"
)

// ProgressWriterAt counts the bytes that pass through WriteAt and reports
// the running total to onWrite. Parts may arrive concurrently.
type ProgressWriterAt struct {
	dst     io.WriterAt
	total   atomic.Int64
	onWrite func(written int64)
}

func NewProgressWriterAt(dst io.WriterAt, onWrite func(written int64)) *ProgressWriterAt {
	return &ProgressWriterAt{dst: dst, onWrite: onWrite}
}

func (w *ProgressWriterAt) WriteAt(p []byte, off int64) (int, error) {
	n, err := w.dst.WriteAt(p, off)
	if n <= 0 {
		return n, err
	}
	sum := w.total.Add(int64(n))
	if w.onWrite != nil {
		w.onWrite(sum)
	}
	return n, err
}

func (w *ProgressWriterAt) Written() int64 { return w.total.Load() }

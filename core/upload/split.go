package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

// PartName returns the file name of the zero-based part idx.
func PartName(name string, idx int) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s.part%03d%s", strings.TrimSuffix(name, ext), idx, ext)
}

func partCaption(caption string, n int) string {
	suffix := fmt.Sprintf("<b>Part: %d</b>", n)
	if caption == "" {
		return suffix
	}
	return caption + "\n\n" + suffix
}

// split cuts the file into PartSize chunks and uploads them in order. Only
// one part exists on disk at a time. The source file is removed at the end.
func (e *Executor) split(ctx context.Context, job Job) ([]tfile.Sent, error) {
	logger := log.FromContext(ctx)
	if job.Notice != nil {
		remove := job.Notice(ctx)
		defer remove()
	}
	defer func() {
		if err := os.Remove(job.File.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove split source", "path", job.File.Path, "error", err)
		}
	}()

	src, err := os.Open(job.File.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for splitting: %w", err)
	}
	defer src.Close()

	dir := filepath.Dir(job.File.Path)
	partSize := e.limits.PartSize
	var (
		sent   []tfile.Sent
		offset int64
	)
	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		partPath := filepath.Join(dir, PartName(job.File.Name, idx))
		n, err := writePart(src, partPath, partSize)
		if err != nil {
			os.Remove(partPath)
			return sent, fmt.Errorf("failed to write part %d: %w", idx, err)
		}
		if n == 0 {
			os.Remove(partPath)
			break
		}
		s, err := e.sendPart(ctx, job, partPath, idx, n, offset)
		if err != nil {
			return sent, err
		}
		sent = append(sent, s)
		offset += n
		if n < partSize {
			break
		}
	}
	logger.Info("Split upload finished", "file", job.File.Name, "parts", len(sent))
	return sent, nil
}

func (e *Executor) sendPart(ctx context.Context, job Job, partPath string, idx int, size, offset int64) (tfile.Sent, error) {
	defer os.Remove(partPath)
	part := tfile.NewOutgoing(partPath, size, media.Document,
		tfile.WithName(filepath.Base(partPath)),
		tfile.WithCaption(partCaption(job.File.Caption, idx+1)),
		tfile.WithMIME(job.File.MIME),
	)
	var progress ProgressFunc
	if job.Progress != nil {
		total := job.File.Size
		progress = func(done, _ int64) {
			job.Progress(offset+done, total)
		}
	}
	s, err := e.primary.SendFile(ctx, job.Target, part, progress)
	if err != nil {
		return tfile.Sent{}, fmt.Errorf("failed to upload part %d: %w", idx, err)
	}
	e.mirrorSent(ctx, s)
	return s, nil
}

func writePart(src io.Reader, path string, limit int64) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.CopyN(f, src, limit)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return n, err
	}
	if err := f.Close(); err != nil {
		return n, err
	}
	return n, nil
}

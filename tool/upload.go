package tool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/moyoez/moneylens-go/types"
)

// NextAvailablePath returns the first path under dir that does not exist, using fileName
// and if it exists, trying base-2.ext, base-3.ext, ... (e.g. txt.txt -> txt-2.txt, txt-3.txt).
func NextAvailablePath(dir, fileName string) string {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(filepath.Base(fileName), ext)
	if base == "" {
		base = fileName
		ext = ""
	}
	try := filepath.Join(dir, fileName)
	if _, err := os.Stat(try); os.IsNotExist(err) {
		return try
	}
	for n := 2; ; n++ {
		try = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, n, ext))
		if _, err := os.Stat(try); os.IsNotExist(err) {
			return try
		}
	}
}

// CopyWithContext copies from src to dst while respecting context cancellation.
func CopyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 256*1024)
	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if writeErr == nil {
					writeErr = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)
			if writeErr != nil {
				return written, writeErr
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}

// ArtifactSaver delivers export artifacts by writing them into Dir.
// Existing files are never overwritten; a numbered name is picked instead.
type ArtifactSaver struct {
	Dir string
}

func NewArtifactSaver(dir string) *ArtifactSaver {
	if dir == "" {
		dir = "."
	}
	return &ArtifactSaver{Dir: dir}
}

// Deliver writes data as fileName and returns where it landed.
func (s *ArtifactSaver) Deliver(ctx context.Context, fileName string, data []byte) (types.Artifact, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return types.Artifact{}, fmt.Errorf("failed to create download folder: %w", err)
	}
	target := NextAvailablePath(s.Dir, filepath.Base(fileName))
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("failed to create %s: %w", target, err)
	}
	n, copyErr := CopyWithContext(ctx, f, bytes.NewReader(data))
	if closeErr := f.Close(); closeErr != nil && copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		if rmErr := os.Remove(target); rmErr != nil {
			DefaultLogger.Warnf("Failed to remove partial download %s: %v", target, rmErr)
		}
		return types.Artifact{}, fmt.Errorf("failed to write %s: %w", target, copyErr)
	}
	DefaultLogger.Infof("Saved %s (%d bytes)", target, n)
	return types.Artifact{FileName: filepath.Base(target), Path: target, Size: int(n)}, nil
}

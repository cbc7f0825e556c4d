package imports

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
)

var archiveImageExt = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|gif|webp)$`)

// BuildArchivePool reads every image entry of a zip archive into a pool, in
// archive order. Directories, macOS resource forks and dot-files are skipped.
func BuildArchivePool(data []byte) (*ImagePool, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	pool := NewImagePool()
	position := 0
	for _, f := range zr.File {
		if !isArchiveImage(f) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		pool.AddArchiveEntry(f.Name, position, buf)
		position++
	}
	return pool, nil
}

func isArchiveImage(f *zip.File) bool {
	name := strings.ReplaceAll(f.Name, "\\", "/")
	if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
		return false
	}
	if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), ".") {
		return false
	}
	return archiveImageExt.MatchString(name)
}

// Package archive packages rendered files into a zip stream.
package archive

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/klauspost/compress/zip"
)

// File is one archive entry.
type File struct {
	Name     string
	Content  []byte
	Modified time.Time
}

// Write streams files to w as a zip archive. Entry names use forward slashes and may not
// repeat.
func Write(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		name := path.Clean(f.Name)
		if name == "." || path.IsAbs(name) {
			zw.Close()
			return fmt.Errorf("invalid archive entry name %q", f.Name)
		}
		if seen[name] {
			zw.Close()
			return fmt.Errorf("duplicate archive entry %q", name)
		}
		seen[name] = true

		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		}
		if header.Modified.IsZero() {
			header.Modified = time.Now()
		}

		entry, err := zw.CreateHeader(header)
		if err != nil {
			zw.Close()
			return fmt.Errorf("failed to create entry %s: %w", name, err)
		}
		if _, err := entry.Write(f.Content); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

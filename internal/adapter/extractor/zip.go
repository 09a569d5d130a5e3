package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"create-stencil/internal/adapter/lifecycle"
	"create-stencil/internal/domain"
)

// ZipExtractor unpacks starter archives. Hosted archives wrap their content
// in a single top-level "<repo>-<branch>/" directory which is stripped; an
// archive without one is unpacked as is.
type ZipExtractor struct {
	logger domain.Logger
}

// NewZipExtractor creates an extractor for zip archives held in memory.
func NewZipExtractor(logger domain.Logger) *ZipExtractor {
	return &ZipExtractor{logger: logger}
}

// Extract unpacks archive into targetDir, which must not exist yet. Every
// entry is validated before anything is written, and a failed extraction
// removes targetDir again.
func (e *ZipExtractor) Extract(archive []byte, targetDir string) error {
	if _, err := os.Stat(targetDir); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrProjectExists, targetDir)
	}

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		clean := path.Clean(strings.TrimPrefix(f.Name, "/"))
		if clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("archive entry %q escapes destination", f.Name)
		}
		names[i] = clean
	}
	root := sharedRoot(names)

	e.logger.Debug("extracting archive", "files", len(zr.File), "root", root, "target", targetDir)

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}
	for i, f := range zr.File {
		if err := extractFile(f, relativeTo(names[i], root), targetDir); err != nil {
			if rmErr := lifecycle.RemoveTree(targetDir); rmErr != nil {
				e.logger.Debug("partial extraction left behind", "path", targetDir, "err", rmErr)
			}
			return err
		}
	}

	e.logger.Debug("extraction complete", "path", targetDir)
	return nil
}

func extractFile(f *zip.File, rel, destDir string) error {
	if rel == "" || rel == "." {
		return nil
	}
	dest := filepath.Join(destDir, filepath.FromSlash(rel))
	if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes destination", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", rel, err)
	}
	_, copyErr := io.Copy(out, rc)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", rel, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", rel, closeErr)
	}
	return nil
}

// sharedRoot returns the single top-level directory every entry lives under,
// or "" when the entries do not share one.
func sharedRoot(names []string) string {
	root := ""
	nested := false
	for _, name := range names {
		first, _, hasRest := strings.Cut(name, "/")
		if root == "" {
			root = first
		} else if first != root {
			return ""
		}
		nested = nested || hasRest
	}
	if !nested {
		return ""
	}
	return root
}

// relativeTo strips root from name. The root entry itself maps to "".
func relativeTo(name, root string) string {
	if root == "" {
		return name
	}
	if name == root {
		return ""
	}
	return strings.TrimPrefix(name, root+"/")
}

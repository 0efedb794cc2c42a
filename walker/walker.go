// Package walker performs a bounded, deterministic filesystem walk of a
// cloned plugin repository, enforcing size and file-count caps before the
// scanner is allowed to read anything.
package walker

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PJuniszewski/juni-tools-marketplace/pattern"
)

// File is one regular file discovered under the repo root.
type File struct {
	Path string // relative to repo root, slash-separated
	Size int64
}

// Result is the walker's output: the accepted files plus any non-fatal
// observations (symlinks).
type Result struct {
	Files       []File
	TotalSize   int64
	SymlinkWarn []string
}

// Walk traverses root following the caps and skip rules constants in
// package pattern. It returns a hard error the first time a cap is
// exceeded or a disallowed/binary file is found; the caller (the
// orchestrator) turns that into a ResourceCap PluginResult error.
func Walk(root string) (*Result, error) {
	res := &Result{}

	err := fs.WalkDir(os.DirFS(root), ".", func(relPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", relPath, err)
		}
		if relPath == "." {
			return nil
		}
		name := d.Name()

		if d.Type()&fs.ModeSymlink != 0 {
			res.SymlinkWarn = append(res.SymlinkWarn, relPath)
			return nil
		}

		if d.IsDir() {
			if pattern.SkipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", relPath, err)
		}

		if len(res.Files) >= pattern.MaxFiles {
			return fmt.Errorf("repo exceeds MAX_FILES cap of %d", pattern.MaxFiles)
		}
		if info.Size() > pattern.MaxFileSize {
			return fmt.Errorf("file %s exceeds MAX_FILE_SIZE cap of %d bytes", relPath, pattern.MaxFileSize)
		}

		ext := strings.ToLower(filepath.Ext(name))
		if pattern.DisallowedExtensions[ext] {
			return fmt.Errorf("file %s has disallowed extension %q", relPath, ext)
		}

		if !pattern.TextExtensions[ext] {
			isBinary, err := probeBinary(filepath.Join(root, relPath))
			if err != nil {
				return fmt.Errorf("probe %s: %w", relPath, err)
			}
			if isBinary {
				return fmt.Errorf("file %s looks binary", relPath)
			}
		}

		res.TotalSize += info.Size()
		if res.TotalSize > pattern.MaxRepoSize {
			return fmt.Errorf("repo exceeds MAX_REPO_SIZE cap of %d bytes", pattern.MaxRepoSize)
		}

		res.Files = append(res.Files, File{Path: filepath.ToSlash(relPath), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// probeBinary reads up to 4096 bytes of path and applies the NUL-byte /
// non-printable-ratio heuristic from the detection contract.
func probeBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 4096)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	buf = buf[:n]

	if bytes.IndexByte(buf, 0) != -1 {
		return true, nil
	}
	if n == 0 {
		return false, nil
	}

	nonPrintable := 0
	for _, b := range buf {
		if b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if b < 0x20 || b > 0x7E {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(n) > 0.35, nil
}

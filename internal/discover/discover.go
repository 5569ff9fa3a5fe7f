// Package discover finds the files a counting run will process: a recursive
// walk of the root directory filtered by file extension.
package discover

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
)

// Files walks root recursively and returns the paths of regular files whose
// extension is in exts. Extensions are matched exactly (case-sensitive) and
// may be given with or without the leading dot, so "c" and ".c" are the same.
//
// A root that cannot be accessed is an error; problems below the root (an
// unreadable subdirectory, a file vanishing mid-walk) are logged and skipped
// so one bad corner of the tree does not abort the run.
func Files(root string, exts []string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("scanning %s: %w", root, err)
			}
			log.Printf("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if want[filepath.Ext(path)] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

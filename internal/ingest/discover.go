package ingest

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// discover returns the slash-separated paths under dir matching any include
// pattern and no exclude pattern, sorted.
func discover(dir string, include, exclude []string) ([]string, error) {
	fsys := os.DirFS(dir)
	seen := make(map[string]struct{})
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		excluded, err := matchAny(exclude, path)
		if err != nil {
			return nil, err
		}
		if !excluded {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

func matchAny(patterns []string, path string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

package parts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"bookbinder/internal/merge"
)

// Discover returns the ADTS part files directly under dir, sorted naturally
// so that "part2" precedes "part10". Providers number parts without zero
// padding, which breaks plain lexical ordering.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read parts directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".aac") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	collator := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
	sort.SliceStable(paths, func(i, j int) bool {
		return collator.CompareString(filepath.Base(paths[i]), filepath.Base(paths[j])) < 0
	})
	return paths, nil
}

// ReadFailure records one part that could not be read. Failures are reported
// alongside the loaded sources; a bad disk sector in one part must not abort
// the whole batch.
type ReadFailure struct {
	Path string
	Err  error
}

// Load reads every path into a merge source, assigning OrderIndex by list
// position. Unreadable parts are returned as failures and skipped. The
// context is checked between files.
func Load(ctx context.Context, paths []string) ([]merge.Source, []ReadFailure, error) {
	sources := make([]merge.Source, 0, len(paths))
	var failures []ReadFailure

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, ReadFailure{Path: path, Err: err})
			continue
		}
		sources = append(sources, merge.Source{
			Path:       path,
			OrderIndex: i,
			Data:       data,
		})
	}
	return sources, failures, nil
}

// Titles derives a chapter title for each source from its file stem.
func Titles(sources []merge.Source) map[int]string {
	titles := make(map[int]string, len(sources))
	for _, source := range sources {
		base := filepath.Base(source.Path)
		titles[source.OrderIndex] = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return titles
}

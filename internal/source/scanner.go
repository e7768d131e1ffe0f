package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks dir and returns every importable expense file, sorted by path.
// A missing directory yields no files and no error. Hidden files and
// directories are skipped.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// Excel lock files look like "~$book.xlsx".
		if strings.HasPrefix(name, "~$") {
			return nil
		}
		format, ok := FormatFromExt(filepath.Ext(name))
		if !ok {
			return nil
		}
		files = append(files, DiscoveredFile{Path: path, Format: format})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Discover returns a DiscoveredFile for a single path, inferring the format
// from its extension.
func Discover(path string) (DiscoveredFile, bool) {
	format, ok := FormatFromExt(filepath.Ext(path))
	if !ok {
		return DiscoveredFile{}, false
	}
	return DiscoveredFile{Path: path, Format: format}, true
}

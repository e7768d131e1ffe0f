package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/cbudget/internal/source"
	"github.com/theirongolddev/cbudget/internal/store"
)

// ImportResult extends LoadResult with change-tracking metadata.
type ImportResult struct {
	LoadResult
	Unchanged int
	Imported  int
	Forgotten int
}

// Import parses files and stores their expenses. Unless force is set, files
// whose mtime and size match the tracked record are skipped. Re-importing a
// file replaces the rows it produced last time.
func Import(st *store.Store, files []source.DiscoveredFile, force bool, progressFn ProgressFunc) (*ImportResult, error) {
	result := &ImportResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading import tracker: %w", err)
	}

	type stamp struct{ mtime, size int64 }
	var (
		changed []source.DiscoveredFile
		stamps  []stamp
	)
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			result.Errors = append(result.Errors, err)
			continue
		}
		prev, ok := tracked[f.Path]
		if !force && ok && prev.MtimeNs == info.ModTime().UnixNano() && prev.SizeBytes == info.Size() {
			result.Unchanged++
			continue
		}
		changed = append(changed, f)
		stamps = append(stamps, stamp{info.ModTime().UnixNano(), info.Size()})
	}

	if len(changed) == 0 {
		return result, nil
	}

	results := parseAll(changed, result.Unchanged, len(files), progressFn)
	for i, pr := range results {
		result.add(pr)
		if pr.Err != nil {
			continue
		}
		if err := st.SaveImport(changed[i].Path, pr.Expenses, stamps[i].mtime, stamps[i].size); err != nil {
			return nil, fmt.Errorf("saving %s: %w", changed[i].Path, err)
		}
		result.Imported++
	}

	return result, nil
}

// ImportDir scans dir and imports new or changed files. Tracked files under
// dir that no longer exist have their expenses removed.
func ImportDir(st *store.Store, dir string, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result, err := Import(st, files, false, progressFn)
	if err != nil {
		return nil, err
	}

	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading import tracker: %w", err)
	}
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f.Path] = struct{}{}
	}
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	for path := range tracked {
		if _, ok := present[path]; ok || !strings.HasPrefix(path, prefix) {
			continue
		}
		if err := st.ForgetImport(path); err != nil {
			return nil, fmt.Errorf("forgetting %s: %w", path, err)
		}
		result.Forgotten++
	}

	return result, nil
}

package pipeline

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/source"
)

// LoadResult holds the output of parsing a set of expense files.
type LoadResult struct {
	Expenses    []model.Expense
	TotalFiles  int
	ParsedFiles int
	FileErrors  int
	BadDates    int
	Errors      []error
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load parses every file with a bounded worker pool. Per-file failures are
// counted and collected, never returned.
func Load(files []source.DiscoveredFile, progressFn ProgressFunc) *LoadResult {
	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result
	}

	results := parseAll(files, 0, len(files), progressFn)
	for _, pr := range results {
		result.add(pr)
	}
	return result
}

func (r *LoadResult) add(pr source.ParseResult) {
	if pr.Err != nil {
		r.FileErrors++
		r.Errors = append(r.Errors, pr.Err)
		return
	}
	r.ParsedFiles++
	r.BadDates += pr.BadDates
	r.Expenses = append(r.Expenses, pr.Expenses...)
}

// parseAll parses files in parallel, keeping results in input order. offset
// and total shape the numbers passed to progressFn.
func parseAll(files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	results := make([]source.ParseResult, len(files))
	var processed atomic.Int64

	var g errgroup.Group
	g.SetLimit(numWorkers)
	for i := range files {
		i := i // per-iteration copy; go directive is 1.21
		g.Go(func() error {
			results[i] = source.ParseFile(files[i])
			n := processed.Add(1)
			if progressFn != nil {
				progressFn(offset+int(n), total)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

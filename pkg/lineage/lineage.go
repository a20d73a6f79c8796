// Package lineage extracts table lineage from loosely Teradata-flavored
// SQL scripts: which tables a script reads from and which tables or
// views it defines. It is built on a lightweight tokenizer and a
// stateful reference scan rather than a full SQL grammar, trading
// dialect-complete correctness for robustness: extraction is total over
// any input, and an ambiguous identifier is omitted rather than
// misclassified.
package lineage

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// ExtractionResult holds the two table sets extracted from one script.
// Names are deduplicated, lowercase, sorted, and either "name" or
// "schema.name". The sets may overlap: a script can create a table and
// then query it.
type ExtractionResult struct {
	SourceTables  []string `json:"source_tables"`
	DefinedTables []string `json:"defined_tables"`
}

// FileError reports a per-file failure from ExtractFile or ExtractMany.
// There is no parse error type: scanning is total by construction, so
// the only failure mode is being unable to read the input at all.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Extract scans sql and returns the source tables (referenced via FROM,
// JOIN, INTO, USING) and defined tables (CREATE ... TABLE|VIEW). It
// never fails; malformed or dialect-foreign SQL degrades to partial or
// empty results.
func Extract(sql string) *ExtractionResult {
	if !utf8.ValidString(sql) {
		sql = strings.ToValidUTF8(sql, string(utf8.RuneError))
	}

	sources := make(map[string]struct{})
	defined := make(map[string]struct{})
	for _, stmt := range SplitStatements(Tokenize(sql)) {
		scanDefinitions(stmt, defined)
		scanReferences(stmt, sources)
	}

	return &ExtractionResult{
		SourceTables:  sortedNames(sources),
		DefinedTables: sortedNames(defined),
	}
}

// ExtractFile reads path and extracts lineage from its contents. On
// read failure it returns an empty result alongside a *FileError, so
// the result is always usable.
func ExtractFile(path string) (*ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ExtractionResult{}, &FileError{Path: path, Err: err}
	}
	return Extract(string(data)), nil
}

// BatchResult holds per-file extraction results for one batch call.
// Every requested path has an entry in Results; unreadable files carry
// an empty result there and their error in Errors.
type BatchResult struct {
	Results map[string]*ExtractionResult
	Errors  map[string]error
}

// ExtractMany extracts lineage from every path, fanning out across up
// to workers goroutines (GOMAXPROCS when workers <= 0). Extraction per
// file is pure and independent, so a file that cannot be read never
// aborts the batch. Cancelling ctx skips files not yet started.
func ExtractMany(ctx context.Context, paths []string, workers int) *BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	batch := &BatchResult{
		Results: make(map[string]*ExtractionResult, len(paths)),
		Errors:  make(map[string]error),
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, path := range paths {
		g.Go(func() error {
			var (
				res *ExtractionResult
				err error
			)
			if err = ctx.Err(); err != nil {
				res = &ExtractionResult{}
			} else {
				res, err = ExtractFile(path)
			}

			mu.Lock()
			batch.Results[path] = res
			if err != nil {
				batch.Errors[path] = err
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // workers report per-file errors through the batch
	return batch
}

// sortedNames returns the collected names as a sorted slice.
func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

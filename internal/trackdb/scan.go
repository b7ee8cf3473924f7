package trackdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SupportedScanFormats lists the audio file extensions ScanDirectory
// recognises.
var SupportedScanFormats = []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a"}

func isSupportedScanFormat(ext string) bool {
	lower := strings.ToLower(ext)
	for _, f := range SupportedScanFormats {
		if lower == f {
			return true
		}
	}
	return false
}

// ScanResult holds the outcome of ScanDirectory: every track appended
// to the database and any per-file errors encountered along the way.
// A file that fails to insert (e.g. the database is full) is recorded
// here rather than aborting the rest of the scan.
type ScanResult struct {
	Inserted []uint64
	Errors   map[string]error
}

// ScanDirectory walks dir recursively and appends every supported
// audio file it finds to db, in sorted path order, tagging each with
// metadata read via ResolveMetadata. Individual file errors don't
// abort the scan; they're collected in ScanResult.Errors.
func ScanDirectory(db *Database, dir string) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access music directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dir)
	}

	var paths []string
	err = filepath.Walk(dir, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		if isSupportedScanFormat(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", dir, err)
	}
	sort.Strings(paths)

	result := &ScanResult{Errors: make(map[string]error)}
	last := IDNone
	for _, path := range paths {
		uri := "file://" + path
		id, err := db.Insert(last, uri, ResolveMetadata(uri, ""))
		if err != nil {
			result.Errors[path] = err
			continue
		}
		result.Inserted = append(result.Inserted, id)
		last = id
	}
	return result, nil
}

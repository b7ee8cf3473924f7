package trackdb

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanDirectoryInsertsSupportedFilesInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.wav", "a.mp3", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	db := NewDatabase()
	result, err := ScanDirectory(db, dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(result.Inserted) != 2 {
		t.Fatalf("expected 2 tracks inserted, got %d", len(result.Inserted))
	}

	ids, _ := db.Snapshot()
	first, _ := db.GetByID(ids[0])
	second, _ := db.GetByID(ids[1])
	if filepath.Base(first.URI) != "a.mp3" || filepath.Base(second.URI) != "b.wav" {
		t.Fatalf("expected sorted path order, got %q then %q", first.URI, second.URI)
	}
}

func TestScanDirectoryRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.mp3")
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ScanDirectory(NewDatabase(), file); err == nil {
		t.Fatal("expected an error scanning a non-directory path")
	}
}

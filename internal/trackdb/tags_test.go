package trackdb

import "testing"

func TestResolveMetadataKeepsExplicitValue(t *testing.T) {
	got := ResolveMetadata("file:///song.flac", "already set")
	if got != "already set" {
		t.Fatalf("expected explicit metadata to pass through, got %q", got)
	}
}

func TestResolveMetadataLeavesRemoteURIAlone(t *testing.T) {
	got := ResolveMetadata("http://example.com/song.mp3", "")
	if got != "" {
		t.Fatalf("expected empty metadata for a remote uri, got %q", got)
	}
}

func TestResolveMetadataMissingFileReturnsEmpty(t *testing.T) {
	got := ResolveMetadata("file:///does/not/exist.flac", "")
	if got != "" {
		t.Fatalf("expected empty metadata for an unreadable file, got %q", got)
	}
}

func TestLocalFilePathHandlesPlainPathsAndFileURIs(t *testing.T) {
	if path, ok := localFilePath("/music/a.wav"); !ok || path != "/music/a.wav" {
		t.Fatalf("plain path: got %q, %v", path, ok)
	}
	if path, ok := localFilePath("file:///music/a%20b.wav"); !ok || path != "/music/a b.wav" {
		t.Fatalf("file uri: got %q, %v", path, ok)
	}
	if _, ok := localFilePath("http://example.com/a.wav"); ok {
		t.Fatal("expected http uri to be rejected")
	}
}

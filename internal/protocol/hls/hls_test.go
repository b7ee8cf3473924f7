package hls

import (
	"net/url"
	"testing"
)

func TestResolveAbsolute(t *testing.T) {
	base, _ := url.Parse("https://cdn.example.com/stream/playlist.m3u8")
	got := resolve(base, "https://other.example.com/seg1.ts")
	if got != "https://other.example.com/seg1.ts" {
		t.Fatalf("expected absolute uri passed through, got %q", got)
	}
}

func TestResolveRelative(t *testing.T) {
	base, _ := url.Parse("https://cdn.example.com/stream/playlist.m3u8")
	got := resolve(base, "seg1.ts")
	want := "https://cdn.example.com/stream/seg1.ts"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSupports(t *testing.T) {
	p := New()
	if !p.Supports("https://cdn.example.com/a.m3u8") {
		t.Fatalf("expected .m3u8 uri to be supported")
	}
	if p.Supports("https://cdn.example.com/a.mp3") {
		t.Fatalf("did not expect .mp3 uri to be supported")
	}
}

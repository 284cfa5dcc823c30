package playlist_test

import (
	"strings"
	"testing"

	"github.com/tanq16/hlsget/internal/playlist"
)

func TestParseCountsNonCommentLines(t *testing.T) {
	content := strings.Join([]string{
		"#EXTM3U",
		"#EXT-X-TARGETDURATION:10",
		"",
		"seg0.ts",
		"#EXTINF:9.8,",
		"seg1.ts",
		"   ",
		"seg2.ts",
		"#EXT-X-ENDLIST",
	}, "\n")
	locators, err := playlist.Parse(content, "/videos/stream")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(locators) != 3 {
		t.Fatalf("expected 3 locators, got %d", len(locators))
	}
	for i, locator := range locators {
		if locator.Index != i {
			t.Fatalf("expected index %d, got %d", i, locator.Index)
		}
	}
}

func TestParseResolvesAgainstManifestDirectory(t *testing.T) {
	content := "#EXTM3U\nseg0.ts\nseg1.ts\nseg2.ts\n"
	locators, err := playlist.Parse(content, "/videos/stream")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []string{
		"/videos/stream/seg0.ts",
		"/videos/stream/seg1.ts",
		"/videos/stream/seg2.ts",
	}
	if len(locators) != len(want) {
		t.Fatalf("expected %d locators, got %d", len(want), len(locators))
	}
	for i, locator := range locators {
		if locator.URL != want[i] {
			t.Fatalf("locator %d: got %q want %q", i, locator.URL, want[i])
		}
	}
}

func TestParseKeepsAbsoluteURLs(t *testing.T) {
	content := "https://cdn.example.com/a/seg0.ts\nhttp://cdn.example.com/a/seg1.ts\n"
	locators, err := playlist.Parse(content, "/videos/stream")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if locators[0].URL != "https://cdn.example.com/a/seg0.ts" {
		t.Fatalf("absolute URL was rewritten: %q", locators[0].URL)
	}
	if locators[1].URL != "http://cdn.example.com/a/seg1.ts" {
		t.Fatalf("absolute URL was rewritten: %q", locators[1].URL)
	}
}

func TestParseResolvesAgainstManifestURL(t *testing.T) {
	content := "seg0.ts\n../other/seg1.ts\n"
	locators, err := playlist.Parse(content, "https://cdn.example.com/v/hd/playlist.m3u8")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if locators[0].URL != "https://cdn.example.com/v/hd/seg0.ts" {
		t.Fatalf("unexpected resolved URL: %q", locators[0].URL)
	}
	if locators[1].URL != "https://cdn.example.com/v/other/seg1.ts" {
		t.Fatalf("unexpected resolved URL: %q", locators[1].URL)
	}
}

func TestExtractID(t *testing.T) {
	content := "#EXTM3U\nhttps://cdn.example.com/media_show_123_456/seg0.ts\n"
	id, ok := playlist.ExtractID(content)
	if !ok {
		t.Fatal("expected an ID to be extracted")
	}
	if id != "show_123" {
		t.Fatalf("unexpected ID: got %q want %q", id, "show_123")
	}
}

func TestExtractIDNoMatch(t *testing.T) {
	content := "#EXTM3U\nseg0.ts\nseg1.ts\n"
	if id, ok := playlist.ExtractID(content); ok {
		t.Fatalf("expected no ID, got %q", id)
	}
}

func TestFallbackIDStableAndDistinct(t *testing.T) {
	a := playlist.FallbackID("seg0.ts\nseg1.ts\n")
	b := playlist.FallbackID("seg0.ts\nseg1.ts\n")
	c := playlist.FallbackID("other0.ts\n")
	if !strings.HasPrefix(a, "stream_") {
		t.Fatalf("unexpected fallback ID format: %q", a)
	}
	if a != b {
		t.Fatalf("same manifest produced different fallback IDs: %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("distinct manifests collided on fallback ID %q", a)
	}
}

package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tanq16/hlsget/internal/utils"
)

func TestParseHeaderArgs(t *testing.T) {
	headers := utils.ParseHeaderArgs([]string{
		"Authorization: Bearer token",
		"X-Custom:value",
		"malformed-header",
	})
	if len(headers) != 2 {
		t.Fatalf("expected 2 parsed headers, got %d", len(headers))
	}
	if headers["Authorization"] != "Bearer token" {
		t.Fatalf("unexpected Authorization value: %q", headers["Authorization"])
	}
	if headers["X-Custom"] != "value" {
		t.Fatalf("unexpected X-Custom value: %q", headers["X-Custom"])
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
	}
	for _, tc := range cases {
		if got := utils.FormatBytes(tc.in); got != tc.want {
			t.Fatalf("FormatBytes(%d): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestReadBatchList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.yaml")
	content := `- manifest: /videos/a.m3u8
  output: a.mp4
- manifest: https://cdn.example.com/b.m3u8
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	entries, err := utils.ReadBatchList(path)
	if err != nil {
		t.Fatalf("ReadBatchList returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Manifest != "/videos/a.m3u8" || entries[0].Output != "a.mp4" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Output != "" {
		t.Fatalf("expected empty output for second entry, got %q", entries[1].Output)
	}
}

func TestReadBatchListRejectsMissingManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.yaml")
	if err := os.WriteFile(path, []byte("- output: a.mp4\n"), 0644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	if _, err := utils.ReadBatchList(path); err == nil {
		t.Fatal("expected an error for an entry without a manifest")
	}
}

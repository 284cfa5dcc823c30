package playlist

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

// idPattern matches the stream identifier embedded in segment paths like
// .../abc_show_123_456/segment.ts; the first two fields of the capture form
// the identifier. Best-effort only, no correctness guarantee.
var idPattern = regexp.MustCompile(`_([^_]+_[0-9]+_[0-9]+)/`)

// ExtractID scans manifest content for a human-readable stream identifier.
// The second return is false when no line matched.
func ExtractID(content string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		match := idPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		parts := strings.SplitN(match[1], "_", 3)
		if len(parts) < 2 {
			continue
		}
		return parts[0] + "_" + parts[1], true
	}
	return "", false
}

// FallbackID names manifests the heuristic cannot identify. It is derived
// from the manifest content so that re-runs of the same manifest land in the
// same run directory and resume, while distinct manifests never collide.
func FallbackID(content string) string {
	sum := md5.Sum([]byte(content))
	return "stream_" + hex.EncodeToString(sum[:])[:8]
}

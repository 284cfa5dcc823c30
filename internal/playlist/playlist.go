package playlist

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/hlsget/internal/utils"
)

// SegmentLocator is one entry of a parsed manifest. Index is the 0-based
// position among non-comment lines and is the ordering key everywhere
// downstream.
type SegmentLocator struct {
	Index int
	URL   string
}

func isAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load reads manifest content from a local path or an http(s) URL and returns
// the content together with the base location used to resolve relative
// segment references. A manifest that cannot be read is fatal for the run.
func Load(source string, client *utils.HTTPClient) (string, string, error) {
	if isAbsolute(source) {
		req, err := http.NewRequest("GET", source, nil)
		if err != nil {
			return "", "", fmt.Errorf("error creating request: %v", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", "", fmt.Errorf("error fetching manifest: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", "", fmt.Errorf("server returned status code %d for manifest", resp.StatusCode)
		}
		content, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", "", fmt.Errorf("error reading manifest content: %v", err)
		}
		log.Debug().Str("op", "playlist/load").Msgf("Fetched manifest from %s", source)
		return string(content), source, nil
	}
	content, err := os.ReadFile(source)
	if err != nil {
		return "", "", fmt.Errorf("error reading manifest file: %v", err)
	}
	return string(content), filepath.Dir(source), nil
}

// Parse turns manifest text into the ordered segment locator list. Blank lines
// and comment lines are skipped; absolute references are used verbatim;
// relative references resolve against base, which is either the manifest URL
// or the manifest file's directory.
func Parse(content, base string) ([]SegmentLocator, error) {
	var baseURL *url.URL
	if isAbsolute(base) {
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("error parsing manifest URL: %v", err)
		}
		baseURL = parsed
	}
	scanner := bufio.NewScanner(strings.NewReader(content))
	var locators []SegmentLocator
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ref := line
		if !isAbsolute(ref) {
			if baseURL != nil {
				relURL, err := url.Parse(ref)
				if err != nil {
					return nil, fmt.Errorf("error resolving segment URL %q: %v", ref, err)
				}
				ref = baseURL.ResolveReference(relURL).String()
			} else {
				ref = path.Join(base, ref)
			}
		}
		locators = append(locators, SegmentLocator{Index: len(locators), URL: ref})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning manifest content: %v", err)
	}
	return locators, nil
}

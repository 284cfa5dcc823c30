package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/hlsget/internal/utils"
)

// Segment retrieves one segment URL into outputPath, continuing from an
// existing partial file via a Range request when possible. progress receives
// byte-count increments as the body streams to disk and may be nil. Any
// network or HTTP failure removes the partial file and is returned as an
// error scoped to this segment only.
func Segment(ctx context.Context, segmentURL, outputPath string, client *utils.HTTPClient, progress func(int64)) error {
	var resumeOffset int64
	if fileInfo, err := os.Stat(outputPath); err == nil {
		resumeOffset = fileInfo.Size()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", segmentURL, nil)
	if err != nil {
		return fmt.Errorf("error creating GET request: %v", err)
	}
	if resumeOffset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeOffset))
	}
	req.Header.Set("Connection", "keep-alive")
	resp, err := client.Do(req)
	if err != nil {
		discardPartial(outputPath)
		return fmt.Errorf("error executing GET request: %v", err)
	}
	defer resp.Body.Close()

	fileMode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	switch {
	case resumeOffset > 0 && resp.StatusCode == http.StatusPartialContent:
		log.Debug().Str("op", "fetch/segment").Msgf("Resuming download from offset %d", resumeOffset)
		fileMode = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	case resumeOffset > 0 && resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// The local file already covers the server-reported total.
		if total := totalFromContentRange(resp); total > 0 && resumeOffset >= total {
			log.Debug().Str("op", "fetch/segment").Msgf("Segment already complete at %d bytes", resumeOffset)
			if progress != nil {
				progress(resumeOffset)
			}
			return nil
		}
		discardPartial(outputPath)
		return fmt.Errorf("unsatisfiable range at offset %d", resumeOffset)
	case resumeOffset > 0 && resp.StatusCode == http.StatusOK:
		// No resume support or unknown total size: restart from byte zero.
		log.Debug().Str("op", "fetch/segment").Msg("Server does not support resume, restarting download")
		resumeOffset = 0
	case resp.StatusCode != http.StatusOK:
		discardPartial(outputPath)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	outFile, err := os.OpenFile(outputPath, fileMode, 0644)
	if err != nil {
		return fmt.Errorf("error opening output file: %v", err)
	}
	if progress != nil && resumeOffset > 0 {
		progress(resumeOffset)
	}
	buffer := make([]byte, utils.DefaultBufferSize)
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				outFile.Close()
				discardPartial(outputPath)
				return fmt.Errorf("error writing to output file: %v", writeErr)
			}
			if progress != nil {
				progress(int64(bytesRead))
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			outFile.Close()
			discardPartial(outputPath)
			return fmt.Errorf("error reading response body: %v", readErr)
		}
	}
	outFile.Sync()
	if err := outFile.Close(); err != nil {
		discardPartial(outputPath)
		return fmt.Errorf("error closing output file: %v", err)
	}
	return nil
}

func discardPartial(outputPath string) {
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		log.Warn().Str("op", "fetch/segment").Msgf("Could not remove partial file %s: %v", outputPath, err)
	}
}

// totalFromContentRange extracts the total size from a Content-Range header
// like "bytes 0-99/1234" or "bytes */1234". Returns 0 when unknown.
func totalFromContentRange(resp *http.Response) int64 {
	value := resp.Header.Get("Content-Range")
	slash := strings.LastIndex(value, "/")
	if slash < 0 {
		return 0
	}
	total, err := strconv.ParseInt(value[slash+1:], 10, 64)
	if err != nil {
		return 0
	}
	return total
}

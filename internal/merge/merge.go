package merge

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Segments concatenates the ordered segment files into outputPath by invoking
// ffmpeg with a concat list. extraFlags are passed through to ffmpeg verbatim.
// The list file is removed whether or not the merge succeeds.
func Segments(segmentFiles []string, outputPath string, extraFlags []string) error {
	if len(segmentFiles) == 0 {
		return fmt.Errorf("no segment files to merge")
	}
	listPath := filepath.Join(filepath.Dir(outputPath), ".segment_list.txt")
	if err := writeConcatList(listPath, segmentFiles); err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
	}
	args = append(args, extraFlags...)
	args = append(args, outputPath)
	cmd := exec.Command("ffmpeg", args...)
	log.Debug().Str("op", "merge/segments").Msgf("Executing ffmpeg command: %s", cmd.String())
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error().Str("op", "merge/segments").Msgf("FFmpeg output:\n%s", string(output))
		return fmt.Errorf("ffmpeg error: %v", err)
	}
	return nil
}

func writeConcatList(listPath string, segmentFiles []string) error {
	f, err := os.Create(listPath)
	if err != nil {
		return fmt.Errorf("error creating segment list file: %v", err)
	}
	defer f.Close()
	for _, file := range segmentFiles {
		absPath, err := filepath.Abs(file)
		if err != nil {
			absPath = file
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", absPath); err != nil {
			return fmt.Errorf("error writing segment list file: %v", err)
		}
	}
	return nil
}

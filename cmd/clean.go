package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanq16/hlsget/internal/output"
	"github.com/tanq16/hlsget/internal/pipeline"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover run directories",
		Long:  "Deletes segment run directories under the temp root, discarding any resume state.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := cleanRunRoot(); err != nil {
				output.PrintError(fmt.Sprintf("Error cleaning up run directories: %v", err))
				os.Exit(1)
			}
			output.PrintSuccess("Temporary files cleaned up")
		},
	}
	return cmd
}

func cleanRunRoot() error {
	entries, err := os.ReadDir(pipeline.RunRoot)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "m3u8_segments_") {
			if err := os.RemoveAll(filepath.Join(pipeline.RunRoot, entry.Name())); err != nil {
				return err
			}
		}
	}
	remaining, err := os.ReadDir(pipeline.RunRoot)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return os.Remove(pipeline.RunRoot)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newCleanCmd())
}

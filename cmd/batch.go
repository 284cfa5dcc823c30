package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tanq16/hlsget/internal/output"
	"github.com/tanq16/hlsget/internal/utils"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [LIST_FILE]",
		Short: "Process multiple manifests from a YAML list",
		Long:  "Reads a YAML list of {manifest, output} entries and runs the pipeline for each in turn.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			utils.InitLogger(debug)
			entries, err := utils.ReadBatchList(args[0])
			if err != nil {
				output.PrintError(fmt.Sprintf("Failed to read batch list: %v", err))
				os.Exit(1)
			}
			ctx := signalContext()
			failures := 0
			for _, entry := range entries {
				job := utils.Job{
					ID:               uuid.NewString()[:8],
					ManifestSource:   entry.Manifest,
					OutputPath:       entry.Output,
					Workers:          workers,
					KeepSegments:     keepSegments,
					RequireComplete:  requireComplete,
					FFmpegFlags:      ffmpegFlags,
					HTTPClientConfig: buildHTTPClientConfig(),
				}
				if err := runJob(ctx, job); err != nil {
					output.PrintError(fmt.Sprintf("Failed %s: %v", entry.Manifest, err))
					failures++
				}
				if ctx.Err() != nil {
					break
				}
			}
			if failures > 0 {
				output.PrintError(fmt.Sprintf("Encountered %d failed manifest(s)", failures))
				os.Exit(1)
			}
			output.PrintSuccess("All tasks completed")
		},
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(newBatchCmd())
}

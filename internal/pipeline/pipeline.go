package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/hlsget/internal/merge"
	"github.com/tanq16/hlsget/internal/playlist"
	"github.com/tanq16/hlsget/internal/scheduler"
	"github.com/tanq16/hlsget/internal/store"
	"github.com/tanq16/hlsget/internal/utils"
)

// RunRoot is the directory under the working directory that holds all run
// directories.
const RunRoot = "tmp"

// MergeFunc is the external concatenation collaborator: ordered segment file
// paths, the output path, and passthrough flags.
type MergeFunc func(segmentFiles []string, outputPath string, extraFlags []string) error

// Pipeline sequences parse, schedule, and merge for one manifest. Progress and
// Merge are injectable; nil means silent and the ffmpeg collaborator
// respectively.
type Pipeline struct {
	Job      utils.Job
	Progress scheduler.Progress
	Merge    MergeFunc
}

// Run processes the configured manifest end to end. Per-segment failures do
// not abort the batch; only an unreadable manifest, a fully failed batch, the
// RequireComplete policy, or a merge failure surface as errors. A subsequent
// invocation resumes naturally through the segment store.
func (p *Pipeline) Run(ctx context.Context) error {
	client := utils.NewHTTPClient(p.Job.HTTPClientConfig)
	log.Debug().Str("op", "pipeline/run").Str("job", p.Job.ID).Msgf("Processing manifest %s", p.Job.ManifestSource)
	content, base, err := playlist.Load(p.Job.ManifestSource, client)
	if err != nil {
		return err
	}
	locators, err := playlist.Parse(content, base)
	if err != nil {
		return err
	}
	if len(locators) == 0 {
		return fmt.Errorf("no segments found in manifest")
	}
	log.Info().Str("op", "pipeline/run").Msgf("Found %d segments to download", len(locators))

	streamID, ok := playlist.ExtractID(content)
	if !ok {
		streamID = playlist.FallbackID(content)
		log.Warn().Str("op", "pipeline/run").Msgf("Could not extract stream ID from manifest, using %s", streamID)
	}
	outputPath := p.Job.OutputPath
	if outputPath == "" {
		outputPath = streamID + ".mp4"
	}

	runDir := filepath.Join(RunRoot, "m3u8_segments_"+streamID)
	st, err := store.Open(runDir)
	if err != nil {
		return err
	}
	if !p.Job.KeepSegments {
		defer os.RemoveAll(runDir)
	}

	outcomes := scheduler.Run(ctx, locators, st, client, p.Job.Workers, p.Progress)
	if err := ctx.Err(); err != nil {
		return err
	}

	var completedFiles []string
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Completed() {
			completedFiles = append(completedFiles, outcome.Path)
		} else {
			failed++
		}
	}
	if failed > 0 {
		if p.Job.RequireComplete {
			return fmt.Errorf("%d of %d segments failed", failed, len(outcomes))
		}
		log.Warn().Str("op", "pipeline/run").Msgf("%d of %d segments failed, merging partial output", failed, len(outcomes))
	}
	if len(completedFiles) == 0 {
		return fmt.Errorf("all %d segments failed", len(outcomes))
	}

	mergeFn := p.Merge
	if mergeFn == nil {
		mergeFn = merge.Segments
	}
	log.Info().Str("op", "pipeline/run").Msgf("Merging %d segments into %s", len(completedFiles), outputPath)
	if err := mergeFn(completedFiles, outputPath, p.Job.FFmpegFlags); err != nil {
		return fmt.Errorf("error merging segments: %v", err)
	}
	log.Info().Str("op", "pipeline/run").Msgf("Output saved to %s", outputPath)
	if p.Job.KeepSegments {
		log.Info().Str("op", "pipeline/run").Msgf("Segments kept in %s", runDir)
	}
	return nil
}

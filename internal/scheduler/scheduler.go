package scheduler

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/hlsget/internal/fetch"
	"github.com/tanq16/hlsget/internal/playlist"
	"github.com/tanq16/hlsget/internal/store"
	"github.com/tanq16/hlsget/internal/utils"
)

// Outcome is the per-segment result of a scheduling run. Err is nil for a
// completed segment, in which case Path points at the verified file.
type Outcome struct {
	Index int
	Path  string
	Err   error
}

func (o Outcome) Completed() bool {
	return o.Err == nil
}

// Progress receives scheduling events; implementations must be safe for
// concurrent use. A nil Progress is allowed.
type Progress interface {
	Begin(totalSegments int)
	AddBytes(n int64)
	SegmentDone(completed bool)
	End()
}

// Run downloads all pending segments with at most workers fetches in flight.
// Segments the store already verifies as done are emitted without occupying a
// worker slot; every other segment gets exactly one fetch attempt. The ledger
// is persisted once after the batch. The returned slice holds exactly one
// outcome per index, sorted ascending. Cancelling ctx stops new dispatch;
// in-flight attempts finish on their own.
func Run(ctx context.Context, locators []playlist.SegmentLocator, st *store.Store, client *utils.HTTPClient, workers int, progress Progress) []Outcome {
	if workers < 1 {
		workers = 1
	}
	if progress != nil {
		progress.Begin(len(locators))
		defer progress.End()
	}

	outcomes := make([]Outcome, len(locators))
	jobCh := make(chan playlist.SegmentLocator, len(locators))
	skipped := 0
	for _, locator := range locators {
		if st.IsDone(locator.Index) {
			outcomes[locator.Index] = Outcome{Index: locator.Index, Path: st.SegmentPath(locator.Index)}
			skipped++
			if progress != nil {
				progress.SegmentDone(true)
			}
			continue
		}
		jobCh <- locator
	}
	close(jobCh)
	if skipped > 0 {
		log.Info().Str("op", "scheduler/run").Msgf("Skipping %d previously verified segments", skipped)
	}

	var addBytes func(int64)
	if progress != nil {
		addBytes = progress.AddBytes
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for locator := range jobCh {
				outcome := Outcome{Index: locator.Index}
				if err := ctx.Err(); err != nil {
					outcome.Err = err
				} else {
					path := st.SegmentPath(locator.Index)
					err := fetch.Segment(ctx, locator.URL, path, client, addBytes)
					if err == nil {
						err = st.RecordCompletion(locator.Index, locator.URL, path)
					}
					if err != nil {
						outcome.Err = err
					} else {
						outcome.Path = path
					}
				}
				if outcome.Err != nil {
					log.Error().Str("op", "scheduler/run").Err(outcome.Err).Msgf("Segment %d failed", locator.Index)
				}
				mu.Lock()
				outcomes[locator.Index] = outcome
				mu.Unlock()
				if progress != nil {
					progress.SegmentDone(outcome.Completed())
				}
			}
		}()
	}
	wg.Wait()

	if err := st.Persist(); err != nil {
		log.Error().Str("op", "scheduler/run").Err(err).Msg("Could not persist segment ledger")
	}
	// outcomes is keyed by index, so it is already in merge order
	return outcomes
}

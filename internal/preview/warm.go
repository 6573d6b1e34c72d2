package preview

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWorkers bounds concurrent thumbnail generation.
const DefaultWorkers = 20

// WarmStats counts the outcome of a Warm run.
type WarmStats struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Cached    int `json:"cached"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Warm makes sure every path in paths has a cached thumbnail, using up to
// workers goroutines. It blocks until all paths are handled; once ctx is
// done the remaining paths are skipped.
func (r *Renderer) Warm(ctx context.Context, paths []string, workers int) WarmStats {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	start := time.Now()

	var wg sync.WaitGroup
	var generated, cached, failed, skipped atomic.Int64
	pathChan := make(chan string, len(paths))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range pathChan {
				if ctx.Err() != nil {
					skipped.Add(1)
					continue
				}
				_, hit, err := r.ensure(ctx, p)
				switch {
				case err != nil:
					failed.Add(1)
					r.logger.Warn().Err(err).Str("path", p).Msg("thumbnail failed")
				case hit:
					cached.Add(1)
				default:
					generated.Add(1)
				}
			}
		}()
	}

	for _, p := range paths {
		pathChan <- p
	}
	close(pathChan)

	wg.Wait()

	stats := WarmStats{
		Total:     len(paths),
		Generated: int(generated.Load()),
		Cached:    int(cached.Load()),
		Failed:    int(failed.Load()),
		Skipped:   int(skipped.Load()),
	}
	r.logger.Info().
		Int("total", stats.Total).
		Int("generated", stats.Generated).
		Int("cached", stats.Cached).
		Int("failed", stats.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("thumbnail warm-up complete")
	return stats
}

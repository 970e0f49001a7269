package metadata

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tmdbcat/tmdbcat/internal/metrics"
)

const defaultProbeConcurrency = 8

// PosterOverlay substitutes override posters that are confirmed to exist.
type PosterOverlay struct {
	client      PosterClient
	concurrency int
	logger      zerolog.Logger
}

// NewPosterOverlay creates a poster overlay. A nil client disables it.
func NewPosterOverlay(client PosterClient, concurrency int, logger zerolog.Logger) *PosterOverlay {
	if concurrency <= 0 {
		concurrency = defaultProbeConcurrency
	}
	return &PosterOverlay{
		client:      client,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "poster-overlay").Logger(),
	}
}

// Apply returns a copy of metas with override posters adopted where the probe
// confirms them. The input slice is never modified and no failure is
// returned: anything that goes wrong keeps the original poster.
func (p *PosterOverlay) Apply(ctx context.Context, metas []Meta, key, language string) []Meta {
	out := make([]Meta, len(metas))
	copy(out, metas)
	if p == nil || p.client == nil || key == "" || len(metas) == 0 {
		return out
	}

	var eg errgroup.Group
	eg.SetLimit(p.concurrency)
	for i := range out {
		id := posterID(out[i])
		if id == "" {
			continue
		}
		eg.Go(func() error {
			candidate := p.client.PosterURL(key, string(out[i].Type), id, language)
			exists := p.client.Exists(ctx, candidate)
			metrics.RecordPosterProbe(exists)
			if exists {
				out[i].Poster = candidate
				out[i].PosterShape = "regular"
			}
			return nil
		})
	}
	_ = eg.Wait()

	return out
}

// ApplyOne is Apply for a single item.
func (p *PosterOverlay) ApplyOne(ctx context.Context, m Meta, key, language string) Meta {
	return p.Apply(ctx, []Meta{m}, key, language)[0]
}

// posterID returns the id the override service knows the title by.
func posterID(m Meta) string {
	if id := m.TMDBID(); id != "" {
		return id
	}
	return m.IMDbID
}

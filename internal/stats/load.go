package stats

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/flowread/internal/model"
)

// Source is the read side of the history store.
type Source interface {
	RecentSessions(ctx context.Context, limit int) ([]model.Session, error)
	AllComprehension(ctx context.Context) ([]model.Comprehension, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions      []model.Session
	Comprehension []model.Comprehension
	Stats         model.Stats
	Progress      []model.ProgressPoint
	// Unavailable is set when history could not be read and zero values
	// were substituted.
	Unavailable bool
}

// BuildReport loads history concurrently and computes stats for the sessions
// selected by cfg.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	limit := cfg.Last
	if limit <= 0 {
		limit = DefaultLimit
	}
	filtered := cfg.Mode != "" || cfg.Since != nil
	fetch := limit
	if filtered {
		fetch = 0
	}

	var sessions []model.Session
	var comps []model.Comprehension
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = src.RecentSessions(gctx, fetch)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		comps, err = src.AllComprehension(gctx)
		if err != nil {
			return fmt.Errorf("failed to load comprehension: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	if filtered {
		sessions = filterSessions(sessions, cfg)
	}
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return Report{
		Sessions:      sessions,
		Comprehension: comps,
		Stats:         Compute(sessions, comps),
		Progress:      Progress(sessions, comps),
	}, nil
}

// Load is BuildReport with read failures logged and replaced by an empty
// report, so callers always get usable zero-value stats.
func Load(ctx context.Context, src Source, cfg model.StatsConfig, log *zap.Logger) Report {
	report, err := BuildReport(ctx, src, cfg)
	if err != nil {
		if log != nil {
			log.Warn("history unavailable, using empty stats", zap.Error(err))
		}
		return Report{Unavailable: true}
	}
	return report
}

func filterSessions(sessions []model.Session, cfg model.StatsConfig) []model.Session {
	out := sessions[:0:0]
	for _, s := range sessions {
		if cfg.Mode != "" && s.Mode != cfg.Mode {
			continue
		}
		if cfg.Since != nil && s.Date.Before(*cfg.Since) {
			continue
		}
		out = append(out, s)
	}
	return out
}

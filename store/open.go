// Package store opens the configured storage backend.
//
// Backends:
//
//	sqlite:   store/sqlite, file path or ":memory:"
//	postgres: store/postgres, connection URL
//	memory:   store/memory, nothing persisted
package store

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/warp/people-reports/config"
	"github.com/warp/people-reports/people"
	"github.com/warp/people-reports/reporting"
	"github.com/warp/people-reports/store/memory"
	"github.com/warp/people-reports/store/postgres"
	"github.com/warp/people-reports/store/sqlite"
)

// Backend is an opened directory together with its reporter.
type Backend struct {
	Directory people.Directory
	Reports   people.Reporter
	Driver    string

	close func() error
}

// Close releases the backend's connection, if any.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the backend named by cfg.Database.Driver. reg may be nil
// to skip metrics.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*Backend, error) {
	ranking, err := reporting.ParseRanking(cfg.Reports.Ranking)
	if err != nil {
		return nil, err
	}

	opts := []reporting.Option{
		reporting.WithRanking(ranking),
		reporting.WithTopRank(cfg.Reports.TopRank),
		reporting.WithLogger(log),
	}
	if reg != nil {
		opts = append(opts, reporting.WithMetrics(reporting.NewMetrics(reg)))
	}

	switch cfg.Database.Driver {
	case "sqlite":
		s, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return &Backend{Directory: s, Reports: s.Reports(opts...), Driver: "sqlite", close: s.Close}, nil

	case "postgres":
		s, err := postgres.New(ctx, cfg.Database.URL, log)
		if err != nil {
			return nil, err
		}
		return &Backend{Directory: s, Reports: s.Reports(opts...), Driver: "postgres", close: s.Close}, nil

	case "memory":
		s := memory.New(memory.WithRanking(ranking), memory.WithTopRank(cfg.Reports.TopRank))
		return &Backend{Directory: s, Reports: s, Driver: "memory"}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

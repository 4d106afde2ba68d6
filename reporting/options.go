package reporting

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
)

// Option configures Reports.
type Option func(*Reports)

// WithPlaceholder sets the bind parameter style (sq.Question for SQLite,
// sq.Dollar for PostgreSQL).
func WithPlaceholder(p sq.PlaceholderFormat) Option {
	return func(r *Reports) {
		if p != nil {
			r.placeholder = p
		}
	}
}

// WithRanking selects RANK or DENSE_RANK for the top-earners report.
func WithRanking(ranking Ranking) Option {
	return func(r *Reports) {
		if ranking != "" {
			r.ranking = ranking
		}
	}
}

// WithTopRank sets the last rank kept by the top-earners report.
func WithTopRank(n int) Option {
	return func(r *Reports) {
		if n > 0 {
			r.topRank = n
		}
	}
}

// WithLogger logs every query at debug level and failures at error level.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Reports) {
		r.log = log.With().Str("component", "reporting").Logger()
	}
}

// WithMetrics records query durations and failures.
func WithMetrics(m *Metrics) Option {
	return func(r *Reports) {
		r.metrics = m
	}
}

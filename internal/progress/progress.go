//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package progress logs row-count progress for long running loads.
package progress

import (
	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-salesdash/internal/logging"
)

// DefaultInterval is the default number of rows between progress messages.
const DefaultInterval = 100000

// Reporter tracks and reports progress of a row stream. Messages are
// tagged with the "progress" component.
type Reporter struct {
	log      zerolog.Logger
	name     string
	action   string
	total    int64
	current  int64
	interval int64
}

// NewReporter creates a progress reporter. A total of zero means the row
// count is not known in advance and no percentage is logged.
func NewReporter(name, action string, total, interval int64) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		log:      logging.Component("progress"),
		name:     name,
		action:   action,
		total:    total,
		interval: interval,
	}
}

// Update adds rows to the count and logs if an interval was crossed.
func (p *Reporter) Update(rows int64) {
	old := p.current
	p.current += rows

	// Check if we crossed a progress interval
	if p.current/p.interval > old/p.interval {
		event := p.log.Info().
			Str("name", p.name).
			Int64("rows", p.current)
		if p.total > 0 {
			event = event.
				Int64("total", p.total).
				Float64("percent", float64(p.current)/float64(p.total)*100)
		}
		event.Msg(p.action)
	}
}

// Rows returns the number of rows counted so far.
func (p *Reporter) Rows() int64 {
	return p.current
}

// Done logs completion.
func (p *Reporter) Done() {
	p.log.Info().
		Str("name", p.name).
		Int64("rows", p.current).
		Msg(p.action + " complete")
}

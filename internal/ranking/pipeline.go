// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ranking turns raw per-author publication counts into a ranked,
// display-ready list of institutions. The stages are pure functions over
// their arguments: Filter, FormatInstitutions, AverageCount with
// RankInstitutions and RankAuthors, and TopAreas. Pipeline composes them.
package ranking

import (
	"time"

	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/internal/venues"
	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// Pipeline runs the ranking stages in their fixed order. It holds only
// read-only configuration; every Run recomputes from the dataset.
type Pipeline struct {
	classifier   *venues.Classifier
	proximityPct float64
	logger       *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProximity sets the top-area proximity in percent.
func WithProximity(pct float64) Option {
	return func(p *Pipeline) { p.proximityPct = pct }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline returns a pipeline classifying venues with c.
func NewPipeline(c *venues.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier:   c,
		proximityPct: DefaultProximityPct,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classifier returns the venue classifier the pipeline uses.
func (p *Pipeline) Classifier() *venues.Classifier { return p.classifier }

// Proximity returns the top-area proximity in percent.
func (p *Pipeline) Proximity() float64 { return p.proximityPct }

// Run filters ds by sel, formats names, computes average counts, orders
// institutions and authors, and marks each author's top areas. An empty
// dataset or empty selection yields an empty ranking; an unknown venue or
// area is an error.
func (p *Pipeline) Run(ds types.Dataset, sel Selection) (types.Ranking, error) {
	start := time.Now()

	selected, areas, err := sel.Resolve(p.classifier)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() || len(selected) == 0 || len(ds) == 0 {
		p.logger.Debug("empty ranking",
			zap.Int("institutions", len(ds)),
			zap.Int("venues", len(selected)),
			zap.Int("year_low", sel.YearLow),
			zap.Int("year_high", sel.YearHigh))
		return types.Ranking{}, nil
	}

	filtered := Filter(ds, selected, areas, sel.YearLow, sel.YearHigh)
	insts := FormatInstitutions(filtered)
	for i := range insts {
		insts[i].AverageCount = InstitutionAverageCount(insts[i])
		RankAuthors(&insts[i])
	}
	RankInstitutions(insts)

	for i := range insts {
		for j := range insts[i].Authors {
			a := &insts[i].Authors[j]
			a.TopAreas = TopAreas(a.Scores, p.proximityPct)
		}
	}

	p.logger.Info("ranking computed",
		zap.Int("institutions", len(insts)),
		zap.Int("venues", len(selected)),
		zap.Int("areas", len(areas)),
		zap.Int("year_low", sel.YearLow),
		zap.Int("year_high", sel.YearHigh),
		zap.Duration("elapsed", time.Since(start)))

	return types.Ranking(insts), nil
}

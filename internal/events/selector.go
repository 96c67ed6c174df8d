// Package events draws the narrative events and investment opportunities
// offered each turn.
package events

import (
	"math"

	"cashflow/internal/catalog"
	"cashflow/internal/domain"
	"cashflow/internal/risk"
	"cashflow/internal/rng"
)

type Range struct {
	Min int
	Max int
}

var (
	DefaultEventCount       = Range{Min: 1, Max: 3}
	DefaultOpportunityCount = Range{Min: 3, Max: 5}
)

type Selector struct {
	catalog *catalog.Catalog
	pricing *risk.Engine
	rand    rng.Source
	events  Range
	opps    Range
}

func NewSelector(c *catalog.Catalog, pricing *risk.Engine, source rng.Source, eventCount, opportunityCount Range) *Selector {
	if source == nil {
		source = rng.New()
	}
	return &Selector{
		catalog: c,
		pricing: pricing,
		rand:    source,
		events:  normalize(eventCount, DefaultEventCount),
		opps:    normalize(opportunityCount, DefaultOpportunityCount),
	}
}

func normalize(r, fallback Range) Range {
	if r.Min <= 0 && r.Max <= 0 {
		return fallback
	}
	if r.Min < 0 {
		r.Min = 0
	}
	if r.Max < r.Min {
		r.Max = r.Min
	}
	return r
}

// EventWeight favours small surprises over large ones.
func EventWeight(ev domain.GameEvent) float64 {
	amount := ev.Effect.Amount
	abs := math.Abs(amount)
	switch ev.Effect.Type {
	case domain.EffectExpenses:
		if abs <= 1000 {
			return 0.8
		}
		return 0.4
	default:
		if amount >= 0 {
			switch {
			case amount <= 1000:
				return 1.2
			case amount <= 2000:
				return 0.8
			case amount <= 5000:
				return 0.5
			default:
				return 0.2
			}
		}
		switch {
		case abs <= 1000:
			return 1.5
		case abs <= 2000:
			return 0.7
		default:
			return 0.3
		}
	}
}

func excludedSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// WeightedRandomEvents draws events without replacement, skipping the
// excluded messages.
func (s *Selector) WeightedRandomEvents(excludedMessages []string) []domain.GameEvent {
	return s.weightedPick(s.catalog.EventTemplates(), excludedMessages, rng.IntBetween(s.rand, s.events.Min, s.events.Max))
}

func (s *Selector) weightedPick(templates []domain.GameEvent, excludedMessages []string, n int) []domain.GameEvent {
	skip := excludedSet(excludedMessages)
	pool := make([]domain.GameEvent, 0, len(templates))
	weights := make([]float64, 0, len(templates))
	for _, ev := range templates {
		if _, ok := skip[ev.Message]; ok {
			continue
		}
		pool = append(pool, ev)
		weights = append(weights, EventWeight(ev))
	}

	out := make([]domain.GameEvent, 0, n)
	for len(out) < n && len(pool) > 0 {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		target := s.rand.Float64() * total
		idx := len(pool) - 1
		acc := 0.0
		for i, w := range weights {
			acc += w
			if target < acc {
				idx = i
				break
			}
		}
		out = append(out, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return out
}

// InvestmentOpportunities shuffles the non-excluded templates, takes a
// random number of them and prices each for the current market.
func (s *Selector) InvestmentOpportunities(excludedNames []string) ([]domain.Investment, error) {
	skip := excludedSet(excludedNames)
	var pool []domain.Investment
	for _, inv := range s.catalog.InvestmentTemplates() {
		if _, ok := skip[inv.Name]; ok {
			continue
		}
		pool = append(pool, inv)
	}
	for i := len(pool) - 1; i > 0; i-- {
		j := int(s.rand.Float64() * float64(i+1))
		pool[i], pool[j] = pool[j], pool[i]
	}

	n := rng.IntBetween(s.rand, s.opps.Min, s.opps.Max)
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]domain.Investment, 0, n)
	for _, tmpl := range pool[:n] {
		inv, err := s.pricing.PrepareOpportunity(tmpl)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// Package catalog serves the static game templates together with the
// difficulty preset and the economic-cycle position of a session.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"cashflow/internal/domain"
	"cashflow/internal/rng"
)

var ErrJobNotFound = errors.New("job not found")

type Catalog struct {
	difficulty     Difficulty
	mods           DifficultyModifiers
	rand           rng.Source
	cycle          Cycle
	cycleRemaining int
}

// New builds a catalog for the given difficulty, starting in an expansion.
func New(difficulty Difficulty, source rng.Source) (*Catalog, error) {
	mods, ok := difficultyPresets[difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	if err := validateTemplates(investmentTemplates, eventTemplates); err != nil {
		return nil, err
	}
	if source == nil {
		source = rng.New()
	}
	return &Catalog{
		difficulty:     difficulty,
		mods:           mods,
		rand:           source,
		cycle:          CycleExpansion,
		cycleRemaining: cycleTable[CycleExpansion].duration,
	}, nil
}

func (c *Catalog) Jobs() []domain.Job {
	return append([]domain.Job(nil), jobs...)
}

func (c *Catalog) JobByTitle(title string) (domain.Job, error) {
	title = strings.TrimSpace(title)
	for _, j := range jobs {
		if strings.EqualFold(j.Title, title) {
			return j, nil
		}
	}
	return domain.Job{}, fmt.Errorf("%w: %q", ErrJobNotFound, title)
}

func (c *Catalog) InvestmentTemplates() []domain.Investment {
	return domain.CloneInvestments(investmentTemplates)
}

func (c *Catalog) EventTemplates() []domain.GameEvent {
	return domain.CloneEvents(eventTemplates)
}

// validateTemplates rejects investment and event templates whose type is
// not one the engines can price or apply.
func validateTemplates(investments []domain.Investment, events []domain.GameEvent) error {
	for _, inv := range investments {
		if _, err := domain.ParseInvestmentType(string(inv.Type)); err != nil {
			return fmt.Errorf("investment template %q: %w", inv.Name, err)
		}
	}
	for _, ev := range events {
		if _, err := domain.ParseEffectType(string(ev.Effect.Type)); err != nil {
			return fmt.Errorf("event template %q: %w", ev.Message, err)
		}
	}
	return nil
}

func (c *Catalog) RandomName() string {
	return playerNames[rng.IntBetween(c.rand, 0, len(playerNames)-1)]
}

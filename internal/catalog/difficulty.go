package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

type DifficultyModifiers struct {
	Salary           float64 `json:"salary"`
	Expense          float64 `json:"expense"`
	InvestmentReturn float64 `json:"investmentReturn"`
	EventFrequency   float64 `json:"eventFrequency"`
	StartingCash     float64 `json:"startingCash"`
	LoanInterest     float64 `json:"loanInterest"`
}

var difficultyPresets = map[Difficulty]DifficultyModifiers{
	DifficultyEasy:   {Salary: 1.2, Expense: 0.9, InvestmentReturn: 1.2, EventFrequency: 0.8, StartingCash: 1.5, LoanInterest: 0.8},
	DifficultyNormal: {Salary: 1.0, Expense: 1.0, InvestmentReturn: 1.0, EventFrequency: 1.0, StartingCash: 1.0, LoanInterest: 1.0},
	DifficultyHard:   {Salary: 0.9, Expense: 1.1, InvestmentReturn: 0.9, EventFrequency: 1.2, StartingCash: 0.75, LoanInterest: 1.2},
	DifficultyExpert: {Salary: 0.8, Expense: 1.2, InvestmentReturn: 0.8, EventFrequency: 1.5, StartingCash: 0.5, LoanInterest: 1.5},
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := difficultyPresets[d]; !ok {
		return "", fmt.Errorf("%w: %q (want one of %v)", ErrUnknownDifficulty, s, Difficulties())
	}
	return d, nil
}

func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyExpert}
}

func (c *Catalog) Difficulty() Difficulty {
	return c.difficulty
}

func (c *Catalog) Modifiers() DifficultyModifiers {
	return c.mods
}

func (c *Catalog) ApplyDifficultyToSalary(base float64) float64 {
	return base * c.mods.Salary
}

func (c *Catalog) ApplyDifficultyToExpenses(base float64) float64 {
	return base * c.mods.Expense
}

func (c *Catalog) ApplyDifficultyToStartingCash(base float64) float64 {
	return base * c.mods.StartingCash
}

func (c *Catalog) ApplyDifficultyToInvestmentReturn(base float64) float64 {
	return base * c.mods.InvestmentReturn
}

// LoanRate is the one-off financing fee rate charged on loan purchases.
func (c *Catalog) LoanRate() float64 {
	return baseLoanRate * c.mods.LoanInterest
}

// ShouldTriggerEvent reports whether this turn draws narrative events.
func (c *Catalog) ShouldTriggerEvent() bool {
	p := baseEventProbability * c.mods.EventFrequency
	if p > 1 {
		p = 1
	}
	return c.rand.Float64() < p
}

// SetDifficulty switches the preset, e.g. when a saved game is restored.
func (c *Catalog) SetDifficulty(d Difficulty) error {
	mods, ok := difficultyPresets[d]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
	c.difficulty = d
	c.mods = mods
	return nil
}

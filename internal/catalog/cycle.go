package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCycle = errors.New("unknown economic cycle")

type Cycle string

const (
	CycleRecession Cycle = "recession"
	CycleRecovery  Cycle = "recovery"
	CycleExpansion Cycle = "expansion"
	CyclePeak      Cycle = "peak"
)

// cycleOrder is the fixed rotation; the successor of the last entry is the first.
var cycleOrder = []Cycle{CycleRecession, CycleRecovery, CycleExpansion, CyclePeak}

type CycleEffects struct {
	InvestmentReturn float64 `json:"investmentReturn"`
	JobSecurity      float64 `json:"jobSecurity"`
	EventSeverity    float64 `json:"eventSeverity"`
	InflationRate    float64 `json:"inflationRate"`
}

type CycleConfig struct {
	Cycle     Cycle        `json:"cycle"`
	Duration  int          `json:"duration"`
	Remaining int          `json:"remaining"`
	Effects   CycleEffects `json:"effects"`
}

var cycleTable = map[Cycle]struct {
	duration int
	effects  CycleEffects
}{
	CycleRecession: {2, CycleEffects{InvestmentReturn: 0.7, JobSecurity: 0.8, EventSeverity: 1.3, InflationRate: 0.01}},
	CycleRecovery:  {3, CycleEffects{InvestmentReturn: 0.95, JobSecurity: 0.95, EventSeverity: 1.1, InflationRate: 0.02}},
	CycleExpansion: {4, CycleEffects{InvestmentReturn: 1.2, JobSecurity: 1.05, EventSeverity: 0.9, InflationRate: 0.03}},
	CyclePeak:      {2, CycleEffects{InvestmentReturn: 1.1, JobSecurity: 1.0, EventSeverity: 1.0, InflationRate: 0.04}},
}

func ParseCycle(s string) (Cycle, error) {
	c := Cycle(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := cycleTable[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCycle, s)
	}
	return c, nil
}

func nextCycle(c Cycle) Cycle {
	for i, v := range cycleOrder {
		if v == c {
			return cycleOrder[(i+1)%len(cycleOrder)]
		}
	}
	panic(fmt.Sprintf("%v: %q", ErrUnknownCycle, c))
}

func (c *Catalog) CurrentEconomicCycleConfig() CycleConfig {
	row := cycleTable[c.cycle]
	return CycleConfig{
		Cycle:     c.cycle,
		Duration:  row.duration,
		Remaining: c.cycleRemaining,
		Effects:   row.effects,
	}
}

// AdvanceEconomicCycle counts down the active cycle and rotates to the next
// one when it runs out.
func (c *Catalog) AdvanceEconomicCycle() CycleConfig {
	c.cycleRemaining--
	if c.cycleRemaining <= 0 {
		c.cycle = nextCycle(c.cycle)
		c.cycleRemaining = cycleTable[c.cycle].duration
	}
	return c.CurrentEconomicCycleConfig()
}

// RestoreCycle resumes a persisted cycle position. A remaining count outside
// (0, duration] is reset to the full duration.
func (c *Catalog) RestoreCycle(cycle string, remaining int) error {
	parsed, err := ParseCycle(cycle)
	if err != nil {
		return err
	}
	c.cycle = parsed
	if d := cycleTable[parsed].duration; remaining <= 0 || remaining > d {
		remaining = d
	}
	c.cycleRemaining = remaining
	return nil
}

func (c *Catalog) ApplyEconomicCycleToEvent(amount float64) float64 {
	return amount * cycleTable[c.cycle].effects.EventSeverity
}

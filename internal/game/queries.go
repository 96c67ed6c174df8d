package game

import (
	"cashflow/internal/catalog"
	"cashflow/internal/domain"
	"cashflow/internal/retirement"
	"cashflow/internal/risk"
	"cashflow/internal/tax"
)

// State returns a deep copy of the whole game.
func (s *Service) State() Snapshot {
	return s.state.Clone()
}

func (s *Service) Player() PlayerState {
	return s.state.PlayerState
}

func (s *Service) Won() bool {
	return s.state.Won
}

func (s *Service) Investments() []domain.Investment {
	return domain.CloneInvestments(s.state.Investments)
}

func (s *Service) Opportunities() []domain.Investment {
	return domain.CloneInvestments(s.state.Opportunities)
}

// Opportunity returns the offer at index in the current opportunity list.
func (s *Service) Opportunity(index int) (domain.Investment, error) {
	if index < 0 || index >= len(s.state.Opportunities) {
		return domain.Investment{}, ErrOpportunityNotFound
	}
	return s.state.Opportunities[index].Clone(), nil
}

func (s *Service) CurrentEvents() []domain.GameEvent {
	return domain.CloneEvents(s.state.CurrentEvents)
}

func (s *Service) History() []TurnHistoryEntry {
	out := make([]TurnHistoryEntry, len(s.state.TurnHistory))
	for i, e := range s.state.TurnHistory {
		out[i] = e.clone()
	}
	return out
}

// LastTax returns the most recent turn's tax calculation, if any.
func (s *Service) LastTax() (tax.Calculation, bool) {
	if s.state.LastTaxCalculation == nil {
		return tax.Calculation{}, false
	}
	return *s.state.LastTaxCalculation, true
}

func (s *Service) RetirementAccounts() []retirement.Account {
	return append([]retirement.Account(nil), s.state.RetirementAccounts...)
}

func (s *Service) RetirementPlan() (retirement.Plan, bool) {
	if s.state.RetirementPlan == nil {
		return retirement.Plan{}, false
	}
	return *s.state.RetirementPlan, true
}

// MarketConditions samples the current regime. Each call draws a fresh
// jitter from the random source.
func (s *Service) MarketConditions() risk.MarketConditions {
	return s.pricing.CurrentMarketConditions()
}

// InvestmentDetail summarizes the owned investment at index.
func (s *Service) InvestmentDetail(index int) (InvestmentDetail, error) {
	if index < 0 || index >= len(s.state.Investments) {
		return InvestmentDetail{}, ErrInvestmentNotFound
	}
	inv := s.state.Investments[index].Clone()
	d := InvestmentDetail{
		Index:      index,
		Investment: inv,
		ROI:        risk.ROI(inv),
		Stats:      risk.StatsFor(inv.PriceHistory),
	}
	if months, ok := risk.PaybackMonths(inv); ok {
		d.PaybackMonths = &months
	}
	return d, nil
}

// MarketView is the economy as the player sees it this turn.
type MarketView struct {
	Conditions risk.MarketConditions       `json:"conditions"`
	Cycle      catalog.CycleConfig         `json:"cycle"`
	Difficulty catalog.Difficulty          `json:"difficulty"`
	Modifiers  catalog.DifficultyModifiers `json:"modifiers"`
	LoanRate   float64                     `json:"loanRate"`
	Brackets   []tax.Bracket               `json:"taxBrackets"`
}

func (s *Service) Market() MarketView {
	return MarketView{
		Conditions: s.MarketConditions(),
		Cycle:      s.catalog.CurrentEconomicCycleConfig(),
		Difficulty: s.catalog.Difficulty(),
		Modifiers:  s.catalog.Modifiers(),
		LoanRate:   s.catalog.LoanRate(),
		Brackets:   tax.Brackets(),
	}
}

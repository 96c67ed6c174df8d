package game

import (
	"fmt"
	"math"
	"time"

	"cashflow/internal/domain"
	"cashflow/internal/retirement"
	"cashflow/internal/tax"
)

// NextTurn advances the game by one year and returns the history entry it
// appended.
func (s *Service) NextTurn() (TurnHistoryEntry, error) {
	done := s.enter()
	entry, err := s.nextTurn()
	done()
	if err != nil {
		return TurnHistoryEntry{}, err
	}
	snap := s.State()
	s.subs.emitState(snap)
	s.subs.emitTurn(entry.clone())
	return entry, nil
}

func (s *Service) nextTurn() (TurnHistoryEntry, error) {
	if !s.started {
		return TurnHistoryEntry{}, ErrNotStarted
	}
	st := &s.state
	cashBefore := st.Cash

	cycle := s.catalog.AdvanceEconomicCycle()
	st.EconomicCycle = string(cycle.Cycle)
	st.CycleTurnsRemaining = cycle.Remaining

	if st.CumulativeInflationFactor <= 0 {
		st.CumulativeInflationFactor = 1
	}
	st.CumulativeInflationFactor *= 1 + cycle.Effects.InflationRate
	st.Income = math.Round(st.BaseIncome * st.CumulativeInflationFactor)
	st.Expenses = math.Round(st.BaseExpenses * st.CumulativeInflationFactor)

	passive := 0.0
	for _, inv := range st.Investments {
		sectorReturn := inv.SectorReturnMultiplier
		if sectorReturn == 0 {
			sectorReturn = 1
		}
		base := s.catalog.ApplyDifficultyToInvestmentReturn(inv.Income) * sectorReturn
		passive += s.pricing.ApplyVolatilityToReturn(inv, base)
	}
	st.PassiveIncome = finite(math.Round(passive))

	owned, err := s.pricing.UpdateMarketPrices(st.Investments)
	if err != nil {
		return TurnHistoryEntry{}, fmt.Errorf("update market prices: %w", err)
	}
	st.Investments = owned

	liabilities := 0.0
	for _, inv := range st.Investments {
		liabilities += inv.YearlyPayment / 12
	}
	st.Cash += st.Income + st.PassiveIncome - st.Expenses - liabilities

	var drawn []domain.GameEvent
	if s.catalog.ShouldTriggerEvent() {
		drawn = s.selector.WeightedRandomEvents(st.SelectedEventsPerYear[st.Age])
	}
	opps, err := s.selector.InvestmentOpportunities(st.SelectedOpportunitiesPerYear[st.Age])
	if err != nil {
		return TurnHistoryEntry{}, fmt.Errorf("draw opportunities: %w", err)
	}
	st.Opportunities = opps

	applied := make([]domain.GameEvent, 0, len(drawn))
	for _, ev := range drawn {
		ev.Effect.Amount = roundCents(s.catalog.ApplyEconomicCycleToEvent(ev.Effect.Amount))
		switch ev.Effect.Type {
		case domain.EffectCash:
			st.Cash += ev.Effect.Amount
		case domain.EffectExpenses:
			st.Expenses = math.Max(0, st.Expenses+ev.Effect.Amount)
			st.BaseExpenses = math.Max(0, st.BaseExpenses+ev.Effect.Amount/st.CumulativeInflationFactor)
		}
		applied = append(applied, ev)
		if st.SelectedEventsPerYear == nil {
			st.SelectedEventsPerYear = map[int][]string{}
		}
		st.SelectedEventsPerYear[st.Age] = append(st.SelectedEventsPerYear[st.Age], ev.Message)
		s.notify.Notify(NotifyInfo, "Life event", ev.Message)
	}
	st.CurrentEvents = applied

	calc := tax.Calculate(st.Income, st.PassiveIncome*s.gainsShare, st.PassiveIncome*(1-s.gainsShare))
	st.Cash -= calc.TotalTax
	st.YearlyTaxesPaid = calc.TotalTax
	st.LastTaxCalculation = &calc

	retirement.UpdateProjection(st.RetirementPlan, st.RetirementAccounts, st.Age)
	retirement.ApplyCatchUp(st.RetirementAccounts, st.Age)

	s.checkWin()

	st.Cash = finite(roundCents(st.Cash))
	st.Age++
	entry := TurnHistoryEntry{
		TurnNumber:           len(st.TurnHistory) + 1,
		Date:                 s.now().UTC().Format(time.RFC3339),
		Age:                  st.Age,
		CashBefore:           roundCents(cashBefore),
		CashAfter:            st.Cash,
		CashChange:           roundCents(st.Cash - cashBefore),
		Income:               st.Income,
		Expenses:             st.Expenses,
		PassiveIncome:        st.PassiveIncome,
		TaxesPaid:            calc.TotalTax,
		EconomicCycle:        st.EconomicCycle,
		Events:               domain.CloneEvents(applied),
		InvestmentsPurchased: domain.CloneInvestments(st.PendingPurchases),
	}
	if entry.InvestmentsPurchased == nil {
		entry.InvestmentsPurchased = []domain.Investment{}
	}
	st.TurnHistory = append(st.TurnHistory, entry)
	st.PendingPurchases = []domain.Investment{}
	retirement.CloseYear(st.RetirementAccounts)

	entry.NetWorth = roundCents(st.NetWorth())
	st.TurnHistory[len(st.TurnHistory)-1].NetWorth = entry.NetWorth

	if st.Cash < 0 {
		s.notify.Notify(NotifyWarning, "Negative cash", fmt.Sprintf("You are %.0f in the red.", -st.Cash))
	}
	s.log.Info("turn completed",
		"game_id", st.GameID,
		"turn", entry.TurnNumber,
		"age", st.Age,
		"cycle", st.EconomicCycle,
		"cash", st.Cash,
		"passive_income", st.PassiveIncome,
		"taxes", calc.TotalTax,
	)
	s.persist()
	return entry.clone(), nil
}

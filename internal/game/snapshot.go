package game

import (
	"encoding/json"
	"fmt"

	"cashflow/internal/catalog"
	"cashflow/internal/domain"
	"cashflow/internal/retirement"
	"cashflow/internal/risk"
)

func (s *Service) persist() {
	if s.store == nil {
		return
	}
	raw, err := json.Marshal(s.state)
	if err != nil {
		s.log.Warn("encode snapshot failed", "err", err)
		return
	}
	if err := s.store.Save(SnapshotKey, raw); err != nil {
		s.log.Warn("save snapshot failed", "err", err)
	}
}

// DecodeSnapshot parses a persisted snapshot and fills the fields older
// saves did not carry.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	applyDefaults(&snap)
	return snap, nil
}

func applyDefaults(snap *Snapshot) {
	if snap.BaseIncome == 0 {
		snap.BaseIncome = snap.Income
	}
	if snap.BaseExpenses == 0 {
		snap.BaseExpenses = snap.Expenses
	}
	if snap.CumulativeInflationFactor <= 0 {
		snap.CumulativeInflationFactor = 1
	}
	if snap.Investments == nil {
		snap.Investments = []domain.Investment{}
	}
	if snap.TurnHistory == nil {
		snap.TurnHistory = []TurnHistoryEntry{}
	}
	if snap.SelectedOpportunitiesPerYear == nil {
		snap.SelectedOpportunitiesPerYear = map[int][]string{}
	}
	if snap.SelectedEventsPerYear == nil {
		snap.SelectedEventsPerYear = map[int][]string{}
	}
	if snap.CurrentEvents == nil {
		snap.CurrentEvents = []domain.GameEvent{}
	}
	if snap.PendingPurchases == nil {
		snap.PendingPurchases = []domain.Investment{}
	}
	if snap.RetirementAccounts == nil {
		snap.RetirementAccounts = retirement.NewAccounts()
	}
	if snap.RetirementPlan == nil {
		snap.RetirementPlan = retirement.NewPlan(snap.Expenses)
	}
	if snap.Difficulty == "" {
		snap.Difficulty = string(catalog.DifficultyNormal)
	}
	if snap.EconomicCycle == "" {
		snap.EconomicCycle = string(catalog.CycleExpansion)
	}
}

// Restore loads the saved game, if any. A missing, unreadable or corrupt
// snapshot leaves the service untouched and returns false.
func (s *Service) Restore() bool {
	done := s.enter()
	ok := s.restore()
	done()
	if ok {
		s.subs.emitState(s.State())
	}
	return ok
}

func (s *Service) restore() bool {
	if s.store == nil {
		return false
	}
	raw, err := s.store.Load(SnapshotKey)
	if err != nil {
		s.log.Warn("load snapshot failed", "err", err)
		return false
	}
	if raw == nil {
		return false
	}
	snap, err := DecodeSnapshot(raw)
	if err != nil {
		s.log.Warn("discarding corrupt snapshot", "err", err)
		return false
	}
	difficulty, err := catalog.ParseDifficulty(snap.Difficulty)
	if err != nil {
		s.log.Warn("discarding corrupt snapshot", "err", err)
		return false
	}
	prevDifficulty := s.catalog.Difficulty()
	prevCycle := s.catalog.CurrentEconomicCycleConfig()
	if err := s.catalog.SetDifficulty(difficulty); err != nil {
		s.log.Warn("discarding corrupt snapshot", "err", err)
		return false
	}
	if err := s.catalog.RestoreCycle(snap.EconomicCycle, snap.CycleTurnsRemaining); err != nil {
		_ = s.catalog.SetDifficulty(prevDifficulty)
		_ = s.catalog.RestoreCycle(string(prevCycle.Cycle), prevCycle.Remaining)
		s.log.Warn("discarding corrupt snapshot", "err", err)
		return false
	}
	for i, inv := range snap.Investments {
		if inv.Sector != "" && inv.RiskCategory != "" {
			if _, err := domain.ParseSector(string(inv.Sector)); err == nil {
				continue
			}
			s.log.Warn("saved investment has unknown sector", "name", inv.Name, "sector", inv.Sector)
		}
		initialized, err := risk.InitializeRisk(inv)
		if err != nil {
			s.log.Warn("saved investment left as-is", "name", inv.Name, "err", err)
			continue
		}
		snap.Investments[i] = initialized
	}
	cycle := s.catalog.CurrentEconomicCycleConfig()
	snap.EconomicCycle = string(cycle.Cycle)
	snap.CycleTurnsRemaining = cycle.Remaining

	s.state = snap
	s.started = true
	s.log.Info("game restored", "game_id", snap.GameID, "age", snap.Age, "turns", len(snap.TurnHistory))
	s.nav.GoToGameScreen()
	return true
}

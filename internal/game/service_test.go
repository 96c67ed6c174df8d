package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"cashflow/internal/catalog"
	"cashflow/internal/domain"
	"cashflow/internal/retirement"
	"cashflow/internal/rng"
	"cashflow/internal/tax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data    map[string][]byte
	saves   int
	onSave  func()
	loadErr error
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Save(key string, value []byte) error {
	m.saves++
	if m.onSave != nil {
		m.onSave()
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Load(key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *memStore) Clear() error {
	m.data = map[string][]byte{}
	return nil
}

type recordingNotifier struct {
	kinds  []NotificationKind
	titles []string
}

func (r *recordingNotifier) Notify(kind NotificationKind, title, _ string) {
	r.kinds = append(r.kinds, kind)
	r.titles = append(r.titles, title)
}

type countingNavigator struct{ start, game int }

func (n *countingNavigator) GoToStartScreen() { n.start++ }
func (n *countingNavigator) GoToGameScreen()  { n.game++ }

var fixedNow = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func newTestService(t *testing.T, store Store, values ...float64) (*Service, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	svc, err := NewService(Options{
		Difficulty: catalog.DifficultyNormal,
		Source:     rng.NewSequence(values...),
		Store:      store,
		Notifier:   n,
		Logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Now:        fixedNow,
	})
	require.NoError(t, err)
	return svc, n
}

func startJanitor(t *testing.T, svc *Service) {
	t.Helper()
	job, err := svc.Catalog().JobByTitle("Janitor")
	require.NoError(t, err)
	require.NoError(t, svc.StartGame(job, 30, 10_000, "Alex"))
}

func TestNewServiceRejectsUnknownDifficulty(t *testing.T) {
	_, err := NewService(Options{Difficulty: "legendary"})
	require.ErrorIs(t, err, catalog.ErrUnknownDifficulty)
}

func TestStartGame(t *testing.T) {
	nav := &countingNavigator{}
	store := newMemStore()
	svc, err := NewService(Options{Source: rng.NewSequence(0.9), Store: store, Navigator: nav, Now: fixedNow})
	require.NoError(t, err)

	_, err = svc.NextTurn()
	require.ErrorIs(t, err, ErrNotStarted)

	startJanitor(t, svc)
	p := svc.Player()
	assert.Equal(t, "Alex", p.Name)
	assert.Equal(t, "Janitor", p.Job)
	assert.Equal(t, 30, p.Age)
	assert.Equal(t, 2540.0, p.Income)
	assert.Equal(t, 1500.0, p.Expenses)
	assert.Equal(t, 10_000.0, p.Cash)
	assert.Equal(t, 2540.0, p.BaseIncome)
	assert.Equal(t, 1.0, p.CumulativeInflationFactor)
	assert.Len(t, svc.Opportunities(), 5)
	assert.Len(t, svc.RetirementAccounts(), 4)
	assert.Equal(t, 1, nav.game)

	st := svc.State()
	assert.NotEmpty(t, st.GameID)
	assert.Equal(t, "expansion", st.EconomicCycle)
	assert.Equal(t, 4, st.CycleTurnsRemaining)
	assert.Contains(t, store.data, SnapshotKey)
}

func TestStartGameDrawsNameWhenEmpty(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	job, err := svc.Catalog().JobByTitle("Teacher")
	require.NoError(t, err)
	require.NoError(t, svc.StartGame(job, 25, 5_000, "  "))
	assert.NotEmpty(t, svc.Player().Name)
}

func TestNextTurnInflationWithoutEvents(t *testing.T) {
	// 0.9 never clears the 0.7 event threshold on normal difficulty.
	svc, _ := newTestService(t, nil, 0.9)
	startJanitor(t, svc)

	entry, err := svc.NextTurn()
	require.NoError(t, err)

	p := svc.Player()
	assert.Equal(t, 2616.0, p.Income)
	assert.Equal(t, 1545.0, p.Expenses)
	assert.InDelta(t, 1.03, p.CumulativeInflationFactor, 1e-12)

	wantTax := tax.Calculate(2616, 0, 0).TotalTax
	assert.InDelta(t, 10_000+2616-1545-wantTax, p.Cash, 0.01)
	assert.Equal(t, wantTax, p.YearlyTaxesPaid)
	assert.Equal(t, wantTax, entry.TaxesPaid)
	assert.Empty(t, entry.Events)
	assert.Equal(t, 1, entry.TurnNumber)
	assert.Equal(t, 31, entry.Age)
	assert.Equal(t, 31, p.Age)
	assert.Equal(t, "2026-01-02T03:04:05Z", entry.Date)
	assert.InDelta(t, p.Cash-10_000, entry.CashChange, 0.01)

	calc, ok := svc.LastTax()
	require.True(t, ok)
	assert.Equal(t, wantTax, calc.TotalTax)
}

func TestNextTurnNumbersAndCycle(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)

	cycles := []string{"expansion", "expansion", "expansion", "peak", "peak", "recession"}
	for i, want := range cycles {
		entry, err := svc.NextTurn()
		require.NoError(t, err)
		assert.Equal(t, i+1, entry.TurnNumber)
		assert.Equal(t, 31+i, entry.Age)
		assert.Equal(t, want, entry.EconomicCycle, "turn %d", i+1)
	}
	assert.Len(t, svc.History(), len(cycles))
}

func TestNextTurnAccounting(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)

	opp, err := svc.Opportunity(0)
	require.NoError(t, err)
	require.NoError(t, svc.BuyInvestmentWithLoan(opp))

	for turn := 0; turn < 5; turn++ {
		before := svc.Player()
		liabilities := 0.0
		for _, inv := range svc.Investments() {
			liabilities += inv.YearlyPayment / 12
		}

		entry, err := svc.NextTurn()
		require.NoError(t, err)

		evCash, evExpenses := 0.0, 0.0
		for _, ev := range entry.Events {
			switch ev.Effect.Type {
			case domain.EffectCash:
				evCash += ev.Effect.Amount
			case domain.EffectExpenses:
				evExpenses += ev.Effect.Amount
			}
		}
		preEventExpenses := entry.Expenses - evExpenses
		want := before.Cash + entry.Income + entry.PassiveIncome - preEventExpenses - liabilities + evCash - entry.TaxesPaid

		after := svc.Player()
		assert.InDelta(t, want, after.Cash, 0.01, "turn %d", turn+1)
		assert.Equal(t, tax.Calculate(entry.Income, entry.PassiveIncome*DefaultCapitalGainsShare, entry.PassiveIncome*(1-DefaultCapitalGainsShare)).TotalTax, entry.TaxesPaid)
		assert.Equal(t, entry.TaxesPaid, after.YearlyTaxesPaid)
		assert.InDelta(t, after.Expenses, after.BaseExpenses*after.CumulativeInflationFactor, 0.51)
		assert.LessOrEqual(t, len(entry.Events), 3)
	}
}

func TestEventsNotRepeatedWithinYear(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.1)
	startJanitor(t, svc)
	_, err := svc.NextTurn()
	require.NoError(t, err)
	st := svc.State()
	msgs := st.SelectedEventsPerYear[30]
	seen := map[string]bool{}
	for _, m := range msgs {
		assert.False(t, seen[m], "duplicate event %q", m)
		seen[m] = true
	}
}

func TestBuyInvestment(t *testing.T) {
	svc, n := newTestService(t, newMemStore(), 0.5)
	startJanitor(t, svc)

	opps := svc.Opportunities()
	opp := opps[0]
	before := svc.Player()

	require.NoError(t, svc.BuyInvestment(opp))
	after := svc.Player()
	assert.Equal(t, before.Cash-opp.Amount, after.Cash)
	assert.Equal(t, before.PassiveIncome+opp.Income, after.PassiveIncome)
	require.Len(t, svc.Investments(), 1)
	assert.Equal(t, opp, svc.Investments()[0])
	assert.Len(t, svc.Opportunities(), len(opps)-1)
	assert.Contains(t, svc.State().SelectedOpportunitiesPerYear[30], opp.Name)
	assert.Contains(t, n.kinds, NotifySuccess)

	entry, err := svc.NextTurn()
	require.NoError(t, err)
	require.Len(t, entry.InvestmentsPurchased, 1)
	assert.Equal(t, opp.Name, entry.InvestmentsPurchased[0].Name)
	for _, o := range svc.Opportunities() {
		assert.NotEqual(t, opp.Name, o.Name)
	}

	entry, err = svc.NextTurn()
	require.NoError(t, err)
	assert.Empty(t, entry.InvestmentsPurchased)
}

func TestPurchaseLogSurvivesRestore(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store, 0.5)
	startJanitor(t, svc)
	opp, err := svc.Opportunity(0)
	require.NoError(t, err)
	require.NoError(t, svc.BuyInvestment(opp))
	require.Len(t, svc.State().PendingPurchases, 1)

	resumed, _ := newTestService(t, store, 0.5)
	require.True(t, resumed.Restore())
	assert.Len(t, resumed.State().PendingPurchases, 1)
	entry, err := resumed.NextTurn()
	require.NoError(t, err)
	require.Len(t, entry.InvestmentsPurchased, 1)
	assert.Equal(t, opp.Name, entry.InvestmentsPurchased[0].Name)
	assert.Empty(t, resumed.State().PendingPurchases)

	again, _ := newTestService(t, store, 0.5)
	require.True(t, again.Restore())
	history := again.History()
	require.Len(t, history, 1)
	require.Len(t, history[0].InvestmentsPurchased, 1)
	assert.Equal(t, opp.Name, history[0].InvestmentsPurchased[0].Name)
	assert.Empty(t, again.State().PendingPurchases)
}

func TestTurnHistoryEntryFields(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)
	before := svc.Player().Cash
	entry, err := svc.NextTurn()
	require.NoError(t, err)
	assert.Equal(t, before, entry.CashBefore)
	assert.Equal(t, svc.Player().Cash, entry.CashAfter)
	assert.InDelta(t, entry.CashAfter-entry.CashBefore, entry.CashChange, 0.01)

	raw, err := json.Marshal(entry)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"turnNumber", "age", "cashBefore", "cashAfter", "income", "expenses", "passiveIncome", "events", "investmentsPurchased", "date"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "[]", string(fields["investmentsPurchased"]))
}

func TestCanBuy(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)
	assert.True(t, svc.CanBuy(domain.Investment{Amount: 10_000}))
	assert.False(t, svc.CanBuy(domain.Investment{Amount: 10_000.01}))
}

func TestBuyInvestmentWithLoan(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)

	inv := domain.Investment{Name: "Duplex", Amount: 60_000, Income: 900, YearlyPayment: 3_600, Type: domain.TypeRealEstate}
	require.NoError(t, svc.BuyInvestmentWithLoan(inv))

	p := svc.Player()
	assert.Equal(t, 10_000.0, p.Cash)
	assert.Equal(t, 6_000.0, p.LoanTotal)
	assert.Equal(t, 900.0, p.PassiveIncome)
	owned := svc.Investments()
	require.Len(t, owned, 1)
	assert.Equal(t, "Duplex"+LoanSuffix, owned[0].Name)
	assert.Equal(t, 3_600.0+6_000, owned[0].YearlyPayment)
	assert.Equal(t, 60_000.0, owned[0].Amount)
}

func TestLoanRateFollowsDifficulty(t *testing.T) {
	svc, err := NewService(Options{Difficulty: catalog.DifficultyExpert, Source: rng.NewSequence(0.5)})
	require.NoError(t, err)
	startJanitor(t, svc)
	cash := svc.Player().Cash
	require.NoError(t, svc.BuyInvestmentWithLoan(domain.Investment{Name: "Shop", Amount: 10_000, Type: domain.TypeBusiness}))
	assert.Equal(t, cash, svc.Player().Cash)
	assert.InDelta(t, 1_500, svc.Player().LoanTotal, 1e-9)
}

func TestSellInvestment(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)
	require.NoError(t, svc.BuyInvestment(domain.Investment{Name: "Shares", Amount: 4_000, Income: 50, Type: domain.TypeCapital}))

	assert.False(t, svc.SellInvestment(-1))
	assert.False(t, svc.SellInvestment(1))

	require.True(t, svc.SellInvestment(0))
	p := svc.Player()
	assert.Equal(t, 6_000.0+3_600, p.Cash)
	assert.Zero(t, p.PassiveIncome)
	assert.Empty(t, svc.Investments())
}

func TestSellSubtractsHoldingIncome(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)
	require.NoError(t, svc.BuyInvestment(domain.Investment{Name: "Shares", Amount: 1_000, Income: 50, Type: domain.TypeCapital}))
	svc.state.PassiveIncome = 20

	require.True(t, svc.SellInvestment(0))
	assert.Equal(t, -30.0, svc.Player().PassiveIncome)
}

func TestWinCondition(t *testing.T) {
	svc, n := newTestService(t, nil, 0.9)
	startJanitor(t, svc)
	require.False(t, svc.Won())

	require.NoError(t, svc.BuyInvestment(domain.Investment{Name: "Small", Amount: 1_000, Income: 100, Type: domain.TypeCapital}))
	assert.False(t, svc.Won())

	require.NoError(t, svc.BuyInvestment(domain.Investment{Name: "Empire", Amount: 1_000, Income: 1_600, Type: domain.TypeBusiness}))
	assert.True(t, svc.Won())
	assert.Contains(t, n.titles, "Financial freedom!")

	wins := 0
	for _, title := range n.titles {
		if title == "Financial freedom!" {
			wins++
		}
	}
	_, err := svc.NextTurn()
	require.NoError(t, err)
	after := 0
	for _, title := range n.titles {
		if title == "Financial freedom!" {
			after++
		}
	}
	assert.Equal(t, wins, after, "win is announced once")
}

func TestRetirementThroughService(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.9)
	startJanitor(t, svc)

	ok, err := svc.ContributeToRetirement(retirement.AccountIRA, 5_000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5_000.0, svc.Player().Cash)

	_, err = svc.ContributeToRetirement("hsa", 10)
	require.ErrorIs(t, err, retirement.ErrUnknownAccount)

	ok, err = svc.WithdrawFromRetirement(retirement.AccountIRA, 1_000)
	require.NoError(t, err)
	assert.False(t, ok, "too young")

	_, err = svc.NextTurn()
	require.NoError(t, err)
	for _, acc := range svc.RetirementAccounts() {
		if acc.Type == retirement.AccountIRA {
			assert.Zero(t, acc.Contributions)
			assert.Equal(t, 5_000.0, acc.LifetimeContributions)
			assert.Equal(t, 5_000.0, acc.Balance)
		}
	}
	plan, ok := svc.RetirementPlan()
	require.True(t, ok)
	assert.Equal(t, 5_000.0, plan.CurrentSavings)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store, 0.5)
	startJanitor(t, svc)
	opp, err := svc.Opportunity(1)
	require.NoError(t, err)
	require.NoError(t, svc.BuyInvestment(opp))
	for i := 0; i < 3; i++ {
		_, err := svc.NextTurn()
		require.NoError(t, err)
	}
	_, err = svc.ContributeToRetirement(retirement.Account401k, 500)
	require.NoError(t, err)

	restored, _ := newTestService(t, store, 0.5)
	require.True(t, restored.Restore())
	assert.True(t, restored.Started())
	assert.Equal(t, svc.State(), restored.State())
	assert.Equal(t, svc.Catalog().CurrentEconomicCycleConfig(), restored.Catalog().CurrentEconomicCycleConfig())
}

func TestRestoreMissingOrCorrupt(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store, 0.5)
	assert.False(t, svc.Restore())

	store.data[SnapshotKey] = []byte("{not json")
	assert.False(t, svc.Restore())
	assert.False(t, svc.Started())

	store.data[SnapshotKey] = []byte(`{"name":"X","difficulty":"legendary"}`)
	assert.False(t, svc.Restore())

	store.data[SnapshotKey] = []byte(`{"name":"X","economicCycle":"depression"}`)
	assert.False(t, svc.Restore())
	assert.Equal(t, catalog.CycleExpansion, svc.Catalog().CurrentEconomicCycleConfig().Cycle)

	store.loadErr = errors.New("disk gone")
	assert.False(t, svc.Restore())
	assert.False(t, svc.Started())
}

func TestRestoreLogsCorruptSnapshot(t *testing.T) {
	var logs bytes.Buffer
	store := newMemStore()
	store.data[SnapshotKey] = []byte("{not json")
	svc, err := NewService(Options{Source: rng.NewSequence(0.5), Store: store, Logger: slog.New(slog.NewJSONHandler(&logs, nil))})
	require.NoError(t, err)
	require.False(t, svc.Restore())

	lines := bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n"))
	var line map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &line))
	assert.Equal(t, "discarding corrupt snapshot", line["msg"])
	assert.Contains(t, line, "err")
}

func TestRestoreLegacySnapshot(t *testing.T) {
	store := newMemStore()
	store.data[SnapshotKey] = []byte(`{
		"name": "Old Timer",
		"age": 40,
		"cash": 1200,
		"income": 3000,
		"expenses": 2000,
		"passiveIncome": 200,
		"investments": [{"name": "Bitcoin", "amount": 10000, "income": 200, "type": "crypto"}],
		"selectedOpportunitiesPerYear": {"39": ["Bitcoin"]}
	}`)
	svc, _ := newTestService(t, store, 0.5)
	require.True(t, svc.Restore())

	p := svc.Player()
	assert.Equal(t, 3000.0, p.BaseIncome)
	assert.Equal(t, 2000.0, p.BaseExpenses)
	assert.Equal(t, 1.0, p.CumulativeInflationFactor)
	assert.Len(t, svc.RetirementAccounts(), 4)
	assert.Equal(t, []string{"Bitcoin"}, svc.State().SelectedOpportunitiesPerYear[39])

	owned := svc.Investments()
	require.Len(t, owned, 1)
	assert.NotEmpty(t, owned[0].Sector)
	assert.NotEmpty(t, owned[0].RiskCategory)
	assert.Equal(t, 10_000.0, owned[0].BasePrice)
	assert.Empty(t, owned[0].PriceHistory)

	_, err := svc.NextTurn()
	require.NoError(t, err)
	held := svc.Investments()[0]
	assert.Len(t, held.PriceHistory, 1)
	assert.Equal(t, 10_000.0, held.Amount)
}

func TestRestoreReassignsUnknownSector(t *testing.T) {
	store := newMemStore()
	store.data[SnapshotKey] = []byte(`{
		"name": "Old Timer",
		"age": 40,
		"income": 3000,
		"expenses": 2000,
		"investments": [{"name": "Solar Farm", "amount": 5000, "income": 80, "type": "business", "sector": "aerospace", "riskCategory": "medium"}]
	}`)
	svc, _ := newTestService(t, store, 0.5)
	require.True(t, svc.Restore())
	owned := svc.Investments()
	require.Len(t, owned, 1)
	assert.Equal(t, domain.SectorEnergy, owned[0].Sector)
}

func TestResetClearsStore(t *testing.T) {
	store := newMemStore()
	nav := &countingNavigator{}
	svc, err := NewService(Options{Source: rng.NewSequence(0.5), Store: store, Navigator: nav})
	require.NoError(t, err)
	startJanitor(t, svc)
	require.NotEmpty(t, store.data)

	svc.Reset()
	assert.Empty(t, store.data)
	assert.False(t, svc.Started())
	assert.Equal(t, 1, nav.start)
}

func TestSubscriptions(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	var states, turns int
	unsubscribe := svc.Subscribe(func(Snapshot) { states++ })
	svc.SubscribeTurnEnded(func(e TurnHistoryEntry) {
		turns++
		assert.Equal(t, turns, e.TurnNumber)
	})

	startJanitor(t, svc)
	_, err := svc.NextTurn()
	require.NoError(t, err)
	assert.Equal(t, 2, states)
	assert.Equal(t, 1, turns)

	unsubscribe()
	_, err = svc.NextTurn()
	require.NoError(t, err)
	assert.Equal(t, 2, states)
	assert.Equal(t, 2, turns)
}

func TestSubscriberMayIssueCommands(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)
	sold := false
	svc.SubscribeTurnEnded(func(TurnHistoryEntry) {
		if !sold {
			sold = true
			svc.SellInvestment(0)
		}
	})
	require.NoError(t, svc.BuyInvestment(domain.Investment{Name: "Shares", Amount: 1_000, Type: domain.TypeCapital}))
	_, err := svc.NextTurn()
	require.NoError(t, err)
	assert.Empty(t, svc.Investments())
}

func TestOverlappingMutationPanics(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store, 0.5)
	startJanitor(t, svc)
	store.onSave = func() { _, _ = svc.NextTurn() }
	assert.PanicsWithValue(t, ErrReentrantCall, func() {
		_ = svc.BuyInvestment(domain.Investment{Name: "Shares", Amount: 1_000, Type: domain.TypeCapital})
	})
}

func TestStateIsACopy(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)
	require.NoError(t, svc.BuyInvestment(svc.Opportunities()[0]))

	st := svc.State()
	st.Investments[0].PriceHistory[0] = -1
	st.SelectedOpportunitiesPerYear[30][0] = "changed"
	st.RetirementAccounts[0].Balance = 99

	again := svc.State()
	assert.NotEqual(t, -1.0, again.Investments[0].PriceHistory[0])
	assert.NotEqual(t, "changed", again.SelectedOpportunitiesPerYear[30][0])
	assert.Zero(t, again.RetirementAccounts[0].Balance)
}

func TestInvestmentDetail(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.5)
	startJanitor(t, svc)
	_, err := svc.InvestmentDetail(0)
	require.ErrorIs(t, err, ErrInvestmentNotFound)

	require.NoError(t, svc.BuyInvestment(domain.Investment{Name: "Shares", Amount: 1_200, Income: 100, Type: domain.TypeCapital}))
	d, err := svc.InvestmentDetail(0)
	require.NoError(t, err)
	require.NotNil(t, d.PaybackMonths)
	assert.InDelta(t, 12, *d.PaybackMonths, 1e-9)
}

func TestMarketView(t *testing.T) {
	svc, _ := newTestService(t, nil, 0.9)
	view := svc.Market()
	assert.Equal(t, catalog.DifficultyNormal, view.Difficulty)
	assert.Equal(t, catalog.CycleExpansion, view.Cycle.Cycle)
	assert.Equal(t, svc.Catalog().LoanRate(), view.LoanRate)
	assert.Equal(t, 1.0, view.Modifiers.Salary)
	require.Len(t, view.Brackets, 4)
	assert.Equal(t, "low", view.Brackets[0].Name)
	assert.True(t, view.Brackets[3].Max.IsZero())
}

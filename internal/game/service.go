package game

import (
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"cashflow/internal/catalog"
	"cashflow/internal/domain"
	"cashflow/internal/events"
	"cashflow/internal/retirement"
	"cashflow/internal/risk"
	"cashflow/internal/rng"

	"github.com/google/uuid"
)

type Options struct {
	Difficulty        catalog.Difficulty
	Source            rng.Source
	Store             Store
	Notifier          Notifier
	Navigator         Navigator
	Logger            *slog.Logger
	EventCount        events.Range
	OpportunityCount  events.Range
	CapitalGainsShare float64
	Now               func() time.Time
}

// Service owns one game: player finances, holdings, history and the
// retirement ledger. It is not safe for concurrent use; overlapping
// mutating calls panic with ErrReentrantCall.
type Service struct {
	log      *slog.Logger
	catalog  *catalog.Catalog
	pricing  *risk.Engine
	selector *events.Selector
	rand     rng.Source
	store    Store
	notify   Notifier
	nav      Navigator
	now      func() time.Time

	gainsShare float64

	busy    atomic.Bool
	started bool
	state   Snapshot

	subs signals
}

func NewService(opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	src := opts.Source
	if src == nil {
		src = rng.New()
	}
	difficulty := opts.Difficulty
	if difficulty == "" {
		difficulty = catalog.DifficultyNormal
	}
	c, err := catalog.New(difficulty, src)
	if err != nil {
		return nil, err
	}
	pricing := risk.NewEngine(c, src)

	s := &Service{
		log:        logger,
		catalog:    c,
		pricing:    pricing,
		selector:   events.NewSelector(c, pricing, src, opts.EventCount, opts.OpportunityCount),
		rand:       src,
		store:      opts.Store,
		notify:     opts.Notifier,
		nav:        opts.Navigator,
		now:        opts.Now,
		gainsShare: opts.CapitalGainsShare,
	}
	if s.notify == nil {
		s.notify = nopNotifier{}
	}
	if s.nav == nil {
		s.nav = NopNavigator{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.gainsShare <= 0 || s.gainsShare > 1 {
		s.gainsShare = DefaultCapitalGainsShare
	}
	return s, nil
}

func (s *Service) enter() func() {
	if !s.busy.CompareAndSwap(false, true) {
		panic(ErrReentrantCall)
	}
	return func() { s.busy.Store(false) }
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

func (s *Service) Started() bool { return s.started }

// StartGame resets every piece of state and begins a new game for the given
// job. An empty name draws one from the catalog.
func (s *Service) StartGame(job domain.Job, age int, startingMoney float64, name string) error {
	done := s.enter()
	err := s.startGame(job, age, startingMoney, name)
	done()
	if err != nil {
		return err
	}
	s.subs.emitState(s.State())
	return nil
}

func (s *Service) startGame(job domain.Job, age int, startingMoney float64, name string) error {
	if strings.TrimSpace(name) == "" {
		name = s.catalog.RandomName()
	}
	if err := s.catalog.RestoreCycle(string(catalog.CycleExpansion), 0); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			s.log.Warn("clear saved game failed", "err", err)
		}
	}

	salary := math.Round(rng.Between(s.rand, job.SalaryMin, job.SalaryMax))
	income := math.Round(s.catalog.ApplyDifficultyToSalary(salary))
	expenses := math.Round(s.catalog.ApplyDifficultyToExpenses(job.Expenses))
	cycle := s.catalog.CurrentEconomicCycleConfig()

	s.state = Snapshot{
		PlayerState: PlayerState{
			Name:                      name,
			Job:                       job.Title,
			Age:                       age,
			Cash:                      math.Round(s.catalog.ApplyDifficultyToStartingCash(startingMoney)),
			Income:                    income,
			Expenses:                  expenses,
			BaseIncome:                income,
			BaseExpenses:              expenses,
			CumulativeInflationFactor: 1,
		},
		GameID:                       uuid.NewString(),
		Difficulty:                   string(s.catalog.Difficulty()),
		EconomicCycle:                string(cycle.Cycle),
		CycleTurnsRemaining:          cycle.Remaining,
		Investments:                  []domain.Investment{},
		TurnHistory:                  []TurnHistoryEntry{},
		SelectedOpportunitiesPerYear: map[int][]string{},
		SelectedEventsPerYear:        map[int][]string{},
		CurrentEvents:                []domain.GameEvent{},
		RetirementAccounts:           retirement.NewAccounts(),
		RetirementPlan:               retirement.NewPlan(expenses),
		PendingPurchases:             []domain.Investment{},
	}

	opps, err := s.selector.InvestmentOpportunities(nil)
	if err != nil {
		return err
	}
	s.state.Opportunities = opps
	s.started = true

	s.log.Info("game started", "game_id", s.state.GameID, "name", name, "job", job.Title, "difficulty", s.state.Difficulty)
	s.nav.GoToGameScreen()
	s.persist()
	return nil
}

// Reset abandons the current game and clears the store.
func (s *Service) Reset() {
	done := s.enter()
	s.started = false
	s.state = Snapshot{}
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			s.log.Warn("clear saved game failed", "err", err)
		}
	}
	s.nav.GoToStartScreen()
	done()
	s.subs.emitState(s.State())
}

// CanBuy reports whether cash covers the investment's amount.
func (s *Service) CanBuy(inv domain.Investment) bool {
	return s.state.Cash >= inv.Amount
}

// BuyInvestment pays the full amount in cash. Callers check CanBuy first;
// the purchase itself does not re-validate affordability.
func (s *Service) BuyInvestment(inv domain.Investment) error {
	done := s.enter()
	if !s.started {
		done()
		return ErrNotStarted
	}
	bought := inv.Clone()
	s.state.Cash -= bought.Amount
	s.state.PassiveIncome += bought.Income
	s.state.Investments = append(s.state.Investments, bought)
	s.recordPurchase(inv.Name, bought)
	s.log.Info("investment bought", "name", bought.Name, "amount", bought.Amount, "income", bought.Income)
	s.notify.Notify(NotifySuccess, "Investment purchased", bought.Name)
	s.checkWin()
	s.persist()
	done()
	s.subs.emitState(s.State())
	return nil
}

// BuyInvestmentWithLoan finances the whole amount without touching cash. The
// fee (amount times the loan rate) is added to the loan total and to the
// holding's yearly payment.
func (s *Service) BuyInvestmentWithLoan(inv domain.Investment) error {
	done := s.enter()
	if !s.started {
		done()
		return ErrNotStarted
	}
	fee := roundCents(inv.Amount * s.catalog.LoanRate())
	financed := inv.Clone()
	financed.Name = inv.Name + LoanSuffix
	financed.YearlyPayment += fee

	s.state.LoanTotal += fee
	s.state.PassiveIncome += inv.Income
	s.state.Investments = append(s.state.Investments, financed)
	s.recordPurchase(inv.Name, financed)
	s.log.Info("investment financed", "name", inv.Name, "amount", inv.Amount, "fee", fee)
	s.notify.Notify(NotifySuccess, "Investment financed", financed.Name)
	s.checkWin()
	s.persist()
	done()
	s.subs.emitState(s.State())
	return nil
}

func (s *Service) recordPurchase(name string, inv domain.Investment) {
	s.state.PendingPurchases = append(s.state.PendingPurchases, inv.Clone())
	if s.state.SelectedOpportunitiesPerYear == nil {
		s.state.SelectedOpportunitiesPerYear = map[int][]string{}
	}
	seen := s.state.SelectedOpportunitiesPerYear[s.state.Age]
	if !slices.Contains(seen, name) {
		s.state.SelectedOpportunitiesPerYear[s.state.Age] = append(seen, name)
	}
	for i, opp := range s.state.Opportunities {
		if opp.Name == name {
			s.state.Opportunities = slices.Delete(s.state.Opportunities, i, i+1)
			break
		}
	}
}

// SellInvestment removes the holding at index and credits 90% of its
// amount. It returns false when index is out of range.
func (s *Service) SellInvestment(index int) bool {
	done := s.enter()
	if !s.started || index < 0 || index >= len(s.state.Investments) {
		done()
		return false
	}
	inv := s.state.Investments[index]
	proceeds := roundCents(inv.Amount * SaleRecoveryRate)
	s.state.Cash += proceeds
	s.state.PassiveIncome -= inv.Income
	s.state.Investments = slices.Delete(s.state.Investments, index, index+1)
	s.log.Info("investment sold", "name", inv.Name, "proceeds", proceeds)
	s.notify.Notify(NotifyInfo, "Investment sold", inv.Name)
	s.persist()
	done()
	s.subs.emitState(s.State())
	return true
}

func (s *Service) wallet() *retirement.Wallet {
	return &retirement.Wallet{
		Cash:            s.state.Cash,
		Income:          s.state.Income,
		Age:             s.state.Age,
		YearlyTaxesPaid: s.state.YearlyTaxesPaid,
	}
}

func (s *Service) applyWallet(w *retirement.Wallet) {
	s.state.Cash = w.Cash
	s.state.YearlyTaxesPaid = w.YearlyTaxesPaid
}

// ContributeToRetirement moves cash into a retirement account, capped by the
// annual allowance and available cash.
func (s *Service) ContributeToRetirement(t retirement.AccountType, amount float64) (bool, error) {
	done := s.enter()
	if !s.started {
		done()
		return false, ErrNotStarted
	}
	w := s.wallet()
	ok, err := retirement.Contribute(s.state.RetirementAccounts, t, amount, w)
	if err != nil || !ok {
		done()
		return ok, err
	}
	s.applyWallet(w)
	retirement.UpdateProjection(s.state.RetirementPlan, s.state.RetirementAccounts, s.state.Age)
	s.log.Info("retirement contribution", "account", string(t), "amount", amount)
	s.persist()
	done()
	s.subs.emitState(s.State())
	return true, nil
}

// WithdrawFromRetirement pays out of an account once the player has reached
// its withdrawal age.
func (s *Service) WithdrawFromRetirement(t retirement.AccountType, amount float64) (bool, error) {
	done := s.enter()
	if !s.started {
		done()
		return false, ErrNotStarted
	}
	w := s.wallet()
	ok, err := retirement.Withdraw(s.state.RetirementAccounts, t, amount, w)
	if err != nil || !ok {
		done()
		return ok, err
	}
	s.applyWallet(w)
	retirement.UpdateProjection(s.state.RetirementPlan, s.state.RetirementAccounts, s.state.Age)
	s.log.Info("retirement withdrawal", "account", string(t), "amount", amount)
	s.persist()
	done()
	s.subs.emitState(s.State())
	return true, nil
}

func (s *Service) CanWithdrawFromRetirement(t retirement.AccountType) (bool, error) {
	return retirement.CanWithdraw(s.state.RetirementAccounts, t, s.state.Age)
}

func (s *Service) checkWin() {
	if s.state.Won || s.state.PassiveIncome <= 0 || s.state.PassiveIncome < s.state.Expenses {
		return
	}
	s.state.Won = true
	s.log.Info("financial freedom reached", "game_id", s.state.GameID, "age", s.state.Age, "passive_income", s.state.PassiveIncome)
	s.notify.Notify(NotifySuccess, "Financial freedom!", "Your passive income now covers your expenses.")
}

// Package cli holds the plumbing behind the cashflow command line: a
// Backend that plays either a local saved game or a remote one.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cashflow/internal/config"
	"cashflow/internal/domain"
	"cashflow/internal/game"
	"cashflow/internal/retirement"
	"cashflow/internal/store"
)

type StartInput struct {
	Job           string
	Age           int
	StartingMoney float64
	Name          string
}

type RetirementAction string

const (
	Contribute RetirementAction = "contribute"
	Withdraw   RetirementAction = "withdraw"
)

type Backend interface {
	Jobs(ctx context.Context) ([]domain.Job, error)
	Start(ctx context.Context, in StartInput) (game.Snapshot, error)
	State(ctx context.Context) (game.Snapshot, error)
	NextTurn(ctx context.Context) (game.TurnHistoryEntry, error)
	Buy(ctx context.Context, index int, financed bool) (domain.Investment, error)
	Sell(ctx context.Context, index int) error
	Investments(ctx context.Context) ([]game.InvestmentDetail, error)
	Market(ctx context.Context) (game.MarketView, error)
	Retirement(ctx context.Context, action RetirementAction, account retirement.AccountType, amount float64) error
	Close() error
}

var (
	_ Backend = (*Local)(nil)
	_ Backend = (*Client)(nil)
)

// Local plays the game saved in the configured store. Each process run
// restores the snapshot, applies one command and persists it again.
type Local struct {
	svc     *game.Service
	release func()
}

func OpenLocal(ctx context.Context, cfg config.Config, notifier game.Notifier, logger *slog.Logger) (*Local, error) {
	st, release, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	svc, err := game.NewService(game.Options{
		Difficulty:        cfg.Difficulty,
		Store:             st,
		Notifier:          notifier,
		Logger:            logger,
		EventCount:        cfg.EventCount,
		OpportunityCount:  cfg.OpportunityCount,
		CapitalGainsShare: cfg.CapitalGainsShare,
	})
	if err != nil {
		release()
		return nil, err
	}
	svc.Restore()
	return &Local{svc: svc, release: release}, nil
}

func NewLocal(svc *game.Service) *Local {
	return &Local{svc: svc, release: func() {}}
}

func (l *Local) Service() *game.Service { return l.svc }

func (l *Local) Jobs(context.Context) ([]domain.Job, error) {
	return l.svc.Catalog().Jobs(), nil
}

func (l *Local) Start(_ context.Context, in StartInput) (game.Snapshot, error) {
	job, err := l.svc.Catalog().JobByTitle(in.Job)
	if err != nil {
		return game.Snapshot{}, err
	}
	if err := l.svc.StartGame(job, in.Age, in.StartingMoney, in.Name); err != nil {
		return game.Snapshot{}, err
	}
	return l.svc.State(), nil
}

func (l *Local) State(context.Context) (game.Snapshot, error) {
	if !l.svc.Started() {
		return game.Snapshot{}, game.ErrNotStarted
	}
	return l.svc.State(), nil
}

func (l *Local) NextTurn(context.Context) (game.TurnHistoryEntry, error) {
	return l.svc.NextTurn()
}

func (l *Local) Buy(_ context.Context, index int, financed bool) (domain.Investment, error) {
	if !l.svc.Started() {
		return domain.Investment{}, game.ErrNotStarted
	}
	opp, err := l.svc.Opportunity(index)
	if err != nil {
		return domain.Investment{}, err
	}
	if financed {
		return opp, l.svc.BuyInvestmentWithLoan(opp)
	}
	if !l.svc.CanBuy(opp) {
		return domain.Investment{}, fmt.Errorf("%w: %s costs %.0f", game.ErrInsufficientFunds, opp.Name, opp.Amount)
	}
	return opp, l.svc.BuyInvestment(opp)
}

func (l *Local) Sell(_ context.Context, index int) error {
	if !l.svc.Started() {
		return game.ErrNotStarted
	}
	if !l.svc.SellInvestment(index) {
		return game.ErrInvestmentNotFound
	}
	return nil
}

func (l *Local) Investments(context.Context) ([]game.InvestmentDetail, error) {
	if !l.svc.Started() {
		return nil, game.ErrNotStarted
	}
	owned := l.svc.Investments()
	out := make([]game.InvestmentDetail, 0, len(owned))
	for i := range owned {
		d, err := l.svc.InvestmentDetail(i)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (l *Local) Market(context.Context) (game.MarketView, error) {
	return l.svc.Market(), nil
}

var ErrRetirementRejected = errors.New("retirement transaction rejected")

func (l *Local) Retirement(_ context.Context, action RetirementAction, account retirement.AccountType, amount float64) error {
	move := l.svc.ContributeToRetirement
	if action == Withdraw {
		move = l.svc.WithdrawFromRetirement
	}
	ok, err := move(account, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRetirementRejected
	}
	return nil
}

func (l *Local) Close() error {
	l.release()
	return nil
}

// Package retirement models tax-advantaged savings accounts and the
// retirement plan projection.
package retirement

import (
	"errors"
	"fmt"
	"math"

	"cashflow/internal/tax"
)

var ErrUnknownAccount = errors.New("unknown retirement account")

type AccountType string

const (
	Account401k    AccountType = "401k"
	AccountIRA     AccountType = "ira"
	AccountRothIRA AccountType = "roth_ira"
	AccountPension AccountType = "pension"
)

const (
	AnnualReturn       = 0.07
	SafeWithdrawalRate = 0.04
	DefaultTargetAge   = 65
	CatchUpAge         = 50
	CatchUp401kLimit   = 30_500
)

type Account struct {
	Type                  AccountType `json:"type"`
	Balance               float64     `json:"balance"`
	Contributions         float64     `json:"contributions"`
	LifetimeContributions float64     `json:"lifetimeContributions"`
	MaxContribution       float64     `json:"maxContribution"`
	TaxDeferred           bool        `json:"taxDeferred"`
	EmployerMatch         float64     `json:"employerMatch,omitempty"`
	VestingPeriod         int         `json:"vestingPeriod,omitempty"`
	WithdrawalAge         float64     `json:"withdrawalAge"`
}

type Plan struct {
	TargetAge        int     `json:"targetAge"`
	CurrentSavings   float64 `json:"currentSavings"`
	MonthlyGoal      float64 `json:"monthlyGoal"`
	ProjectedBalance float64 `json:"projectedBalance"`
	OnTrack          bool    `json:"onTrack"`
}

// Wallet is the slice of player state that retirement operations read and
// move money through.
type Wallet struct {
	Cash            float64
	Income          float64
	Age             int
	YearlyTaxesPaid float64
}

// NewAccounts returns the four empty accounts every player starts with.
func NewAccounts() []Account {
	return []Account{
		{Type: Account401k, MaxContribution: 23_000, TaxDeferred: true, EmployerMatch: 0.05, WithdrawalAge: 59.5},
		{Type: AccountIRA, MaxContribution: 7_000, TaxDeferred: true, WithdrawalAge: 59.5},
		{Type: AccountRothIRA, MaxContribution: 7_000, WithdrawalAge: 59.5},
		{Type: AccountPension, MaxContribution: 10_000, TaxDeferred: true, VestingPeriod: 5, WithdrawalAge: 65},
	}
}

func NewPlan(monthlyGoal float64) *Plan {
	return &Plan{TargetAge: DefaultTargetAge, MonthlyGoal: monthlyGoal}
}

func find(accounts []Account, t AccountType) (*Account, error) {
	for i := range accounts {
		if accounts[i].Type == t {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, t)
}

// Contribute moves up to amount from the wallet into the account, capped by
// the remaining annual allowance and the available cash.
func Contribute(accounts []Account, t AccountType, amount float64, w *Wallet) (bool, error) {
	acc, err := find(accounts, t)
	if err != nil {
		return false, err
	}
	c := math.Min(amount, math.Min(acc.MaxContribution-acc.Contributions, w.Cash))
	if c <= 0 {
		return false, nil
	}
	acc.Contributions += c
	acc.LifetimeContributions += c
	acc.Balance += c
	w.Cash -= c
	if acc.Type == Account401k && acc.EmployerMatch > 0 {
		acc.Balance += math.Min(c*acc.EmployerMatch, w.Income*acc.EmployerMatch)
	}
	return true, nil
}

func CanWithdraw(accounts []Account, t AccountType, age int) (bool, error) {
	acc, err := find(accounts, t)
	if err != nil {
		return false, err
	}
	return float64(age) >= acc.WithdrawalAge, nil
}

// Withdraw pays amount out to the wallet. Tax-deferred withdrawals are taxed
// as ordinary income.
func Withdraw(accounts []Account, t AccountType, amount float64, w *Wallet) (bool, error) {
	acc, err := find(accounts, t)
	if err != nil {
		return false, err
	}
	if amount <= 0 || float64(w.Age) < acc.WithdrawalAge || acc.Balance < amount {
		return false, nil
	}
	acc.Balance -= amount
	if !acc.TaxDeferred {
		w.Cash += amount
		return true, nil
	}
	owed := tax.Calculate(amount, 0, 0).IncomeTax
	w.Cash += amount - owed
	w.YearlyTaxesPaid += owed
	return true, nil
}

// ApplyCatchUp raises the 401k limit once the player reaches CatchUpAge.
func ApplyCatchUp(accounts []Account, age int) {
	if age < CatchUpAge {
		return
	}
	if acc, err := find(accounts, Account401k); err == nil && acc.MaxContribution < CatchUp401kLimit {
		acc.MaxContribution = CatchUp401kLimit
	}
}

// CloseYear resets the annual contribution allowance.
func CloseYear(accounts []Account) {
	for i := range accounts {
		accounts[i].Contributions = 0
	}
}

func TotalBalance(accounts []Account) float64 {
	total := 0.0
	for _, a := range accounts {
		total += a.Balance
	}
	return total
}

// UpdateProjection compounds current savings and this year's contributions
// forward to the plan's target age.
func UpdateProjection(plan *Plan, accounts []Account, age int) {
	if plan == nil {
		return
	}
	years := math.Max(0, float64(plan.TargetAge-age))
	growth := math.Pow(1+AnnualReturn, years)

	annual := 0.0
	for _, a := range accounts {
		annual += a.Contributions
	}
	plan.CurrentSavings = TotalBalance(accounts)
	plan.ProjectedBalance = plan.CurrentSavings*growth + annual*(growth-1)/AnnualReturn
	plan.OnTrack = plan.ProjectedBalance >= plan.MonthlyGoal*12/SafeWithdrawalRate
}

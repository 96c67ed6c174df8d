package game

import (
	"errors"
	"math"
)

const (
	SnapshotKey = "gameState"

	DefaultCapitalGainsShare = 0.30
	LoanSuffix               = " (Loan)"
	SaleRecoveryRate         = 0.90
)

var (
	ErrNotStarted          = errors.New("no game in progress")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvestmentNotFound  = errors.New("investment not found")
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrReentrantCall       = errors.New("game: overlapping mutating call")
)

// finite replaces NaN and infinities with 0 so they never reach a snapshot.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package risk scores investments, assigns them to sectors and keeps their
// market price moving with the economic cycle.
package risk

import (
	"fmt"
	"math"

	"cashflow/internal/domain"
)

type typeProfile struct {
	baseRisk          float64
	defaultVolatility float64
	priceSensitivity  float64
}

var typeProfiles = map[domain.InvestmentType]typeProfile{
	domain.TypeCapital:    {baseRisk: 2, defaultVolatility: 0.3, priceSensitivity: 1.5},
	domain.TypeRealEstate: {baseRisk: 3, defaultVolatility: 0.15, priceSensitivity: 0.8},
	domain.TypeFund:       {baseRisk: 2, defaultVolatility: 0.2, priceSensitivity: 1.1},
	domain.TypeBusiness:   {baseRisk: 6, defaultVolatility: 0.5, priceSensitivity: 1.2},
	domain.TypeCrypto:     {baseRisk: 9, defaultVolatility: 0.8, priceSensitivity: 2.0},
}

func profileFor(t domain.InvestmentType) (typeProfile, error) {
	p, ok := typeProfiles[t]
	if !ok {
		return typeProfile{}, fmt.Errorf("%w: %q", domain.ErrUnknownInvestmentType, t)
	}
	return p, nil
}

// CalculateRiskScore derives a 1..10 score from the type and the explicit
// volatility of the investment.
func CalculateRiskScore(inv domain.Investment) (float64, error) {
	p, err := profileFor(inv.Type)
	if err != nil {
		return 0, err
	}
	score := p.baseRisk
	if inv.Volatility != 0 {
		score += inv.Volatility * 4
	}
	return math.Min(10, math.Max(1, score)), nil
}

func CategoryFor(score float64) domain.RiskCategory {
	switch {
	case score <= 3:
		return domain.RiskLow
	case score <= 5:
		return domain.RiskMedium
	case score <= 7:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}

// InitializeRisk returns a copy of inv carrying risk, sector and
// market-tracking attributes. Fields already set are kept.
func InitializeRisk(inv domain.Investment) (domain.Investment, error) {
	out := inv.Clone()
	score, err := CalculateRiskScore(inv)
	if err != nil {
		return out, err
	}
	p, _ := profileFor(inv.Type)

	out.RiskScore = score
	out.RiskCategory = CategoryFor(score)

	sector := AssignSector(inv)
	props := SectorPropertiesFor(sector)
	out.Sector = sector
	out.SectorRiskMultiplier = props.RiskMultiplier
	out.SectorReturnMultiplier = props.ReturnMultiplier
	out.SectorVolatility = props.Volatility

	base := inv.Volatility
	if base == 0 {
		base = p.defaultVolatility
	}
	out.Volatility = base + props.Volatility

	if out.BasePrice == 0 {
		out.BasePrice = inv.Amount
	}
	if out.MarketMultiplier == 0 {
		out.MarketMultiplier = 1.0
	}
	if out.PriceHistory == nil {
		out.PriceHistory = []float64{}
	}
	return out, nil
}

// ROI is the annualized return in percent; 0 when the amount is not positive.
func ROI(inv domain.Investment) float64 {
	if inv.Amount <= 0 {
		return 0
	}
	return inv.Income * 12 / inv.Amount * 100
}

// PaybackMonths is the number of months needed to recoup the amount. ok is
// false when the investment never pays back.
func PaybackMonths(inv domain.Investment) (months float64, ok bool) {
	if inv.Income <= 0 {
		return 0, false
	}
	return inv.Amount / inv.Income, true
}

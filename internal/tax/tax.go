// Package tax computes progressive income tax plus flat capital-gains and
// dividend tax for a player's year.
package tax

import (
	"github.com/shopspring/decimal"
)

type Bracket struct {
	Name            string          `json:"name"`
	Min             decimal.Decimal `json:"min"`
	Max             decimal.Decimal `json:"max"` // zero means unbounded
	IncomeRate      decimal.Decimal `json:"incomeRate"`
	CapitalGainRate decimal.Decimal `json:"capitalGainRate"`
	DividendRate    decimal.Decimal `json:"dividendRate"`
}

func (b Bracket) unbounded() bool {
	return b.Max.IsZero()
}

func (b Bracket) contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(b.Min) && (b.unbounded() || v.LessThan(b.Max))
}

var brackets = []Bracket{
	{Name: "low", Min: decimal.Zero, Max: decimal.NewFromInt(50_000), IncomeRate: decimal.RequireFromString("0.12"), CapitalGainRate: decimal.Zero, DividendRate: decimal.Zero},
	{Name: "medium", Min: decimal.NewFromInt(50_000), Max: decimal.NewFromInt(100_000), IncomeRate: decimal.RequireFromString("0.22"), CapitalGainRate: decimal.RequireFromString("0.15"), DividendRate: decimal.RequireFromString("0.15")},
	{Name: "high", Min: decimal.NewFromInt(100_000), Max: decimal.NewFromInt(200_000), IncomeRate: decimal.RequireFromString("0.32"), CapitalGainRate: decimal.RequireFromString("0.15"), DividendRate: decimal.RequireFromString("0.20")},
	{Name: "very_high", Min: decimal.NewFromInt(200_000), IncomeRate: decimal.RequireFromString("0.37"), CapitalGainRate: decimal.RequireFromString("0.20"), DividendRate: decimal.RequireFromString("0.20")},
}

// Brackets returns the bracket table, lowest first.
func Brackets() []Bracket {
	return append([]Bracket(nil), brackets...)
}

type Calculation struct {
	GrossIncome      float64 `json:"grossIncome"`
	TaxableIncome    float64 `json:"taxableIncome"`
	IncomeTax        float64 `json:"incomeTax"`
	CapitalGainsTax  float64 `json:"capitalGainsTax"`
	DividendTax      float64 `json:"dividendTax"`
	TotalTax         float64 `json:"totalTax"`
	NetIncome        float64 `json:"netIncome"`
	EffectiveTaxRate float64 `json:"effectiveTaxRate"`
	Bracket          string  `json:"bracket"`
}

func positive(v float64) decimal.Decimal {
	d := decimal.NewFromFloat(v)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func bracketFor(income decimal.Decimal) Bracket {
	for _, b := range brackets {
		if b.contains(income) {
			return b
		}
	}
	return brackets[0]
}

func progressiveIncomeTax(income decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, b := range brackets {
		if income.LessThanOrEqual(b.Min) {
			break
		}
		upper := income
		if !b.unbounded() && upper.GreaterThan(b.Max) {
			upper = b.Max
		}
		total = total.Add(upper.Sub(b.Min).Mul(b.IncomeRate))
	}
	return total
}

// Calculate never fails; negative inputs are taxed as zero.
func Calculate(grossIncome, capitalGains, dividendIncome float64) Calculation {
	gross := positive(grossIncome)
	gains := positive(capitalGains)
	divs := positive(dividendIncome)

	b := bracketFor(gross)
	incomeTax := progressiveIncomeTax(gross)
	gainsTax := gains.Mul(b.CapitalGainRate)
	divTax := divs.Mul(b.DividendRate)
	total := incomeTax.Add(gainsTax).Add(divTax)
	all := gross.Add(gains).Add(divs)

	rate := decimal.Zero
	if !all.IsZero() {
		rate = total.Div(all)
	}

	return Calculation{
		GrossIncome:      grossIncome,
		TaxableIncome:    gross.InexactFloat64(),
		IncomeTax:        incomeTax.InexactFloat64(),
		CapitalGainsTax:  gainsTax.InexactFloat64(),
		DividendTax:      divTax.InexactFloat64(),
		TotalTax:         total.InexactFloat64(),
		NetIncome:        all.Sub(total).InexactFloat64(),
		EffectiveTaxRate: rate.InexactFloat64(),
		Bracket:          b.Name,
	}
}

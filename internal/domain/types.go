package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownInvestmentType = errors.New("unknown investment type")
	ErrUnknownSector         = errors.New("unknown sector")
	ErrUnknownEffectType     = errors.New("unknown event effect type")
)

type InvestmentType string

const (
	TypeCapital    InvestmentType = "capital"
	TypeRealEstate InvestmentType = "real_estate"
	TypeBusiness   InvestmentType = "business"
	TypeCrypto     InvestmentType = "crypto"
	TypeFund       InvestmentType = "fund"
)

func ParseInvestmentType(s string) (InvestmentType, error) {
	t := InvestmentType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeCapital, TypeRealEstate, TypeBusiness, TypeCrypto, TypeFund:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInvestmentType, s)
}

type Sector string

const (
	SectorTechnology         Sector = "technology"
	SectorHealthcare         Sector = "healthcare"
	SectorRealEstate         Sector = "real_estate"
	SectorFinance            Sector = "finance"
	SectorEnergy             Sector = "energy"
	SectorConsumerGoods      Sector = "consumer_goods"
	SectorUtilities          Sector = "utilities"
	SectorTelecommunications Sector = "telecommunications"
	SectorIndustrials        Sector = "industrials"
	SectorMaterials          Sector = "materials"
)

// Sectors is the keyword-matching priority order.
var Sectors = []Sector{
	SectorTechnology,
	SectorHealthcare,
	SectorRealEstate,
	SectorFinance,
	SectorEnergy,
	SectorConsumerGoods,
	SectorUtilities,
	SectorTelecommunications,
	SectorIndustrials,
	SectorMaterials,
}

func ParseSector(s string) (Sector, error) {
	sector := Sector(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Sectors {
		if sector == known {
			return sector, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSector, s)
}

type RiskCategory string

const (
	RiskLow      RiskCategory = "low"
	RiskMedium   RiskCategory = "medium"
	RiskHigh     RiskCategory = "high"
	RiskVeryHigh RiskCategory = "very_high"
)

type Job struct {
	Title     string  `json:"title"`
	SalaryMin float64 `json:"salaryMin"`
	SalaryMax float64 `json:"salaryMax"`
	Expenses  float64 `json:"expenses"`
}

// Investment is an offered or owned asset. Zero numeric fields and a nil
// PriceHistory mean "not initialized yet".
type Investment struct {
	Name                   string         `json:"name"`
	Amount                 float64        `json:"amount"`
	Income                 float64        `json:"income"`
	YearlyPayment          float64        `json:"yearlyPayment"`
	Type                   InvestmentType `json:"type"`
	Volatility             float64        `json:"volatility,omitempty"`
	RiskScore              float64        `json:"riskScore,omitempty"`
	RiskCategory           RiskCategory   `json:"riskCategory,omitempty"`
	BasePrice              float64        `json:"basePrice,omitempty"`
	MarketMultiplier       float64        `json:"marketMultiplier,omitempty"`
	PriceHistory           []float64      `json:"priceHistory"`
	Sector                 Sector         `json:"sector,omitempty"`
	SectorRiskMultiplier   float64        `json:"sectorRiskMultiplier,omitempty"`
	SectorReturnMultiplier float64        `json:"sectorReturnMultiplier,omitempty"`
	SectorVolatility       float64        `json:"sectorVolatility,omitempty"`
}

// Clone returns a deep copy; the price history never aliases the source.
func (inv Investment) Clone() Investment {
	out := inv
	if inv.PriceHistory != nil {
		out.PriceHistory = append(make([]float64, 0, len(inv.PriceHistory)), inv.PriceHistory...)
	}
	return out
}

func CloneInvestments(in []Investment) []Investment {
	if in == nil {
		return nil
	}
	out := make([]Investment, len(in))
	for i, inv := range in {
		out[i] = inv.Clone()
	}
	return out
}

type EffectType string

const (
	EffectCash     EffectType = "cash"
	EffectExpenses EffectType = "expenses"
)

func ParseEffectType(s string) (EffectType, error) {
	t := EffectType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case EffectCash, EffectExpenses:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEffectType, s)
}

type Effect struct {
	Type   EffectType `json:"type"`
	Amount float64    `json:"amount"`
}

type GameEvent struct {
	Message string `json:"message"`
	Effect  Effect `json:"effect"`
}

func CloneEvents(in []GameEvent) []GameEvent {
	if in == nil {
		return nil
	}
	return append(make([]GameEvent, 0, len(in)), in...)
}

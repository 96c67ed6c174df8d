package risk

import (
	"math"

	"cashflow/internal/catalog"
	"cashflow/internal/domain"
	"cashflow/internal/rng"
)

// MaxPriceHistory bounds Investment.PriceHistory.
const MaxPriceHistory = 10

type MarketCondition string

const (
	MarketBull     MarketCondition = "bull"
	MarketBear     MarketCondition = "bear"
	MarketVolatile MarketCondition = "volatile"
	MarketNeutral  MarketCondition = "neutral"
)

type MarketConditions struct {
	Condition   MarketCondition `json:"condition"`
	Multiplier  float64         `json:"multiplier"`
	Description string          `json:"description"`
}

// Engine prices investments against the catalog's economic cycle.
type Engine struct {
	catalog *catalog.Catalog
	rand    rng.Source
}

func NewEngine(c *catalog.Catalog, source rng.Source) *Engine {
	if source == nil {
		source = rng.New()
	}
	return &Engine{catalog: c, rand: source}
}

func regimeFor(cycle catalog.Cycle) MarketConditions {
	switch cycle {
	case catalog.CycleExpansion:
		return MarketConditions{MarketBull, 1.2, "Bull market: prices are climbing"}
	case catalog.CyclePeak:
		return MarketConditions{MarketVolatile, 1.15, "Market peak: prices are high and jumpy"}
	case catalog.CycleRecession:
		return MarketConditions{MarketBear, 0.8, "Bear market: prices are falling"}
	case catalog.CycleRecovery:
		return MarketConditions{MarketNeutral, 0.95, "Recovery: prices are stabilizing"}
	default:
		return MarketConditions{MarketNeutral, 1.0, "Neutral market"}
	}
}

// CurrentMarketConditions maps the active cycle to a regime and jitters its
// multiplier by a uniform factor in [0.9, 1.1].
func (e *Engine) CurrentMarketConditions() MarketConditions {
	mc := regimeFor(e.catalog.CurrentEconomicCycleConfig().Cycle)
	mc.Multiplier *= rng.Between(e.rand, 0.9, 1.1)
	return mc
}

// ApplyDynamicPricing reprices a copy of inv from its base price.
func (e *Engine) ApplyDynamicPricing(inv domain.Investment) (domain.Investment, error) {
	out := inv.Clone()
	p, err := profileFor(inv.Type)
	if err != nil {
		return out, err
	}
	market := e.CurrentMarketConditions().Multiplier
	adjusted := 1 + (market-1)*p.priceSensitivity

	base := out.BasePrice
	if base == 0 {
		base = out.Amount
		out.BasePrice = base
	}
	price := math.Round(base * adjusted)

	out.MarketMultiplier = adjusted
	out.Amount = price
	out.PriceHistory = append(out.PriceHistory, price)
	if n := len(out.PriceHistory); n > MaxPriceHistory {
		out.PriceHistory = append([]float64(nil), out.PriceHistory[n-MaxPriceHistory:]...)
	}
	return out, nil
}

// ApplyVolatilityToReturn perturbs baseReturn by up to ±volatility and
// never returns less than 10% of it.
func (e *Engine) ApplyVolatilityToReturn(inv domain.Investment, baseReturn float64) float64 {
	draw := e.rand.Float64()*2 - 1
	effect := draw * inv.Volatility
	return math.Max(baseReturn*(1+effect), baseReturn*0.1)
}

// UpdateMarketPrices moves the market-tracking fields of owned investments.
// The purchase amount is left untouched.
func (e *Engine) UpdateMarketPrices(owned []domain.Investment) ([]domain.Investment, error) {
	out := domain.CloneInvestments(owned)
	for i, inv := range out {
		if inv.BasePrice == 0 || inv.PriceHistory == nil {
			continue
		}
		priced, err := e.ApplyDynamicPricing(inv)
		if err != nil {
			return owned, err
		}
		out[i].MarketMultiplier = priced.MarketMultiplier
		out[i].PriceHistory = priced.PriceHistory
	}
	return out, nil
}

// PrepareOpportunity runs a catalog template through risk initialization
// and dynamic pricing.
func (e *Engine) PrepareOpportunity(template domain.Investment) (domain.Investment, error) {
	inv, err := InitializeRisk(template)
	if err != nil {
		return inv, err
	}
	return e.ApplyDynamicPricing(inv)
}

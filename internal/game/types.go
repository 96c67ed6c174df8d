package game

import (
	"cashflow/internal/domain"
	"cashflow/internal/retirement"
	"cashflow/internal/risk"
	"cashflow/internal/tax"
)

type PlayerState struct {
	Name                      string  `json:"name"`
	Job                       string  `json:"job"`
	Age                       int     `json:"age"`
	Cash                      float64 `json:"cash"`
	Income                    float64 `json:"income"`
	Expenses                  float64 `json:"expenses"`
	PassiveIncome             float64 `json:"passiveIncome"`
	LoanTotal                 float64 `json:"loanTotal"`
	BaseIncome                float64 `json:"baseIncome"`
	BaseExpenses              float64 `json:"baseExpenses"`
	CumulativeInflationFactor float64 `json:"cumulativeInflationFactor"`
	YearlyTaxesPaid           float64 `json:"yearlyTaxesPaid"`
}

type TurnHistoryEntry struct {
	TurnNumber           int                 `json:"turnNumber"`
	Date                 string              `json:"date"`
	Age                  int                 `json:"age"`
	CashBefore           float64             `json:"cashBefore"`
	CashAfter            float64             `json:"cashAfter"`
	CashChange           float64             `json:"cashChange"`
	Income               float64             `json:"income"`
	Expenses             float64             `json:"expenses"`
	PassiveIncome        float64             `json:"passiveIncome"`
	TaxesPaid            float64             `json:"taxesPaid"`
	NetWorth             float64             `json:"netWorth"`
	EconomicCycle        string              `json:"economicCycle,omitempty"`
	Events               []domain.GameEvent  `json:"events"`
	InvestmentsPurchased []domain.Investment `json:"investmentsPurchased"`
}

func (e TurnHistoryEntry) clone() TurnHistoryEntry {
	out := e
	out.Events = domain.CloneEvents(e.Events)
	out.InvestmentsPurchased = domain.CloneInvestments(e.InvestmentsPurchased)
	return out
}

// Snapshot is the persisted shape of a game and the value returned by State.
type Snapshot struct {
	PlayerState

	GameID              string `json:"gameId"`
	Won                 bool   `json:"won"`
	Difficulty          string `json:"difficulty"`
	EconomicCycle       string `json:"economicCycle"`
	CycleTurnsRemaining int    `json:"cycleTurnsRemaining"`

	Investments                  []domain.Investment  `json:"investments"`
	TurnHistory                  []TurnHistoryEntry   `json:"turnHistory"`
	SelectedOpportunitiesPerYear map[int][]string     `json:"selectedOpportunitiesPerYear"`
	SelectedEventsPerYear        map[int][]string     `json:"selectedEventsPerYear"`
	CurrentEvents                []domain.GameEvent   `json:"currentEvents"`
	Opportunities                []domain.Investment  `json:"opportunities"`
	LastTaxCalculation           *tax.Calculation     `json:"lastTaxCalculation"`
	RetirementAccounts           []retirement.Account `json:"retirementAccounts"`
	RetirementPlan               *retirement.Plan     `json:"retirementPlan"`

	// PendingPurchases are this year's buys, moved into the next history entry.
	PendingPurchases []domain.Investment `json:"pendingPurchases"`
}

// Clone returns a deep copy that shares no slices or maps with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Investments = domain.CloneInvestments(s.Investments)
	out.Opportunities = domain.CloneInvestments(s.Opportunities)
	out.CurrentEvents = domain.CloneEvents(s.CurrentEvents)
	out.PendingPurchases = domain.CloneInvestments(s.PendingPurchases)
	if s.TurnHistory != nil {
		out.TurnHistory = make([]TurnHistoryEntry, len(s.TurnHistory))
		for i, e := range s.TurnHistory {
			out.TurnHistory[i] = e.clone()
		}
	}
	out.SelectedOpportunitiesPerYear = cloneYearSets(s.SelectedOpportunitiesPerYear)
	out.SelectedEventsPerYear = cloneYearSets(s.SelectedEventsPerYear)
	if s.LastTaxCalculation != nil {
		c := *s.LastTaxCalculation
		out.LastTaxCalculation = &c
	}
	if s.RetirementAccounts != nil {
		out.RetirementAccounts = append([]retirement.Account(nil), s.RetirementAccounts...)
	}
	if s.RetirementPlan != nil {
		p := *s.RetirementPlan
		out.RetirementPlan = &p
	}
	return out
}

func cloneYearSets(in map[int][]string) map[int][]string {
	if in == nil {
		return nil
	}
	out := make(map[int][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// NetWorth is cash plus the purchase value of holdings and retirement
// balances, less outstanding loans.
func (s Snapshot) NetWorth() float64 {
	total := s.Cash - s.LoanTotal
	for _, inv := range s.Investments {
		total += inv.Amount
	}
	return total + retirement.TotalBalance(s.RetirementAccounts)
}

// InvestmentDetail is the per-holding risk and pricing summary shown by
// the market views.
type InvestmentDetail struct {
	Index         int               `json:"index"`
	Investment    domain.Investment `json:"investment"`
	ROI           float64           `json:"roi"`
	PaybackMonths *float64          `json:"paybackMonths"`
	Stats         risk.PriceStats   `json:"stats"`
}

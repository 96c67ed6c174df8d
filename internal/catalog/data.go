package catalog

import "cashflow/internal/domain"

const (
	baseEventProbability = 0.7
	baseLoanRate         = 0.10
)

var jobs = []domain.Job{
	{Title: "Janitor", SalaryMin: 2000, SalaryMax: 2600, Expenses: 1500},
	{Title: "Mechanic", SalaryMin: 2800, SalaryMax: 3800, Expenses: 1900},
	{Title: "Truck Driver", SalaryMin: 3000, SalaryMax: 4000, Expenses: 2100},
	{Title: "Teacher", SalaryMin: 3000, SalaryMax: 4200, Expenses: 2200},
	{Title: "Police Officer", SalaryMin: 3400, SalaryMax: 4600, Expenses: 2400},
	{Title: "Nurse", SalaryMin: 3800, SalaryMax: 5200, Expenses: 2600},
	{Title: "Accountant", SalaryMin: 4500, SalaryMax: 6000, Expenses: 3100},
	{Title: "Software Engineer", SalaryMin: 6500, SalaryMax: 9500, Expenses: 4200},
	{Title: "Lawyer", SalaryMin: 7500, SalaryMax: 11000, Expenses: 5200},
	{Title: "Doctor", SalaryMin: 9000, SalaryMax: 13000, Expenses: 6000},
}

var investmentTemplates = []domain.Investment{
	{Name: "Tech Startup Shares", Amount: 5000, Income: 120, Type: domain.TypeCapital, Volatility: 0.4},
	{Name: "Index Fund", Amount: 8000, Income: 60, Type: domain.TypeFund, Volatility: 0.1},
	{Name: "Bank Dividend Stock", Amount: 9000, Income: 75, Type: domain.TypeCapital, Volatility: 0.2},
	{Name: "Water Utility Shares", Amount: 12000, Income: 80, Type: domain.TypeCapital, Volatility: 0.05},
	{Name: "Steel Mill Shares", Amount: 15000, Income: 180, Type: domain.TypeCapital},
	{Name: "Bitcoin", Amount: 10000, Income: 200, Type: domain.TypeCrypto, Volatility: 0.7},
	{Name: "Ethereum Staking", Amount: 6000, Income: 150, Type: domain.TypeCrypto, Volatility: 0.8},
	{Name: "Duplex Rental Property", Amount: 60000, Income: 900, YearlyPayment: 3600, Type: domain.TypeRealEstate},
	{Name: "Vacation Condo", Amount: 45000, Income: 550, YearlyPayment: 2400, Type: domain.TypeRealEstate},
	{Name: "Hospital Office Space", Amount: 70000, Income: 1000, YearlyPayment: 4800, Type: domain.TypeRealEstate},
	{Name: "Cell Tower Lease", Amount: 35000, Income: 420, Type: domain.TypeRealEstate},
	{Name: "Solar Farm Stake", Amount: 25000, Income: 350, Type: domain.TypeBusiness},
	{Name: "Oil Well Partnership", Amount: 20000, Income: 400, Type: domain.TypeBusiness, Volatility: 0.5},
	{Name: "Pharmacy Franchise", Amount: 40000, Income: 700, YearlyPayment: 2400, Type: domain.TypeBusiness},
	{Name: "Corner Grocery Store", Amount: 30000, Income: 500, YearlyPayment: 1200, Type: domain.TypeBusiness},
	{Name: "Auto Parts Factory", Amount: 50000, Income: 800, YearlyPayment: 3000, Type: domain.TypeBusiness},
	{Name: "Laundromat", Amount: 18000, Income: 260, Type: domain.TypeBusiness},
}

var eventTemplates = []domain.GameEvent{
	{Message: "Tax refund arrives", Effect: domain.Effect{Type: domain.EffectCash, Amount: 800}},
	{Message: "Birthday gift from relatives", Effect: domain.Effect{Type: domain.EffectCash, Amount: 300}},
	{Message: "Freelance side project pays off", Effect: domain.Effect{Type: domain.EffectCash, Amount: 1500}},
	{Message: "Won a small lottery prize", Effect: domain.Effect{Type: domain.EffectCash, Amount: 4000}},
	{Message: "Inheritance from a distant relative", Effect: domain.Effect{Type: domain.EffectCash, Amount: 10000}},
	{Message: "Car repair needed", Effect: domain.Effect{Type: domain.EffectCash, Amount: -700}},
	{Message: "Laptop broke down", Effect: domain.Effect{Type: domain.EffectCash, Amount: -900}},
	{Message: "Medical bill", Effect: domain.Effect{Type: domain.EffectCash, Amount: -1500}},
	{Message: "Roof leak repairs", Effect: domain.Effect{Type: domain.EffectCash, Amount: -2500}},
	{Message: "Legal dispute settlement", Effect: domain.Effect{Type: domain.EffectCash, Amount: -5000}},
	{Message: "Gym membership signed", Effect: domain.Effect{Type: domain.EffectExpenses, Amount: 60}},
	{Message: "New baby in the family", Effect: domain.Effect{Type: domain.EffectExpenses, Amount: 400}},
	{Message: "Moved to a bigger apartment", Effect: domain.Effect{Type: domain.EffectExpenses, Amount: 1200}},
	{Message: "Refinanced your car loan", Effect: domain.Effect{Type: domain.EffectExpenses, Amount: -150}},
	{Message: "Cancelled streaming subscriptions", Effect: domain.Effect{Type: domain.EffectExpenses, Amount: -40}},
}

var playerNames = []string{
	"Alex Morgan", "Jordan Lee", "Sam Rivera", "Taylor Brooks", "Casey Nguyen",
	"Riley Patel", "Morgan Diaz", "Jamie Chen", "Avery Kim", "Quinn Walker",
	"Drew Santos", "Harper Cole", "Reese Okafor", "Skyler Novak", "Parker Silva",
	"Rowan Hughes", "Emerson Blake", "Finley Ward", "Sage Moreno", "Logan Price",
}

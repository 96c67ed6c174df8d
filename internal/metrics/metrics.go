// Package metrics exports game progress as Prometheus series.
package metrics

import (
	"cashflow/internal/game"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cashflow",
	Subsystem: "game",
	Name:      "turns_total",
	Help:      "Total turns played, by economic cycle.",
}, []string{"cycle"})

var EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cashflow",
	Subsystem: "game",
	Name:      "events_total",
	Help:      "Total life events applied, by effect type.",
}, []string{"effect"})

var PurchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cashflow",
	Subsystem: "game",
	Name:      "purchases_total",
	Help:      "Total investments bought, cash or financed, in completed turns.",
})

var TaxesPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cashflow",
	Subsystem: "game",
	Name:      "taxes_paid_total",
	Help:      "Sum of turn taxes paid.",
})

var Cash = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "cashflow",
	Subsystem: "player",
	Name:      "cash",
	Help:      "Current player cash.",
})

var PassiveIncome = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "cashflow",
	Subsystem: "player",
	Name:      "passive_income",
	Help:      "Current monthly passive income.",
})

var Expenses = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "cashflow",
	Subsystem: "player",
	Name:      "expenses",
	Help:      "Current monthly expenses.",
})

var NetWorth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "cashflow",
	Subsystem: "player",
	Name:      "net_worth",
	Help:      "Net worth at the end of the last turn.",
})

var Won = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "cashflow",
	Subsystem: "player",
	Name:      "won",
	Help:      "1 once passive income covers expenses.",
})

// Attach keeps the collectors in step with svc until the returned func is
// called.
func Attach(svc *game.Service) func() {
	stopState := svc.Subscribe(func(s game.Snapshot) {
		Cash.Set(s.Cash)
		PassiveIncome.Set(s.PassiveIncome)
		Expenses.Set(s.Expenses)
		if s.Won {
			Won.Set(1)
		} else {
			Won.Set(0)
		}
	})
	stopTurn := svc.SubscribeTurnEnded(func(e game.TurnHistoryEntry) {
		TurnsTotal.WithLabelValues(e.EconomicCycle).Inc()
		TaxesPaidTotal.Add(e.TaxesPaid)
		NetWorth.Set(e.NetWorth)
		PurchasesTotal.Add(float64(len(e.InvestmentsPurchased)))
		for _, ev := range e.Events {
			EventsTotal.WithLabelValues(string(ev.Effect.Type)).Inc()
		}
	})
	return func() {
		stopState()
		stopTurn()
	}
}

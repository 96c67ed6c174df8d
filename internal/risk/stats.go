package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

type PriceStats struct {
	Samples            int     `json:"samples"`
	Mean               float64 `json:"mean"`
	StdDev             float64 `json:"stdDev"`
	RealizedVolatility float64 `json:"realizedVolatility"`
	Change             float64 `json:"change"`
}

// StatsFor summarizes a price history. Undefined quantities are reported as 0.
func StatsFor(history []float64) PriceStats {
	out := PriceStats{Samples: len(history)}
	if len(history) == 0 {
		return out
	}
	out.Mean = stat.Mean(history, nil)
	if len(history) > 1 {
		out.StdDev = stat.StdDev(history, nil)
		first := history[0]
		if first != 0 {
			out.Change = (history[len(history)-1] - first) / first
		}
	}
	if out.Mean != 0 && !math.IsNaN(out.StdDev) {
		out.RealizedVolatility = out.StdDev / out.Mean
	}
	return out
}

// Package sim plays many unattended games with a fixed buying strategy and
// summarizes how they ended.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"cashflow/internal/catalog"
	"cashflow/internal/events"
	"cashflow/internal/game"
	"cashflow/internal/rng"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Options struct {
	Games             int
	Turns             int
	StartingMoney     float64
	Seed              int64
	Difficulty        catalog.Difficulty
	EventCount        events.Range
	OpportunityCount  events.Range
	CapitalGainsShare float64
	// Workers caps concurrent games. Zero means one per game.
	Workers int
	Logger  *slog.Logger
}

type GameResult struct {
	Seed          int64   `json:"seed"`
	Job           string  `json:"job"`
	Won           bool    `json:"won"`
	TurnsPlayed   int     `json:"turnsPlayed"`
	TurnsToWin    int     `json:"turnsToWin,omitempty"`
	FinalNetWorth float64 `json:"finalNetWorth"`
	FinalPassive  float64 `json:"finalPassive"`
	Investments   int     `json:"investments"`
}

type Summary struct {
	Games          int          `json:"games"`
	Wins           int          `json:"wins"`
	WinRate        float64      `json:"winRate"`
	MeanNetWorth   float64      `json:"meanNetWorth"`
	StdDevNetWorth float64      `json:"stdDevNetWorth"`
	WorstNetWorth  float64      `json:"worstNetWorth"`
	BestNetWorth   float64      `json:"bestNetWorth"`
	P10NetWorth    float64      `json:"p10NetWorth"`
	P50NetWorth    float64      `json:"p50NetWorth"`
	P90NetWorth    float64      `json:"p90NetWorth"`
	MeanTurnsToWin float64      `json:"meanTurnsToWin,omitempty"`
	Results        []GameResult `json:"results"`
}

// Run plays opts.Games games concurrently. It stops early with ctx's error
// when ctx is cancelled.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Games <= 0 {
		return Summary{}, fmt.Errorf("games must be positive, got %d", opts.Games)
	}
	if opts.Turns <= 0 {
		return Summary{}, fmt.Errorf("turns must be positive, got %d", opts.Turns)
	}
	if opts.Difficulty == "" {
		opts.Difficulty = catalog.DifficultyNormal
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 || workers > opts.Games {
		workers = opts.Games
	}

	type outcome struct {
		idx int
		res GameResult
		err error
	}
	jobs := make(chan int)
	results := make(chan outcome, opts.Games)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := PlayOne(ctx, opts, opts.Seed+int64(idx))
				results <- outcome{idx: idx, res: res, err: err}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range opts.Games {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	played := make([]GameResult, opts.Games)
	done := 0
	var firstErr error
	for out := range results {
		if out.err != nil && firstErr == nil {
			firstErr = out.err
		}
		played[out.idx] = out.res
		done++
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if firstErr != nil {
		return Summary{}, firstErr
	}
	if done != opts.Games {
		return Summary{}, fmt.Errorf("played %d of %d games", done, opts.Games)
	}
	return Summarize(played), nil
}

// PlayOne runs a single game with its own random source.
func PlayOne(ctx context.Context, opts Options, seed int64) (GameResult, error) {
	source := rng.NewSeeded(seed)
	svc, err := game.NewService(game.Options{
		Difficulty:        opts.Difficulty,
		Source:            source,
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		EventCount:        opts.EventCount,
		OpportunityCount:  opts.OpportunityCount,
		CapitalGainsShare: opts.CapitalGainsShare,
	})
	if err != nil {
		return GameResult{}, err
	}
	jobs := svc.Catalog().Jobs()
	job := jobs[rng.IntBetween(source, 0, len(jobs)-1)]
	if err := svc.StartGame(job, 25, opts.StartingMoney, ""); err != nil {
		return GameResult{}, err
	}

	res := GameResult{Seed: seed, Job: job.Title}
	for turn := 1; turn <= opts.Turns; turn++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := BuyAffordable(svc); err != nil {
			return res, err
		}
		if svc.Won() {
			res.TurnsToWin = turn - 1
			break
		}
		if _, err := svc.NextTurn(); err != nil {
			return res, fmt.Errorf("seed %d turn %d: %w", seed, turn, err)
		}
		res.TurnsPlayed = turn
		if svc.Won() {
			res.TurnsToWin = turn
			break
		}
	}
	st := svc.State()
	res.Won = st.Won
	res.FinalNetWorth = st.NetWorth()
	res.FinalPassive = st.PassiveIncome
	res.Investments = len(st.Investments)
	opts.Logger.Debug("simulated game", "seed", seed, "job", job.Title, "won", res.Won, "turns", res.TurnsPlayed)
	return res, nil
}

// BuyAffordable buys income-producing offers with cash, best return first,
// while keeping three months of expenses in reserve.
func BuyAffordable(svc *game.Service) error {
	reserve := svc.Player().Expenses * 3
	for {
		opps := svc.Opportunities()
		best := -1
		bestYield := 0.0
		for i, o := range opps {
			if o.Income <= 0 || o.Amount <= 0 {
				continue
			}
			if svc.Player().Cash-o.Amount < reserve {
				continue
			}
			if y := o.Income / o.Amount; y > bestYield {
				best, bestYield = i, y
			}
		}
		if best < 0 {
			return nil
		}
		if err := svc.BuyInvestment(opps[best]); err != nil {
			return err
		}
	}
}

func Summarize(results []GameResult) Summary {
	s := Summary{Games: len(results), Results: results}
	if len(results) == 0 {
		return s
	}
	worth := make([]float64, len(results))
	var winTurns []float64
	for i, r := range results {
		worth[i] = r.FinalNetWorth
		if r.Won {
			s.Wins++
			winTurns = append(winTurns, float64(r.TurnsToWin))
		}
	}
	sorted := slices.Clone(worth)
	sort.Float64s(sorted)

	s.WinRate = float64(s.Wins) / float64(s.Games)
	s.MeanNetWorth, s.StdDevNetWorth = stat.MeanStdDev(worth, nil)
	if len(worth) < 2 {
		s.StdDevNetWorth = 0
	}
	s.WorstNetWorth = floats.Min(worth)
	s.BestNetWorth = floats.Max(worth)
	s.P10NetWorth = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50NetWorth = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90NetWorth = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	if len(winTurns) > 0 {
		s.MeanTurnsToWin = stat.Mean(winTurns, nil)
	}
	return s
}

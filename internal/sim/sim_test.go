package sim

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"cashflow/internal/game"
	"cashflow/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]GameResult{
		{FinalNetWorth: 100, Won: true, TurnsToWin: 4},
		{FinalNetWorth: 300},
		{FinalNetWorth: 200, Won: true, TurnsToWin: 8},
		{FinalNetWorth: 400},
	})
	assert.Equal(t, 4, s.Games)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 0.5, s.WinRate)
	assert.Equal(t, 250.0, s.MeanNetWorth)
	assert.InDelta(t, 129.0994, s.StdDevNetWorth, 1e-4)
	assert.Equal(t, 100.0, s.WorstNetWorth)
	assert.Equal(t, 400.0, s.BestNetWorth)
	assert.Equal(t, 100.0, s.P10NetWorth)
	assert.Equal(t, 200.0, s.P50NetWorth)
	assert.Equal(t, 400.0, s.P90NetWorth)
	assert.Equal(t, 6.0, s.MeanTurnsToWin)
	assert.Equal(t, 300.0, s.Results[1].FinalNetWorth)
}

func TestSummarizeSingleGame(t *testing.T) {
	s := Summarize([]GameResult{{FinalNetWorth: 50}})
	assert.Equal(t, 50.0, s.MeanNetWorth)
	assert.Equal(t, 0.0, s.StdDevNetWorth)
	assert.Zero(t, s.MeanTurnsToWin)
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	opts := Options{Games: 6, Turns: 10, Seed: 42, StartingMoney: 10_000, Workers: 3, Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
	first, err := Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, first.Results, 6)
	for i := range first.Results {
		assert.Equal(t, int64(42+i), first.Results[i].Seed)
		assert.Equal(t, first.Results[i], second.Results[i])
		assert.LessOrEqual(t, first.Results[i].TurnsPlayed, 10)
	}
	assert.Equal(t, first.MeanNetWorth, second.MeanNetWorth)
}

func TestRunValidatesAndCancels(t *testing.T) {
	_, err := Run(context.Background(), Options{Games: 0, Turns: 1})
	require.Error(t, err)
	_, err = Run(context.Background(), Options{Games: 1, Turns: 0})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, Options{Games: 3, Turns: 5})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuyAffordableKeepsReserve(t *testing.T) {
	svc, err := game.NewService(game.Options{Source: rng.NewSequence(0.1), Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))})
	require.NoError(t, err)
	job, err := svc.Catalog().JobByTitle("Janitor")
	require.NoError(t, err)
	require.NoError(t, svc.StartGame(job, 30, 1_000_000, "Sam"))

	require.NoError(t, BuyAffordable(svc))
	p := svc.Player()
	assert.GreaterOrEqual(t, p.Cash, p.Expenses*3)
	for _, o := range svc.Opportunities() {
		if o.Income > 0 && o.Amount > 0 {
			assert.Less(t, p.Cash-o.Amount, p.Expenses*3, "left %s unbought", o.Name)
		}
	}
}

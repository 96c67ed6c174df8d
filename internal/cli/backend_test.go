package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"cashflow/internal/api"
	"cashflow/internal/config"
	"cashflow/internal/game"
	"cashflow/internal/retirement"
	"cashflow/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func localConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Difficulty:        "normal",
		Store:             config.StoreFile,
		StateDir:          t.TempDir(),
		CapitalGainsShare: game.DefaultCapitalGainsShare,
	}
}

func TestLocalBackendPersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t)

	first, err := OpenLocal(ctx, cfg, nil, quietLogger())
	require.NoError(t, err)
	_, err = first.State(ctx)
	require.ErrorIs(t, err, game.ErrNotStarted)

	jobs, err := first.Jobs(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, jobs)

	snap, err := first.Start(ctx, StartInput{Job: "Janitor", Age: 30, StartingMoney: 10_000, Name: "Alex"})
	require.NoError(t, err)
	assert.Equal(t, "Alex", snap.Name)

	bought, err := first.Buy(ctx, 0, true)
	require.NoError(t, err)
	assert.NotEmpty(t, bought.Name)
	require.NoError(t, first.Close())

	// Each CLI command opens the saved game afresh.
	mid, err := OpenLocal(ctx, cfg, nil, quietLogger())
	require.NoError(t, err)
	entry, err := mid.NextTurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.TurnNumber)
	require.Len(t, entry.InvestmentsPurchased, 1)
	assert.Equal(t, bought.Name, entry.InvestmentsPurchased[0].Name)
	require.NoError(t, mid.Close())

	second, err := OpenLocal(ctx, cfg, nil, quietLogger())
	require.NoError(t, err)
	defer second.Close()
	snap, err = second.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 31, snap.Age)
	require.Len(t, snap.TurnHistory, 1)
	assert.Len(t, snap.TurnHistory[0].InvestmentsPurchased, 1)
	assert.Empty(t, snap.PendingPurchases)
	require.Len(t, snap.Investments, 1)
	assert.Contains(t, snap.Investments[0].Name, game.LoanSuffix)

	details, err := second.Investments(ctx)
	require.NoError(t, err)
	require.Len(t, details, 1)

	require.NoError(t, second.Sell(ctx, 0))
	require.ErrorIs(t, second.Sell(ctx, 0), game.ErrInvestmentNotFound)
}

func TestLocalBackendRejectsUnaffordableBuy(t *testing.T) {
	ctx := context.Background()
	svc, err := game.NewService(game.Options{Source: rng.NewSequence(0.9), Logger: quietLogger()})
	require.NoError(t, err)
	local := NewLocal(svc)

	_, err = local.Buy(ctx, 0, false)
	require.ErrorIs(t, err, game.ErrNotStarted)

	_, err = local.Start(ctx, StartInput{Job: "Janitor", Age: 30, StartingMoney: 0, Name: "Alex"})
	require.NoError(t, err)
	opps := svc.Opportunities()
	require.NotEmpty(t, opps)
	_, err = local.Buy(ctx, 0, false)
	if opps[0].Amount > 0 {
		require.ErrorIs(t, err, game.ErrInsufficientFunds)
	}
	_, err = local.Buy(ctx, 99, false)
	require.ErrorIs(t, err, game.ErrOpportunityNotFound)
}

func TestLocalRetirement(t *testing.T) {
	ctx := context.Background()
	svc, err := game.NewService(game.Options{Source: rng.NewSequence(0.9), Logger: quietLogger()})
	require.NoError(t, err)
	local := NewLocal(svc)
	_, err = local.Start(ctx, StartInput{Job: "Janitor", Age: 30, StartingMoney: 10_000, Name: "Alex"})
	require.NoError(t, err)

	require.NoError(t, local.Retirement(ctx, Contribute, retirement.Account401k, 1000))
	require.ErrorIs(t, local.Retirement(ctx, Withdraw, retirement.Account401k, 500), ErrRetirementRejected)
	require.ErrorIs(t, local.Retirement(ctx, Contribute, "brokerage", 10), retirement.ErrUnknownAccount)
}

func TestRemoteBackend(t *testing.T) {
	ctx := context.Background()
	svc, err := game.NewService(game.Options{Source: rng.NewSequence(0.9), Logger: quietLogger()})
	require.NoError(t, err)
	apiSrv := api.New(config.APIConfig{}, quietLogger(), svc, nil)
	defer apiSrv.Close()
	srv := httptest.NewServer(apiSrv.Handler())
	defer srv.Close()

	client := NewClient(srv.URL + "/")
	_, err = client.State(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, game.ErrNotStarted.Error(), apiErr.Message)

	jobs, err := client.Jobs(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, jobs)

	snap, err := client.Start(ctx, StartInput{Job: "Janitor", Age: 30, StartingMoney: 10_000, Name: "Alex"})
	require.NoError(t, err)
	assert.Equal(t, 2540.0, snap.Income)
	assert.Len(t, snap.Opportunities, 5)

	require.NoError(t, client.Retirement(ctx, Contribute, retirement.Account401k, 500))
	err = client.Retirement(ctx, Withdraw, retirement.Account401k, 100)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)

	inv, err := client.Buy(ctx, 0, true)
	require.NoError(t, err)
	assert.Equal(t, snap.Opportunities[0].Name, inv.Name)

	entry, err := client.NextTurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.TurnNumber)
	assert.Equal(t, 31, entry.Age)

	details, err := client.Investments(ctx)
	require.NoError(t, err)
	require.Len(t, details, 1)

	market, err := client.Market(ctx)
	require.NoError(t, err)
	assert.Equal(t, svc.Catalog().Difficulty(), market.Difficulty)

	require.NoError(t, client.Sell(ctx, 0))
	err = client.Sell(ctx, 0)
	assert.True(t, IsAPIError(err))
	require.NoError(t, client.Close())
}

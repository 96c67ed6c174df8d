package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashflow/internal/config"
	"cashflow/internal/sim"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.LoadSimFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	opts := sim.Options{
		Games:             cfg.Games,
		Turns:             cfg.Turns,
		StartingMoney:     10_000,
		Seed:              time.Now().UnixNano(),
		Difficulty:        cfg.Difficulty,
		EventCount:        cfg.EventCount,
		OpportunityCount:  cfg.OpportunityCount,
		CapitalGainsShare: cfg.CapitalGainsShare,
		Workers:           8,
	}
	var full bool

	root := &cobra.Command{
		Use:          "cashflow-sim",
		Short:        "Play many games with a greedy strategy and report the outcome",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
			opts.Logger = logger
			started := time.Now()
			summary, err := sim.Run(ctx, opts)
			if err != nil {
				return err
			}
			logger.Info("simulation complete",
				"games", summary.Games,
				"seed", opts.Seed,
				"win_rate", summary.WinRate,
				"mean_net_worth", summary.MeanNetWorth,
				"elapsed", time.Since(started).String(),
			)
			if !full {
				summary.Results = nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	root.Flags().IntVar(&opts.Games, "games", opts.Games, "number of games to play")
	root.Flags().IntVar(&opts.Turns, "turns", opts.Turns, "maximum turns per game")
	root.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "seed of the first game")
	root.Flags().Float64Var(&opts.StartingMoney, "money", opts.StartingMoney, "starting money per game")
	root.Flags().IntVar(&opts.Workers, "workers", opts.Workers, "games played concurrently")
	root.Flags().BoolVar(&full, "results", false, "include every game in the output")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

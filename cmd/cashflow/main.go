package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	cl "cashflow/internal/cli"
	"cashflow/internal/config"
	"cashflow/internal/game"
	"cashflow/internal/retirement"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.LoadCLIFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "cashflow",
		Short:        "Play the Cashflow personal finance game",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "play against a cashflow-api server instead of the local save")

	open := func(ctx context.Context) (cl.Backend, error) {
		if strings.TrimSpace(apiBase) != "" {
			return cl.NewClient(strings.TrimSpace(apiBase)), nil
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		return cl.OpenLocal(ctx, cfg.Config, colorNotifier{}, logger)
	}

	root.AddCommand(
		newJobsCmd(open),
		newStartCmd(open),
		newStatusCmd(open),
		newTurnCmd(open),
		newOpportunitiesCmd(open),
		newBuyCmd(open),
		newSellCmd(open),
		newPortfolioCmd(open),
		newRetireCmd(open),
		newHistoryCmd(open),
		newMarketCmd(open),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type opener func(ctx context.Context) (cl.Backend, error)

// withBackend opens the backend, runs fn under a timeout and closes it.
func withBackend(cmd *cobra.Command, open opener, fn func(ctx context.Context, b cl.Backend) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	b, err := open(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	err = fn(ctx, b)
	if errors.Is(err, game.ErrNotStarted) {
		return fmt.Errorf("%w: run `cashflow start` first", err)
	}
	return err
}

func newJobsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List the careers you can start with",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				jobs, err := b.Jobs(ctx)
				if err != nil {
					return err
				}
				renderJobs(jobs)
				return nil
			})
		},
	}
}

func newStartCmd(open opener) *cobra.Command {
	var in cl.StartInput
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new game, replacing any saved one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				if strings.TrimSpace(in.Job) == "" {
					jobs, err := b.Jobs(ctx)
					if err != nil {
						return err
					}
					renderJobs(jobs)
					job, err := promptRequired("Job title")
					if err != nil {
						return err
					}
					in.Job = job
				}
				if in.Age == 0 {
					age, err := promptInt64("Starting age", 18)
					if err != nil {
						return err
					}
					in.Age = int(age)
				}
				if in.Name == "" {
					name, err := promptOptional("Player name (blank for random)")
					if err != nil {
						return err
					}
					in.Name = name
				}
				snap, err := b.Start(ctx, in)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Welcome, %s. Good luck.", snap.Name))
				renderStatus(snap)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Job, "job", "", "job title")
	cmd.Flags().IntVar(&in.Age, "age", 0, "starting age")
	cmd.Flags().Float64Var(&in.StartingMoney, "money", 0, "cash on top of the starting balance")
	cmd.Flags().StringVar(&in.Name, "name", "", "player name")
	return cmd
}

func newStatusCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show the current player sheet",
		Aliases: []string{"dash"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				snap, err := b.State(ctx)
				if err != nil {
					return err
				}
				renderStatus(snap)
				return nil
			})
		},
	}
}

func newTurnCmd(open opener) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "turn",
		Short: "Advance one or more years",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				for range count {
					entry, err := b.NextTurn(ctx)
					if err != nil {
						return err
					}
					renderTurn(entry)
				}
				snap, err := b.State(ctx)
				if err != nil {
					return err
				}
				renderOpportunities(snap.Opportunities)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of years to play")
	return cmd
}

func newOpportunitiesCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:     "opportunities",
		Short:   "List this year's investment offers and events",
		Aliases: []string{"opps"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				snap, err := b.State(ctx)
				if err != nil {
					return err
				}
				renderEvents(snap.CurrentEvents)
				renderOpportunities(snap.Opportunities)
				return nil
			})
		},
	}
}

func newBuyCmd(open opener) *cobra.Command {
	var loan bool
	cmd := &cobra.Command{
		Use:   "buy [index]",
		Short: "Buy an offer with cash, or finance it with --loan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := indexFromArgsOrPrompt(args, "Opportunity #")
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				inv, err := b.Buy(ctx, index, loan)
				if err != nil {
					return err
				}
				if loan {
					printSuccess(fmt.Sprintf("Financed %s (%s).", inv.Name, money(inv.Amount)))
				} else {
					printSuccess(fmt.Sprintf("Bought %s for %s.", inv.Name, money(inv.Amount)))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&loan, "loan", false, "finance the whole amount")
	return cmd
}

func newSellCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "sell [index]",
		Short: "Sell an owned investment for 90% of its amount",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := indexFromArgsOrPrompt(args, "Holding #")
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				if err := b.Sell(ctx, index); err != nil {
					return err
				}
				printSuccess("Sold.")
				return nil
			})
		},
	}
}

func newPortfolioCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:     "portfolio",
		Short:   "Show owned investments with ROI and price stats",
		Aliases: []string{"pf"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				details, err := b.Investments(ctx)
				if err != nil {
					return err
				}
				renderPortfolio(details)
				return nil
			})
		},
	}
}

func newRetireCmd(open opener) *cobra.Command {
	retire := &cobra.Command{
		Use:   "retire",
		Short: "Retirement account commands",
	}
	for _, action := range []cl.RetirementAction{cl.Contribute, cl.Withdraw} {
		retire.AddCommand(&cobra.Command{
			Use:   string(action) + " <account> <amount>",
			Short: strings.ToUpper(string(action[:1])) + string(action[1:]) + " to a 401k, ira, roth_ira or pension account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := strconv.ParseFloat(args[1], 64)
				if err != nil || amount <= 0 {
					return fmt.Errorf("amount must be a positive number")
				}
				account := retirement.AccountType(strings.ToLower(strings.TrimSpace(args[0])))
				return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
					if err := b.Retirement(ctx, action, account, amount); err != nil {
						return err
					}
					printSuccess(fmt.Sprintf("%s %s: %s done.", account, action, money(amount)))
					return nil
				})
			},
		})
	}
	return retire
}

func newHistoryCmd(open opener) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past turns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				snap, err := b.State(ctx)
				if err != nil {
					return err
				}
				entries := snap.TurnHistory
				if last > 0 && len(entries) > last {
					entries = entries[len(entries)-last:]
				}
				renderHistory(entries)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&last, "last", 0, "only show the last N turns")
	return cmd
}

func newMarketCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show the economic cycle and market conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, b cl.Backend) error {
				view, err := b.Market(ctx)
				if err != nil {
					return err
				}
				renderMarket(view)
				return nil
			})
		},
	}
}

func indexFromArgsOrPrompt(args []string, label string) (int, error) {
	if len(args) == 1 {
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n < 1 {
			return 0, fmt.Errorf("index must be a positive whole number")
		}
		return n - 1, nil
	}
	n, err := promptInt64(label, 1)
	if err != nil {
		return 0, err
	}
	return int(n - 1), nil
}

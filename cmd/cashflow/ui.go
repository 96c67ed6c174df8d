package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"cashflow/internal/domain"
	"cashflow/internal/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

func init() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

// colorNotifier prints game notifications for local play.
type colorNotifier struct{}

func (colorNotifier) Notify(kind game.NotificationKind, title, message string) {
	line := title
	if message != "" {
		line += ": " + message
	}
	switch kind {
	case game.NotifySuccess:
		printSuccess(line)
	case game.NotifyWarning:
		printWarn(line)
	case game.NotifyError:
		printError(line)
	default:
		printInfo(line)
	}
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func renderJobs(jobs []domain.Job) {
	accent.Println("\n== JOBS ==")
	fmt.Printf("%-24s %20s %12s\n", "TITLE", "SALARY/MO", "EXPENSES")
	for _, j := range jobs {
		fmt.Printf("%-24s %20s %12s\n",
			truncate(j.Title, 24),
			money(j.SalaryMin)+" - "+money(j.SalaryMax),
			money(j.Expenses),
		)
	}
	fmt.Println()
}

func renderStatus(s game.Snapshot) {
	cashflow := s.Income + s.PassiveIncome - s.Expenses
	left := strings.Join([]string{
		panelTitle.Render(fmt.Sprintf("%s, %d", s.Name, s.Age)),
		"Job:        " + s.Job,
		"Cash:       " + colorizeMoney(s.Cash),
		"Net worth:  " + colorizeMoney(s.NetWorth()),
		"Loans:      " + money(s.LoanTotal),
		"Taxes paid: " + money(s.YearlyTaxesPaid),
	}, "\n")
	right := strings.Join([]string{
		panelTitle.Render("Monthly"),
		"Salary:     " + money(s.Income),
		"Passive:    " + money(s.PassiveIncome),
		"Expenses:   " + money(s.Expenses),
		"Cash flow:  " + colorizeMoney(cashflow),
		fmt.Sprintf("Economy:    %s (%d left)", s.EconomicCycle, s.CycleTurnsRemaining),
	}, "\n")

	width := min(terminalWidth()/2-2, 44)
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(width).Render(left),
		panelStyle.Width(width).Render(right),
	)
	fmt.Println(row)

	switch {
	case s.Won:
		printSuccess("Passive income covers your expenses. You escaped the rat race!")
	case s.Expenses > 0:
		progress := math.Min(100, s.PassiveIncome/s.Expenses*100)
		printInfo(fmt.Sprintf("Freedom progress: %.1f%% of expenses covered by passive income", progress))
	}
	if len(s.Investments) > 0 {
		fmt.Println()
		accent.Println("Holdings")
		for i, inv := range s.Investments {
			fmt.Printf("%3d. %-34s %12s %10s/mo\n", i+1, truncate(inv.Name, 34), money(inv.Amount), money(inv.Income))
		}
	}
	fmt.Println()
}

func renderTurn(e game.TurnHistoryEntry) {
	accent.Printf("\n== YEAR %d (age %d, %s) ==\n", e.TurnNumber, e.Age, e.EconomicCycle)
	fmt.Printf("Cash:        %s -> %s (%s)\n", money(e.CashBefore), money(e.CashAfter), colorizeSigned(e.CashChange))
	fmt.Printf("Income:      %s\n", money(e.Income))
	fmt.Printf("Passive:     %s\n", money(e.PassiveIncome))
	fmt.Printf("Expenses:    %s\n", money(e.Expenses))
	fmt.Printf("Taxes:       %s\n", money(e.TaxesPaid))
	fmt.Printf("Net worth:   %s\n", colorizeMoney(e.NetWorth))
	renderEvents(e.Events)
}

func renderEvents(events []domain.GameEvent) {
	if len(events) == 0 {
		return
	}
	accent.Println("Events")
	for _, ev := range events {
		fmt.Printf("  %s %s (%s)\n", colorizeSigned(ev.Effect.Amount), ev.Message, ev.Effect.Type)
	}
}

func renderOpportunities(opps []domain.Investment) {
	accent.Println("\n== OPPORTUNITIES ==")
	if len(opps) == 0 {
		printInfo("Nothing on offer this year.")
		return
	}
	fmt.Printf("%3s %-34s %-11s %12s %10s %10s %-9s\n", "#", "NAME", "TYPE", "COST", "INCOME", "PAYMENT", "RISK")
	for i, o := range opps {
		risk := string(o.RiskCategory)
		if risk == "" {
			risk = "-"
		}
		fmt.Printf("%3d %-34s %-11s %12s %10s %10s %-9s\n",
			i+1,
			truncate(o.Name, 34),
			o.Type,
			money(o.Amount),
			money(o.Income),
			money(o.YearlyPayment),
			risk,
		)
	}
	fmt.Println()
}

func renderPortfolio(details []game.InvestmentDetail) {
	accent.Println("\n== PORTFOLIO ==")
	if len(details) == 0 {
		printInfo("No investments yet.")
		return
	}
	fmt.Printf("%3s %-30s %12s %10s %9s %9s %10s %9s\n", "#", "NAME", "AMOUNT", "INCOME", "ROI", "PAYBACK", "PRICE", "VOL")
	for _, d := range details {
		payback := "-"
		if d.PaybackMonths != nil {
			payback = fmt.Sprintf("%.0fmo", *d.PaybackMonths)
		}
		price := "-"
		if n := len(d.Investment.PriceHistory); n > 0 {
			price = money(d.Investment.PriceHistory[n-1])
		}
		fmt.Printf("%3d %-30s %12s %10s %9s %9s %10s %8.1f%%\n",
			d.Index+1,
			truncate(d.Investment.Name, 30),
			money(d.Investment.Amount),
			money(d.Investment.Income),
			colorizePercent(d.ROI),
			payback,
			price,
			d.Stats.RealizedVolatility*100,
		)
	}
	fmt.Println()
}

func renderHistory(entries []game.TurnHistoryEntry) {
	accent.Println("\n== HISTORY ==")
	if len(entries) == 0 {
		printInfo("No turns played yet.")
		return
	}
	fmt.Printf("%5s %4s %-11s %12s %12s %10s %10s %14s\n", "TURN", "AGE", "CYCLE", "CASH", "CHANGE", "PASSIVE", "TAXES", "NET WORTH")
	for _, e := range entries {
		fmt.Printf("%5d %4d %-11s %12s %12s %10s %10s %14s\n",
			e.TurnNumber,
			e.Age,
			e.EconomicCycle,
			money(e.CashAfter),
			colorizeSigned(e.CashChange),
			money(e.PassiveIncome),
			money(e.TaxesPaid),
			money(e.NetWorth),
		)
	}
	fmt.Println()
}

func renderMarket(v game.MarketView) {
	accent.Println("\n== MARKET ==")
	fmt.Printf("Cycle:        %s (%d of %d turns left)\n", v.Cycle.Cycle, v.Cycle.Remaining, v.Cycle.Duration)
	fmt.Printf("Conditions:   %s x%.2f\n", v.Conditions.Condition, v.Conditions.Multiplier)
	if v.Conditions.Description != "" {
		printInfo("              " + v.Conditions.Description)
	}
	fmt.Printf("Returns:      x%.2f\n", v.Cycle.Effects.InvestmentReturn)
	fmt.Printf("Inflation:    %.1f%%\n", v.Cycle.Effects.InflationRate*100)
	fmt.Printf("Event impact: x%.2f\n", v.Cycle.Effects.EventSeverity)
	fmt.Printf("Difficulty:   %s (loan fee %.0f%%)\n", v.Difficulty, v.LoanRate*100)
	if len(v.Brackets) > 0 {
		accent.Println("Tax brackets")
		for _, b := range v.Brackets {
			upper := "and up"
			if !b.Max.IsZero() {
				upper = "to " + money(b.Max.InexactFloat64())
			}
			fmt.Printf("  %-10s %s %-14s income %s, gains %s, dividends %s\n",
				b.Name, money(b.Min.InexactFloat64()), upper,
				b.IncomeRate.Shift(2).String()+"%", b.CapitalGainRate.Shift(2).String()+"%", b.DividendRate.Shift(2).String()+"%")
		}
	}
	fmt.Println()
}

func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s$%s.%02d", sign, comma(cents/100), cents%100)
}

func colorizeMoney(v float64) string {
	if v < 0 {
		return danger.Sprint(money(v))
	}
	return neutral.Sprint(money(v))
}

func colorizeSigned(v float64) string {
	text := money(v)
	switch {
	case v > 0:
		return success.Sprint("+" + text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gitlab.com/yelinaung/expense-ledger/internal/alerts"
	"gitlab.com/yelinaung/expense-ledger/internal/categories"
	"gitlab.com/yelinaung/expense-ledger/internal/config"
	"gitlab.com/yelinaung/expense-ledger/internal/expenses"
	"gitlab.com/yelinaung/expense-ledger/internal/importer"
	"gitlab.com/yelinaung/expense-ledger/internal/logger"
	"gitlab.com/yelinaung/expense-ledger/internal/models"
	"gitlab.com/yelinaung/expense-ledger/internal/money"
	"gitlab.com/yelinaung/expense-ledger/internal/report"
	"gitlab.com/yelinaung/expense-ledger/internal/repository"
	"gitlab.com/yelinaung/expense-ledger/internal/summary"
	"gitlab.com/yelinaung/expense-ledger/internal/validation"
)

const usage = `Usage: expense-ledger <command> [arguments]

Commands:
  version
  categories
  import     <owner> <file.csv|->
  add        <owner> <date> <amount> <category> <description...>
  edit       <owner> <id> <date> <amount> <category> <description...>
  delete     <owner> <id>
  list       <owner> <year> <month> [page]
  summary    <owner> <year> <month>
  export     <owner> <year> <month> [out.csv]
  chart      <owner> <year> <month> [out.png]
  years      <owner>
`

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("invalid usage")

type app struct {
	cfg       *config.Config
	registry  *categories.Registry
	importer  *importer.Importer
	expenses  *expenses.Service
	summaries *summary.Aggregator
	alerts    *alerts.Evaluator
	stdin     io.Reader
	out       io.Writer
}

func newApp(cfg *config.Config, store repository.Store, registry *categories.Registry, budgets alerts.Budgets, out io.Writer) *app {
	loc := cfg.Location()
	aggregator := summary.NewAggregator(store, registry)
	return &app{
		cfg:      cfg,
		registry: registry,
		importer: importer.New(store, registry,
			importer.WithLocation(loc),
			importer.WithMaxRows(cfg.ImportMaxRows)),
		expenses:  expenses.NewService(store, registry, nil, loc),
		summaries: aggregator,
		alerts:    alerts.NewEvaluator(aggregator, budgets, cfg.CurrencySymbol),
		stdin:     os.Stdin,
		out:       out,
	}
}

// exec runs one command and maps its error to an exit code.
// Infrastructure failures print a single generic line; the detail goes to the log.
func (a *app) exec(ctx context.Context, args []string) int {
	err := a.dispatch(ctx, args)
	if err == nil {
		return exitOK
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintf(a.out, "%v\n\n%s", err, usage)
		return exitUsage
	}
	if verr, ok := validation.AsErrors(err); ok {
		for _, field := range verr.Fields() {
			fmt.Fprintf(a.out, "%s: %s\n", field, verr[field])
		}
		return exitFailure
	}
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, expenses.ErrNotOwner):
		fmt.Fprintln(a.out, "Expense not found.")
		return exitFailure
	case errors.Is(err, summary.ErrInvalidPeriod):
		fmt.Fprintln(a.out, "Month must be between 1 and 12.")
		return exitFailure
	case errors.Is(err, report.ErrNothingToChart):
		fmt.Fprintln(a.out, "No expenses to chart.")
		return exitFailure
	case errors.Is(err, importer.ErrMalformedInput):
		fmt.Fprintln(a.out, "The import file is not valid CSV. Nothing was imported.")
		return exitFailure
	case errors.Is(err, importer.ErrTooManyRows):
		fmt.Fprintf(a.out, "The import file has more than %d rows. Nothing was imported.\n", a.cfg.ImportMaxRows)
		return exitFailure
	}

	logger.Log.Error().Err(err).Msg("Command failed")
	fmt.Fprintln(a.out, "Something went wrong. Please try again later.")
	return exitFailure
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "categories":
		return a.cmdCategories()
	case "import":
		return a.cmdImport(ctx, rest)
	case "add":
		return a.cmdAdd(ctx, rest)
	case "edit":
		return a.cmdEdit(ctx, rest)
	case "delete":
		return a.cmdDelete(ctx, rest)
	case "list":
		return a.cmdList(ctx, rest)
	case "summary":
		return a.cmdSummary(ctx, rest)
	case "export":
		return a.cmdExport(ctx, rest)
	case "chart":
		return a.cmdChart(ctx, rest)
	case "years":
		return a.cmdYears(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) cmdCategories() error {
	for _, c := range a.registry.All() {
		fmt.Fprintf(a.out, "%-14s %s\n", c.Key, c.Label)
	}
	return nil
}

func (a *app) cmdImport(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: import needs <owner> <file.csv|->", errUsage)
	}
	owner, err := parseOwner(args[0])
	if err != nil {
		return err
	}

	in := a.stdin
	if args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		in = f
	}

	outcome, err := a.importer.ImportCSV(ctx, owner, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Imported %d rows, skipped %d.\n", outcome.Imported, len(outcome.Skipped))
	for _, s := range outcome.Skipped {
		fmt.Fprintf(a.out, "  line %d: %s\n", s.Line, s.Reason)
	}
	return nil
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("%w: add needs <owner> <date> <amount> <category> <description...>", errUsage)
	}
	owner, err := parseOwner(args[0])
	if err != nil {
		return err
	}

	e, err := a.expenses.Create(ctx, owner, expenses.Input{
		Date:        args[1],
		Amount:      args[2],
		Category:    args[3],
		Description: strings.Join(args[4:], " "),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added expense #%d: %s\n", *e.ID, a.formatExpense(e))
	return nil
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	if len(args) < 6 {
		return fmt.Errorf("%w: edit needs <owner> <id> <date> <amount> <category> <description...>", errUsage)
	}
	owner, err := parseOwner(args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	e, err := a.expenses.Update(ctx, owner, id, expenses.Input{
		Date:        args[2],
		Amount:      args[3],
		Category:    args[4],
		Description: strings.Join(args[5:], " "),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Updated expense #%d: %s\n", *e.ID, a.formatExpense(e))
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: delete needs <owner> <id>", errUsage)
	}
	owner, err := parseOwner(args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	if err := a.expenses.Delete(ctx, owner, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted expense #%d.\n", id)
	return nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	if len(args) != 3 && len(args) != 4 {
		return fmt.Errorf("%w: list needs <owner> <year> <month> [page]", errUsage)
	}
	owner, year, month, err := parsePeriod(args)
	if err != nil {
		return err
	}
	page := 1
	if len(args) == 4 {
		if page, err = strconv.Atoi(args[3]); err != nil || page < 1 {
			return fmt.Errorf("%w: invalid page %q", errUsage, args[3])
		}
	}

	total, err := a.expenses.Count(ctx, owner, year, month)
	if err != nil {
		return err
	}
	list, err := a.expenses.List(ctx, owner, year, month, page, expenses.DefaultPageSize)
	if err != nil {
		return err
	}

	for i := range list {
		fmt.Fprintf(a.out, "#%-6d %s\n", *list[i].ID, a.formatExpense(&list[i]))
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d expenses)\n", page, expenses.Pages(total, expenses.DefaultPageSize), total)
	return nil
}

func (a *app) cmdSummary(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: summary needs <owner> <year> <month>", errUsage)
	}
	owner, year, month, err := parsePeriod(args)
	if err != nil {
		return err
	}

	s, err := a.summaries.Month(ctx, owner, year, month)
	if err != nil {
		return err
	}
	msgs, err := a.alerts.Evaluate(ctx, owner, year, month)
	if err != nil {
		return err
	}

	fmt.Fprint(a.out, report.MonthText(s, msgs, a.cfg.CurrencySymbol))
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	if len(args) != 3 && len(args) != 4 {
		return fmt.Errorf("%w: export needs <owner> <year> <month> [out.csv]", errUsage)
	}
	owner, year, month, err := parsePeriod(args)
	if err != nil {
		return err
	}

	total, err := a.expenses.Count(ctx, owner, year, month)
	if err != nil {
		return err
	}
	var list []models.Expense
	if total > 0 {
		if list, err = a.expenses.List(ctx, owner, year, month, 1, total); err != nil {
			return err
		}
	}

	data, err := report.ExpensesCSV(list)
	if err != nil {
		return err
	}
	path := outputPath(args, "expenses", year, month, "csv")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported %d expenses to %s.\n", len(list), path)
	return nil
}

func (a *app) cmdChart(ctx context.Context, args []string) error {
	if len(args) != 3 && len(args) != 4 {
		return fmt.Errorf("%w: chart needs <owner> <year> <month> [out.png]", errUsage)
	}
	owner, year, month, err := parsePeriod(args)
	if err != nil {
		return err
	}

	s, err := a.summaries.Month(ctx, owner, year, month)
	if err != nil {
		return err
	}
	png, err := report.CategoryChart(s)
	if err != nil {
		return err
	}
	path := outputPath(args, "chart", year, month, "png")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	fmt.Fprintf(a.out, "Wrote chart to %s.\n", path)
	return nil
}

func (a *app) cmdYears(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: years needs <owner>", errUsage)
	}
	owner, err := parseOwner(args[0])
	if err != nil {
		return err
	}

	years, err := a.summaries.ExpenditureYears(ctx, owner)
	if err != nil {
		return err
	}
	if len(years) == 0 {
		fmt.Fprintln(a.out, "No expenses recorded.")
		return nil
	}
	for _, y := range years {
		fmt.Fprintln(a.out, y)
	}
	return nil
}

func (a *app) formatExpense(e *models.Expense) string {
	return fmt.Sprintf("%s  %-12s %12s  %s",
		e.OccurredOn.Format(models.DateLayout),
		a.registry.Label(e.Category),
		money.Format(money.FromMinor(e.AmountMinor), a.cfg.CurrencySymbol),
		e.Description)
}

func parseOwner(s string) (int64, error) {
	owner, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid owner %q", errUsage, s)
	}
	return owner, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, s)
	}
	return id, nil
}

// outputPath returns the optional fourth argument, or a name derived from the period.
func outputPath(args []string, prefix string, year, month int, ext string) string {
	if len(args) > 3 {
		return args[3]
	}
	return report.Filename(prefix, year, month, ext)
}

func parsePeriod(args []string) (owner int64, year, month int, err error) {
	if owner, err = parseOwner(args[0]); err != nil {
		return 0, 0, 0, err
	}
	if year, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: invalid year %q", errUsage, args[1])
	}
	if month, err = strconv.Atoi(args[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: invalid month %q", errUsage, args[2])
	}
	return owner, year, month, nil
}

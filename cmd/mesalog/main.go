// Package main is the entry point for the mesalog CLI.
//
// Usage:
//
//	mesalog dashboard          — income/expense dashboard (default)
//	mesalog order ...          — record a table order
//	mesalog expense ...        — record an operating expense
//	mesalog report             — weekly operations report
//	mesalog export / import    — archive the log to / restore it from JSON
//	mesalog wipe               — erase everything (asks three times)
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesalog/mesalog/internal/archive"
	"github.com/mesalog/mesalog/internal/config"
	"github.com/mesalog/mesalog/internal/model"
	"github.com/mesalog/mesalog/internal/observability"
	"github.com/mesalog/mesalog/internal/render"
	"github.com/mesalog/mesalog/internal/report"
	"github.com/mesalog/mesalog/internal/storage"
)

const (
	version = "0.1.0"
	appName = "mesalog"
)

// app bundles everything a subcommand needs.
type app struct {
	cfg    config.Config
	log    *observability.Logger
	store  *storage.Coordinator
	backup *storage.FileStore
	out    render.Renderer
	stdin  *bufio.Reader
}

func main() {
	cmd := "dashboard"
	args := []string{}
	if len(os.Args) > 1 {
		cmd = os.Args[1]
		args = os.Args[2:]
	}

	switch cmd {
	case "version":
		fmt.Printf("%s v%s\n", appName, version)
		return
	case "help", "--help", "-h":
		printUsage()
		return
	}

	a, err := bootstrap()
	if err != nil {
		fatalf("%v", err)
	}
	defer a.close()

	ctx := context.Background()

	switch cmd {
	case "dashboard":
		a.runDashboard()
	case "order":
		a.runAddOrder(ctx, args)
	case "orders":
		a.runListOrders(args)
	case "edit-order":
		a.runEditOrder(ctx, args)
	case "delete-order":
		a.runDeleteOrder(ctx, args)
	case "expense":
		a.runAddExpense(ctx, args)
	case "expenses":
		a.runListExpenses(args)
	case "delete-expense":
		a.runDeleteExpense(ctx, args)
	case "report":
		a.runReport()
	case "suggest":
		a.runSuggest()
	case "export":
		a.runExport(args)
	case "import":
		a.runImport(ctx, args)
	case "wipe":
		a.runWipe(ctx)
	case "status":
		a.runStatus()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `%s v%s — restaurant order and expense log

Usage:
  %s [command]

Commands:
  dashboard       Income, expenses, and balance for today/week/month (default)
  order           Record an order: -table -item "2:Tacos:45" [-customer] [-server] [-paid] [-tip]
  orders          List orders ([-date YYYY-MM-DD])
  edit-order      Rewrite an order: -id plus any order flags to change
  delete-order    Remove an order: -id
  expense         Record an expense: -category -concept -amount [-date]
  expenses        List expenses ([-category])
  delete-expense  Remove an expense: -id
  report          Weekly operations report (top dishes, customers, servers)
  suggest         Known customers, servers, and dishes for quick entry
  export          Write the full log to a JSON archive: [-o file]
  import          Replace the full log from a JSON archive: -i file
  wipe            Erase all data (asks for confirmation three times)
  status          Show storage backend health
  version         Print version

Environment variables:
  MESALOG_CONFIG         Config file (default: ~/.config/mesalog/config.toml)
  MESALOG_DATA           Data directory (default: ~/.local/share/mesalog)
  MESALOG_NAME           Restaurant name shown on tickets and reports
  MESALOG_CURRENCY       Currency symbol (default: $)
  MESALOG_REMINDER_DAYS  Days before the export reminder fires (default: 7)

`, appName, version, appName)
}

// bootstrap builds the storage stack: SQLite as the durable store, a flat
// JSON directory as the backup. Either backend may fail to come up; the
// coordinator runs with whatever is left.
func bootstrap() (*app, error) {
	cfg, err := config.Load(os.Getenv("MESALOG_CONFIG"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	log := observability.NewLogger(uuid.NewString(), logSink(cfg))

	var durable storage.DurableBackend
	ds, err := storage.NewDurableStore(cfg.DatabasePath())
	if err != nil {
		log.Error("durable store unavailable", "error", err)
	} else {
		durable = ds
	}

	var backup *storage.FileStore
	fs, err := storage.NewFileStore(cfg.BackupDir())
	if err != nil {
		log.Error("backup store unavailable", "error", err)
	} else {
		backup = fs
	}

	coord := storage.NewCoordinator(durable, backupOrNil(backup), log)
	ctx := context.Background()
	coord.Initialize(ctx)
	coord.Load(ctx)

	return &app{
		cfg:    cfg,
		log:    log,
		store:  coord,
		backup: backup,
		out:    render.Renderer{Name: cfg.RestaurantName, Currency: cfg.Currency},
		stdin:  bufio.NewReader(os.Stdin),
	}, nil
}

// backupOrNil avoids handing the coordinator a typed nil interface.
func backupOrNil(fs *storage.FileStore) storage.BackupBackend {
	if fs == nil {
		return nil
	}
	return fs
}

func logSink(cfg config.Config) io.Writer {
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, "mesalog.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}

func (a *app) close() {
	a.store.Close()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// itemList collects repeated -item flags in "qty:description:price" form.
type itemList []model.LineItem

func (l *itemList) String() string { return fmt.Sprintf("%d items", len(*l)) }

func (l *itemList) Set(value string) error {
	qtyStr, rest, ok := strings.Cut(value, ":")
	i := strings.LastIndex(rest, ":")
	if !ok || i < 0 {
		return fmt.Errorf("want qty:description:price, got %q", value)
	}
	desc, priceStr := rest[:i], rest[i+1:]

	qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
	if err != nil {
		return fmt.Errorf("quantity %q: %w", qtyStr, err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)
	if err != nil {
		return fmt.Errorf("price %q: %w", priceStr, err)
	}

	*l = append(*l, model.LineItem{
		ID:          model.NewID() + int64(len(*l)),
		Description: strings.TrimSpace(desc),
		Quantity:    qty,
		UnitPrice:   price,
	})
	return nil
}

func (a *app) runDashboard() {
	d := report.BuildDashboard(a.store.Orders(), a.store.Expenses(), model.Today())
	fmt.Print(a.out.Dashboard(d))
	a.printBackupReminder()
}

func (a *app) printBackupReminder() {
	if a.backup == nil || a.cfg.BackupReminderDays <= 0 {
		return
	}
	last := a.backup.ReadValue(storage.KeyLastExport)
	if last == "" {
		fmt.Printf("\nno export yet — run '%s export' to keep an offline copy\n", appName)
		return
	}
	t, err := time.Parse(model.DateLayout, last)
	if err != nil {
		return
	}
	days := int(time.Since(t).Hours() / 24)
	if days >= a.cfg.BackupReminderDays {
		fmt.Printf("\nlast export was %d days ago — run '%s export'\n", days, appName)
	}
}

func (a *app) runAddOrder(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	date := fs.String("date", model.Today(), "order date (YYYY-MM-DD)")
	table := fs.String("table", "", "table label")
	customer := fs.String("customer", "", "customer name")
	server := fs.String("server", "", "server name")
	paid := fs.Bool("paid", false, "mark as paid")
	tip := fs.Float64("tip", 0, "tip amount")
	var items itemList
	fs.Var(&items, "item", "line item as qty:description:price (repeatable)")
	fs.Parse(args)

	order := model.Order{
		ID:       model.NewID(),
		Date:     *date,
		Table:    *table,
		Customer: strings.TrimSpace(*customer),
		Server:   strings.TrimSpace(*server),
		Items:    items,
		Paid:     *paid,
		Tip:      *tip,
	}
	order.Normalize()
	if err := order.Validate(); err != nil {
		fatalf("%v", err)
	}

	orders := append(a.store.Orders(), order)
	status := a.store.SaveOrders(ctx, orders)

	fmt.Print(a.out.Ticket(order))
	fmt.Println(render.StatusLine(status))
}

func (a *app) runListOrders(args []string) {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	date := fs.String("date", "", "only this date (YYYY-MM-DD)")
	fs.Parse(args)

	var total float64
	n := 0
	for _, o := range a.store.Orders() {
		if *date != "" && o.Date != *date {
			continue
		}
		fmt.Println(a.out.OrderLine(o))
		total += o.Total
		n++
	}
	fmt.Printf("%d orders, %s\n", n, a.out.Money(total))
}

func (a *app) runEditOrder(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("edit-order", flag.ExitOnError)
	id := fs.Int64("id", 0, "order id")
	date := fs.String("date", "", "order date (YYYY-MM-DD)")
	table := fs.String("table", "", "table label")
	customer := fs.String("customer", "", "customer name")
	server := fs.String("server", "", "server name")
	paid := fs.Bool("paid", false, "mark as paid")
	tip := fs.Float64("tip", -1, "tip amount")
	var items itemList
	fs.Var(&items, "item", "replace all line items (repeatable)")
	fs.Parse(args)

	orders := a.store.Orders()
	idx := -1
	for i, o := range orders {
		if o.ID == *id {
			idx = i
			break
		}
	}
	if idx < 0 {
		fatalf("no order with id %d", *id)
	}

	// Editing replaces the record wholesale under a fresh id.
	edited := orders[idx]
	edited.ID = model.NewID()
	if *date != "" {
		edited.Date = *date
	}
	if *table != "" {
		edited.Table = *table
	}
	if *customer != "" {
		edited.Customer = strings.TrimSpace(*customer)
	}
	if *server != "" {
		edited.Server = strings.TrimSpace(*server)
	}
	if len(items) > 0 {
		edited.Items = items
	}
	if *tip >= 0 {
		edited.Tip = *tip
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "paid" {
			edited.Paid = *paid
		}
	})
	edited.Normalize()
	if err := edited.Validate(); err != nil {
		fatalf("%v", err)
	}

	orders[idx] = edited
	status := a.store.SaveOrders(ctx, orders)

	fmt.Print(a.out.Ticket(edited))
	fmt.Println(render.StatusLine(status))
}

func (a *app) runDeleteOrder(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("delete-order", flag.ExitOnError)
	id := fs.Int64("id", 0, "order id")
	fs.Parse(args)

	orders := a.store.Orders()
	kept := orders[:0]
	for _, o := range orders {
		if o.ID != *id {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(orders) {
		fatalf("no order with id %d", *id)
	}

	status := a.store.SaveOrders(ctx, kept)
	fmt.Printf("deleted order %d\n", *id)
	fmt.Println(render.StatusLine(status))
}

func (a *app) runAddExpense(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("expense", flag.ExitOnError)
	date := fs.String("date", model.Today(), "expense date (YYYY-MM-DD)")
	category := fs.String("category", "", "one of: "+strings.Join(model.Categories, ", "))
	concept := fs.String("concept", "", "what the money went to")
	amount := fs.Float64("amount", 0, "amount spent")
	fs.Parse(args)

	expense := model.Expense{
		ID:       model.NewID(),
		Date:     *date,
		Category: *category,
		Concept:  strings.TrimSpace(*concept),
		Amount:   *amount,
	}
	if err := expense.Validate(); err != nil {
		fatalf("%v", err)
	}

	expenses := append(a.store.Expenses(), expense)
	status := a.store.SaveExpenses(ctx, expenses)

	fmt.Println(a.out.ExpenseLine(expense))
	fmt.Println(render.StatusLine(status))
}

func (a *app) runListExpenses(args []string) {
	fs := flag.NewFlagSet("expenses", flag.ExitOnError)
	category := fs.String("category", "", "only this category")
	fs.Parse(args)

	var total float64
	n := 0
	for _, e := range a.store.Expenses() {
		if *category != "" && e.Category != *category {
			continue
		}
		fmt.Println(a.out.ExpenseLine(e))
		total += e.Amount
		n++
	}
	fmt.Printf("%d expenses, %s\n", n, a.out.Money(total))
}

func (a *app) runDeleteExpense(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("delete-expense", flag.ExitOnError)
	id := fs.Int64("id", 0, "expense id")
	fs.Parse(args)

	expenses := a.store.Expenses()
	kept := expenses[:0]
	for _, e := range expenses {
		if e.ID != *id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(expenses) {
		fatalf("no expense with id %d", *id)
	}

	status := a.store.SaveExpenses(ctx, kept)
	fmt.Printf("deleted expense %d\n", *id)
	fmt.Println(render.StatusLine(status))
}

func (a *app) runReport() {
	w := report.BuildWeekly(a.store.Orders(), model.Today())
	fmt.Print(a.out.Weekly(w))
}

func (a *app) runSuggest() {
	idx := a.store.Index()
	fmt.Printf("customers: %s\n", strings.Join(idx.Customers(), ", "))
	fmt.Printf("servers:   %s\n", strings.Join(idx.Servers(), ", "))
	fmt.Printf("dishes:    %s\n", strings.Join(idx.Dishes(), ", "))
}

func (a *app) runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (default: mesalog-export-<date>.json)")
	fs.Parse(args)

	path := *out
	if path == "" {
		path = fmt.Sprintf("mesalog-export-%s.json", model.Today())
	}

	if err := archive.Export(path, a.store.Orders(), a.store.Expenses()); err != nil {
		fatalf("export: %v", err)
	}
	if a.backup != nil {
		if err := a.backup.WriteValue(storage.KeyLastExport, model.Today()); err != nil {
			a.log.Warn("record export date", "error", err)
		}
	}
	fmt.Printf("exported %d orders and %d expenses to %s\n",
		len(a.store.Orders()), len(a.store.Expenses()), path)
}

func (a *app) runImport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("i", "", "archive file to restore from")
	fs.Parse(args)
	if *in == "" {
		fatalf("import: -i file is required")
	}

	doc, err := archive.Import(*in)
	if err != nil {
		fatalf("import: %v", err)
	}

	fmt.Printf("archive from %s: %d orders, %d expenses\n", doc.Date, len(doc.Orders), len(doc.Expenses))
	fmt.Printf("this REPLACES the current log (%d orders, %d expenses)\n",
		len(a.store.Orders()), len(a.store.Expenses()))
	if !a.confirm("continue? [y/N] ") {
		fmt.Println("aborted")
		return
	}

	status := a.store.ReplaceAll(ctx, doc.Orders, doc.Expenses)
	fmt.Println("import complete")
	fmt.Println(render.StatusLine(status))
}

func (a *app) runWipe(ctx context.Context) {
	fmt.Printf("this erases ALL orders and expenses from every store.\n")
	if !a.confirm("are you sure? [y/N] ") {
		fmt.Println("aborted")
		return
	}
	if !a.confirm("there is no undo. really delete everything? [y/N] ") {
		fmt.Println("aborted")
		return
	}
	fmt.Print("type CONFIRM to proceed: ")
	line, _ := a.stdin.ReadString('\n')
	if strings.TrimSpace(line) != "CONFIRM" {
		fmt.Println("aborted")
		return
	}

	a.store.Wipe(ctx)
	fmt.Println("all data erased")
}

func (a *app) runStatus() {
	idx := a.store.Index()
	fmt.Printf("mode:   %s\n", a.store.Mode())
	fmt.Printf("status: %s\n", a.store.Status())
	fmt.Printf("orders: %d   expenses: %d\n", len(a.store.Orders()), len(a.store.Expenses()))
	fmt.Printf("known:  %d customers, %d servers, %d dishes\n",
		len(idx.Customers()), len(idx.Servers()), len(idx.Dishes()))
	if a.backup != nil {
		if last := a.backup.ReadValue(storage.KeyLastExport); last != "" {
			fmt.Printf("last export: %s\n", last)
		}
	}
}

func (a *app) confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := a.stdin.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

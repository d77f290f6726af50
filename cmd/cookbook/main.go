package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/cookbook"
	"github.com/fwojciec/cookbook/category"
	cookbookprom "github.com/fwojciec/cookbook/prometheus"
	cookbookslog "github.com/fwojciec/cookbook/slog"
	"github.com/fwojciec/cookbook/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
	stop()
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db nor COOKBOOK_DB is set.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Extractor replaces the model-backed extraction stack when set.
	Extractor cookbook.RecipeExtractor

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("cookbook"),
		kong.Description("Save recipes from any web page."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'cookbook --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.LogLevel)

	dbPath := cli.DB
	if dbPath == "" {
		dbPath = m.DBPath
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set COOKBOOK_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Recipes = sqlite.NewRecipeService(m.DB)
	deps.Prometheus = cookbookprom.NewMetrics()
	deps.Metrics = cookbookprom.NewMetricService(sqlite.NewMetricService(m.DB), deps.Prometheus)

	suggester := category.NewSuggester()
	deps.Categories = cookbookslog.NewLoggingCategoryManager(
		category.NewManager(sqlite.NewCategoryService(m.DB), category.NewValidator(), suggester),
		deps.Logger,
	)

	switch cmd {
	case "serve", "extract", "import":
		if m.Extractor != nil {
			deps.Extractor = m.Extractor
			break
		}
		ex, closeFn, err := newExtractor(ctx, cli.AI, deps.Metrics, suggester, deps.Logger)
		if err != nil {
			return err
		}
		m.closers = append(m.closers, closeFn)
		deps.Extractor = ex
	}

	return kongCtx.Run(deps)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cookbook.db"
	}
	dir := filepath.Join(home, ".cookbook")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cookbook.db")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"

	"wbloader/internal/config"
	"wbloader/internal/fetch"
	"wbloader/internal/logging"
	"wbloader/internal/notify"
	"wbloader/internal/runlog"
	"wbloader/internal/scenario"
	"wbloader/internal/store"

	// Register all scenarios
	_ "wbloader/internal/wb17"
	_ "wbloader/internal/wb24"
)

const eventSource = "wbloader"

// kvArgs collects repeated key=value flags.
type kvArgs map[string]string

func (a kvArgs) String() string {
	pairs := make([]string, 0, len(a))
	for k, v := range a {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (a kvArgs) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	a[key] = value
	return nil
}

func main() {
	scenarioName := flag.String("scenario", "", "data load scenario to run (required)")
	testData := flag.Bool("test-data", false, "mark inserted rows as test data and use test settings")
	bot := flag.Bool("bot", false, "send a notification on fatal errors even if disabled in config")
	args := kvArgs{}
	flag.Var(args, "scenario-arg", "override a setting as key=value (url, limit, offset, timeout, retries); repeatable")
	flag.Parse()

	if *scenarioName == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -scenario <name> [-test-data] [-bot] [-scenario-arg k=v ...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "registered scenarios: %s\n", strings.Join(scenario.Names(), ", "))
		os.Exit(1)
	}

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *bot {
		cfg.Notify.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *scenarioName, *testData, args); err != nil {
		os.Exit(1)
	}
}

// run executes one load pass. Every fatal error has been logged and
// recorded before it returns.
func run(ctx context.Context, cfg *config.Config, scenarioName string, testData bool, args kvArgs) error {
	collectionStart := time.Now().UTC()

	pool, err := store.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		notifyFatal(cfg, fmt.Sprintf("Scenario: %s, LPID: none, database unavailable", scenarioName))
		return err
	}
	defer pool.Close()

	runID, err := store.IssueRunID(ctx, pool, cfg.Database.LockTimeout)
	if err != nil {
		slog.Error("run id issuance failed", "error", err)
		notifyFatal(cfg, fmt.Sprintf("Scenario: %s, LPID: none, run id issuance failed", scenarioName))
		return err
	}

	logger := logging.WithRun(runID, scenarioName)
	sink := runlog.NewDBSink(pool, logger, eventSource, scenarioName, runID)

	sink.Emit(ctx, runlog.Event{Code: runlog.AppStart, Status: runlog.StatusSuccess,
		Message: fmt.Sprintf("loader started, test_data=%v", testData)})

	fatal := func(code runlog.Code, err error) error {
		sink.Emit(ctx, runlog.Event{Code: code, Status: runlog.StatusError, Message: err.Error()})
		sink.Emit(ctx, runlog.Event{Code: runlog.AppFinished, Status: runlog.StatusError,
			Message: fmt.Sprintf("loader failed: %v", err)})
		notifyFatal(cfg, fmt.Sprintf("Scenario: %s, LPID: %d", scenarioName, runID))
		return err
	}

	def, ok := scenario.Get(scenarioName)
	if !ok {
		return fatal(runlog.LoadConfigError, &scenario.LoadError{
			Scenario: scenarioName,
			Err:      fmt.Errorf("unknown scenario, registered: %v", scenario.Names()),
		})
	}

	settings, found, err := store.NewLoadParamsStore(pool).Resolve(ctx, scenarioName, testData, def.Defaults)
	if err != nil {
		// A broken settings row falls back to defaults; the run proceeds.
		logger.Warn("settings row unreadable, using defaults", "error", err)
		settings = def.Defaults
		settings.IsTestData = testData
	} else if !found {
		logger.Warn("no settings row found, using defaults")
	}
	if err := settings.ApplyArgs(args); err != nil {
		return fatal(runlog.LoadConfigError, err)
	}
	sink.Emit(ctx, runlog.Event{Code: runlog.LoadConfigSuccess, Status: runlog.StatusSuccess,
		Message:      fmt.Sprintf("settings resolved, endpoint=%s limit=%d", settings.EndpointURL, settings.Limit),
		LoadParamsID: settings.ID, DestinationTable: def.Table})

	missing, err := store.CheckSchema(ctx, pool, []string{"cfg.wb_api_load_params", "rawlog.loader_log", def.Table})
	if err != nil {
		logger.Warn("schema check failed", "error", err)
	} else if len(missing) > 0 {
		logger.Warn("schema objects missing", "tables", missing)
	}

	env := scenario.Env{DB: pool, Settings: settings, APIKey: cfg.API.Key, Logger: logger}
	pipeline, err := scenario.Resolve(scenarioName, env)
	if err != nil {
		return fatal(runlog.LoadConfigError, err)
	}
	sink.Emit(ctx, runlog.Event{Code: runlog.InitSuccess, Status: runlog.StatusSuccess,
		Message:      "pipeline initialized",
		LoadParamsID: settings.ID, DestinationTable: def.Table})

	run := store.RunHeader{RunID: runID, IsTestData: testData, CollectionStart: collectionStart}
	if err := pipeline.Run(ctx, sink, run); err != nil {
		// The pipeline already recorded the stage event; add the summary
		// classification unless validation covered it.
		if code, ok := classify(err); ok {
			sink.Emit(ctx, runlog.Event{Code: code, Status: runlog.StatusError, Message: err.Error(),
				LoadParamsID: settings.ID, DestinationTable: def.Table})
		}
		sink.Emit(ctx, runlog.Event{Code: runlog.AppFinished, Status: runlog.StatusError,
			Message:      fmt.Sprintf("loader failed: %v", err),
			LoadParamsID: settings.ID, DestinationTable: def.Table})
		notifyFatal(cfg, fmt.Sprintf("Scenario: %s, LPID: %d", scenarioName, runID))
		return err
	}

	sink.Emit(ctx, runlog.Event{Code: runlog.AppFinished, Status: runlog.StatusSuccess,
		Message:      "loader finished",
		LoadParamsID: settings.ID, DestinationTable: def.Table})
	return nil
}

// classify maps a pipeline failure to its summary event code. Validation
// failures need no summary; their stage event names the offending record.
func classify(err error) (runlog.Code, bool) {
	var apiErr *fetch.APIRequestError
	var pgErr *pgconn.PgError
	var procErr *scenario.DataProcessingError

	switch {
	case errors.As(err, &apiErr):
		return runlog.APIError, true
	case errors.As(err, &pgErr):
		return runlog.DBError, true
	case errors.As(err, &procErr):
		return "", false
	default:
		return runlog.UnexpectedError, true
	}
}

func notifyFatal(cfg *config.Config, message string) {
	if !cfg.Notify.Enabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Notify.Timeout)
	defer cancel()

	tg := notify.NewTelegram(cfg.Notify.Token, cfg.Notify.ChatID, cfg.Notify.Timeout)
	if err := tg.Notify(ctx, message); err != nil {
		slog.Warn("failure notification not delivered", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appinventory "github.com/minhngo-dev/stock-tally/internal/application/inventory"
	"github.com/minhngo-dev/stock-tally/internal/config"
	dominv "github.com/minhngo-dev/stock-tally/internal/domain/inventory"
	"github.com/minhngo-dev/stock-tally/internal/infrastructure/eventbus"
	"github.com/minhngo-dev/stock-tally/internal/infrastructure/journal"
	journalworker "github.com/minhngo-dev/stock-tally/internal/infrastructure/journal/worker"
	"github.com/minhngo-dev/stock-tally/internal/infrastructure/jsonfile"
	infraobs "github.com/minhngo-dev/stock-tally/internal/infrastructure/observability"
	"github.com/minhngo-dev/stock-tally/internal/infrastructure/observability/oteltrace"
	"github.com/minhngo-dev/stock-tally/internal/infrastructure/observability/prometrics"
	"github.com/minhngo-dev/stock-tally/internal/infrastructure/observability/zaplogger"
	"github.com/minhngo-dev/stock-tally/internal/observability"
	"github.com/minhngo-dev/stock-tally/internal/pkg/logging"
)

func main() {
	conf, err := config.Load(getenvDefault("CONFIG_FILE", "config.yml"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	baseLogger := logging.MustNewLogger(conf.Service.Name, conf.Service.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	tel := buildObservability(baseLogger, conf)
	systemLogger := tel.Logger().With(observability.F("component", "main"))

	bus := eventbus.New(tel.Logger())
	bus.Start(context.Background())

	store := dominv.NewStore()
	repo := jsonfile.NewRepository(conf.Inventory.DataFile)
	actionLog := journal.NewMemory()
	service := appinventory.NewService(store, repo, actionLog, bus, tel)

	mirror := journalworker.New(bus, journal.NewLoggerSink(tel.Logger()), tel)
	mirror.Start()

	metricsServer := startMetrics(conf.Metrics.Addr, systemLogger)

	runDemo(context.Background(), service, conf)

	bus.Stop(context.Background())
	systemLogger.Info("action_log_entries",
		observability.F("count", actionLog.Len()),
	)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			systemLogger.Error("metrics_server_shutdown_error",
				observability.F("error", err),
			)
		}
	}
}

// runDemo executes the fixed demonstration sequence: two items stocked (one via a
// signed-delta correction), removals from a present and an absent item, the quantity
// and low-stock queries, a save/load round-trip, and the final report. Errors are
// deliberately ignored; every failure path already logs and leaves the store in a
// safe state.
func runDemo(ctx context.Context, service *appinventory.Service, conf *config.Config) {
	_ = service.AddStock(ctx, "apple", 10)
	_ = service.AddStock(ctx, "banana", -2)
	_ = service.AddStock(ctx, "banana", 3)
	_ = service.RemoveStock(ctx, "apple", 3)
	_ = service.RemoveStock(ctx, "orange", 1)

	fmt.Println("Apple stock:", service.Quantity(ctx, "apple"))
	fmt.Println("Low items:", service.LowStock(ctx, conf.Inventory.LowStockThreshold))

	_ = service.Save(ctx)
	_ = service.Load(ctx)

	_ = service.Report(ctx, os.Stdout)
}

func buildObservability(baseLogger *zap.Logger, conf *config.Config) observability.Observability {
	logger := zaplogger.New(baseLogger)
	tracer := oteltrace.New(conf.Service.Name)

	registry := prometrics.New("stocktally", "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MInventoryOps: registry.Counter(
			string(observability.MInventoryOps),
			"Total number of inventory operations.",
			"operation", "outcome",
		),
		observability.MSnapshotOps: registry.Counter(
			string(observability.MSnapshotOps),
			"Total number of snapshot save/load operations.",
			"operation", "outcome",
		),
		observability.MJournalEntries: registry.Counter(
			string(observability.MJournalEntries),
			"Total number of journal entries mirrored from the event bus.",
			"event",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MInventoryOpDuration: registry.Histogram(
			string(observability.MInventoryOpDuration),
			"Duration of inventory operations in seconds.",
			prometheus.DefBuckets,
			"operation",
		),
	}

	return infraobs.New(tracer, logger, counters, histograms)
}

// startMetrics serves /metrics when an address is configured, so the demo's counters
// can be scraped while it runs. Returns nil when disabled.
func startMetrics(addr string, logger observability.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("metrics_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics_server_error",
				observability.F("error", err),
			)
		}
	}()

	return server
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"market-cache/src/config"
	"market-cache/src/logger"
)

// -----------------------------------------------------------------------------

func main() {
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, *configPath)
	stop()
	os.Exit(code)
}

// run wires and serves until ctx is done. It returns the process exit code;
// every deferred close has run by the time it returns.
func run(ctx context.Context, configPath string) int {
	// 1. Load config
	conf, err := config.NewConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return 1
	}

	// 2. Setup Logger
	logger.SetLevel(conf.LogLevel)
	appLogger := logger.NewLogger(conf.Name)

	// 3. Setup Components
	store, err := setupDatabase(conf.MConfig, appLogger)
	if err != nil {
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			appLogger.Error("Failed to close db: %v", err)
		}
	}()

	app := setupComponents(conf.MConfig, store, appLogger)

	// 4. Resolve the universe once so a bad table reference fails fast
	universe, err := app.Seeder.LoadUniverse(ctx)
	if err != nil {
		appLogger.Error("Failed to resolve universe: %v", err)
		return 1
	}
	appLogger.Info("Universe resolved: %d symbols", len(universe))

	// 5. Run servers until a signal arrives or one of them fails
	if err := runServers(ctx, app, conf, configPath, appLogger); err != nil {
		appLogger.Error("Shutdown with error: %v", err)
		return 1
	}
	appLogger.Info("Shutdown complete.")
	return 0
}

// Command seed walks the universe cursor from the command line, one batch at
// a time, without starting the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"market-cache/src/config"
	"market-cache/src/data_source/yahoo"
	"market-cache/src/logger"
	"market-cache/src/models"
	"market-cache/src/network"
	"market-cache/src/seeder"
	"market-cache/src/storage"
)

func main() {
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	start := flag.Int("start", 0, "universe index to start from")
	batchSize := flag.Int("batch-size", 0, "symbols per batch (0 uses the configured size)")
	clearFirst := flag.Bool("clear", false, "delete cached rows of each batch before fetching")
	once := flag.Bool("once", false, "seed a single batch and print its summary")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := seed(ctx, *configPath, *start, *batchSize, *clearFirst, *once)
	stop()
	os.Exit(code)
}

// seed opens the store, walks the cursor and returns the exit code once the
// store is closed.
func seed(ctx context.Context, configPath string, start, batchSize int, clearFirst, once bool) int {
	conf, err := config.NewConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return 1
	}
	logger.SetLevel(conf.LogLevel)
	appLogger := logger.NewLogger("seed")

	store, err := storage.NewPriceStore(conf.MConfig, appLogger.Named("Storage"))
	if err != nil {
		appLogger.Error("Failed to init db: %v", err)
		return 1
	}
	defer store.Close()
	if err := store.Initialize(); err != nil {
		appLogger.Error("Failed to migrate db: %v", err)
		return 1
	}

	networkManager := network.NewNetworkManager(conf.MConfig, appLogger.Named("NetworkManager"))
	quotes := yahoo.NewYahooFinanceSource(conf.MConfig, networkManager)
	sd := seeder.NewSeeder(conf.MConfig, store, quotes, appLogger.Named("Seeder"))

	if err := walkCursor(ctx, sd, os.Stdout, start, batchSize, clearFirst, once); err != nil {
		appLogger.Error("Seed stopped: %v", err)
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------

// walkCursor follows nextBatch and writes each summary to w as a JSON line.
func walkCursor(ctx context.Context, sd *seeder.Seeder, w io.Writer, start, batchSize int, clearFirst, once bool) error {
	enc := json.NewEncoder(w)
	cursor := &start
	for cursor != nil {
		req := models.MSeedRequest{BatchStart: cursor}
		if batchSize > 0 {
			req.BatchSize = &batchSize
		}
		if clearFirst {
			req.ClearFirst = &clearFirst
		}

		summary, err := sd.SeedBatch(ctx, req)
		if summary != nil {
			// an interrupted batch still reports how far it got
			if encErr := enc.Encode(summary); encErr != nil && err == nil {
				err = encErr
			}
		}
		if err != nil {
			return err
		}
		if once {
			return nil
		}
		cursor = summary.NextBatch
	}
	return nil
}

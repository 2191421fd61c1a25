package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/roms/cmd/utils/internal/commands"
	"github.com/aquamarinepk/aqm"
)

const (
	appName    = "roms-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config, err := aqm.LoadConfig("ROMS", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logger := aqm.NewLogger(config.GetStringOrDef("log.level", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]

	switch command {
	case "seed":
		if err := commands.Seed(ctx, config, logger); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		logger.Info("Seeding completed successfully")

	case "export-report":
		if err := commands.ExportReport(ctx, config, logger); err != nil {
			log.Fatalf("Report export failed: %v", err)
		}

	case "reset-db":
		if err := commands.ResetDB(ctx, config, logger); err != nil {
			log.Fatalf("Database reset failed: %v", err)
		}
		logger.Info("Database reset completed successfully")

	case "replay":
		if err := commands.Replay(ctx, config, logger); err != nil {
			log.Fatalf("Replay failed: %v", err)
		}

	case "watch":
		if err := commands.Watch(ctx, config, logger); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - ROMS utility commands

Usage:
  %s <command> [options]

Commands:
  seed           Apply the default menu and tables (ROMS_SEEDING_DEMO=true adds demo orders)
  export-report  Write the orders CSV report (ROMS_REPORT_FROM, ROMS_REPORT_TO, ROMS_REPORT_OUT)
  reset-db       Remove all data from the configured backend (USE WITH CAUTION)
  replay         Print signals retained in the NATS change log (ROMS_REPLAY_LIMIT)
  watch          Print live change signals from NATS
  version        Print version information
  help           Show this help message

Environment Variables:
  ROMS_DB_BACKEND     mongo or postgres (default: mongo)
  ROMS_DB_MONGO_URL   MongoDB connection URL (default: mongodb://localhost:27017)
  ROMS_DB_POSTGRES_URL  Postgres connection URL
  ROMS_NATS_URL       NATS URL (default: nats://localhost:4222)
  ROMS_LOG_LEVEL      Log level: debug, info, warn, error (default: info)

Examples:
  %s seed
  ROMS_REPORT_FROM=2026-10-01 ROMS_REPORT_TO=2026-10-19 %s export-report
  ROMS_DB_BACKEND=postgres %s reset-db

`, appName, appName, appName, appName, appName)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fanhunt/cmd"
	"fanhunt/config"
	"fanhunt/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// Check for migration subcommands
	if command == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	cmd.ConfigureLogging(config.Get())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	switch command {
	case "serve":
		if err := cmd.Run(ctx); err != nil {
			log.Fatal("Application error: ", err)
		}
	case "catalog":
		if err := handleCatalogCommand(ctx); err != nil {
			log.Fatal("Catalog error: ", err)
		}
	default:
		log.Fatalf("unknown command %q, usage: fanhunt [serve|migrate|catalog]", command)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: fanhunt migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleCatalogCommand(ctx context.Context) error {
	if len(os.Args) < 4 || os.Args[2] != "import" {
		return fmt.Errorf("usage: fanhunt catalog import <file>")
	}
	return cmd.ImportCatalog(ctx, os.Args[3])
}

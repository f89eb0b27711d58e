// Command idisctl is the operator CLI for IDIS: today it drives the
// Postgres schema migrations directly against IDIS_DATABASE_URL, mirroring
// slctl's flag-parsed subcommand dispatch without needing a running server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/albarami/idis/internal/platform/migrations"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	root := flag.NewFlagSet("idisctl", flag.ContinueOnError)
	root.SetOutput(io.Discard)
	dsnFlag := root.String("dsn", os.Getenv("IDIS_DATABASE_URL"), "PostgreSQL DSN (default env IDIS_DATABASE_URL)")
	if err := root.Parse(args); err != nil {
		return usageError(err)
	}

	remaining := root.Args()
	if len(remaining) == 0 {
		return usageError(errors.New("no command specified"))
	}

	dsn := strings.TrimSpace(*dsnFlag)
	if dsn == "" {
		return errors.New("dsn is required (pass -dsn or set IDIS_DATABASE_URL)")
	}

	switch remaining[0] {
	case "migrate":
		return handleMigrate(dsn, remaining[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError(fmt.Errorf("unknown command %q", remaining[0]))
	}
}

func handleMigrate(dsn string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: idisctl migrate up|down|version")
	}
	switch args[0] {
	case "up":
		if err := migrations.Apply(dsn); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		fmt.Println("migrations applied")
		return nil
	case "down":
		if err := migrations.Down(dsn); err != nil {
			return fmt.Errorf("roll back migrations: %w", err)
		}
		fmt.Println("migrations rolled back")
		return nil
	case "version":
		version, dirty, err := migrations.Version(dsn)
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migrate subcommand %q", args[0])
	}
}

func usageError(err error) error {
	printUsage()
	return err
}

func printUsage() {
	fmt.Println(`Usage:
  idisctl [-dsn <postgres-dsn>] migrate up
  idisctl [-dsn <postgres-dsn>] migrate down
  idisctl [-dsn <postgres-dsn>] migrate version`)
}

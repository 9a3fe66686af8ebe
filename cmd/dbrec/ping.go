package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dbrec/dbrec"
	"github.com/dbrec/dbrec/dialects/duckdb"
	"github.com/dbrec/dbrec/dialects/postgres"
	"github.com/dbrec/dbrec/dialects/sqlite"
)

var pingTimeout time.Duration

func init() {
	pingCmd.Flags().DurationVarP(&pingTimeout, "timeout", "t", 5*time.Second, "Timeout for the connectivity check")
}

var pingCmd = &cobra.Command{
	Use:   "ping [dsn]",
	Short: "Check database connectivity",
	Long: `Check that the database behind a DSN is accessible.

The DSN is taken from the argument, or from DBREC_DSN or DATABASE_URL
when no argument is given. A .env file in the working directory is
loaded first.

Examples:
  dbrec ping sqlite:app.db
  dbrec ping postgres:host=localhost;username=app;password=secret;database=app
  dbrec ping --timeout 10s
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := resolveDSN(args)
		if err != nil {
			return err
		}

		dialector, err := dialectorFor(dsn)
		if err != nil {
			return err
		}

		db, err := dbrec.Open(dialector, nil)
		if err != nil {
			return err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("pinging %s database: %w", dialector.Name(), err)
		}

		color.Green("✅ %s database is reachable", dialector.Name())
		return nil
	},
}

func resolveDSN(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	// the .env file is optional
	_ = godotenv.Load()

	if dsn := os.Getenv("DBREC_DSN"); dsn != "" {
		return dsn, nil
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}
	return "", fmt.Errorf("no DSN given, pass one or set DBREC_DSN")
}

func dialectorFor(dsn string) (dbrec.Dialector, error) {
	parsed, err := dbrec.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	switch parsed.Driver {
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql", "pgx":
		return postgres.Open(dsn), nil
	case "duckdb":
		return duckdb.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported driver %q, expected sqlite, postgres or duckdb", parsed.Driver)
}

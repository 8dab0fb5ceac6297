// Command tailorctl runs administrative tasks against a tailorhub
// database: applying schema migrations and seeding reference data.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ratheeshkm/tailorhub/pkg/clothtypes"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
	"github.com/ratheeshkm/tailorhub/pkg/storage/postgres"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	databaseURL := flag.String("database-url", os.Getenv("TAILOR_POSTGRES_URL"), "Postgres connection URL")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall command timeout")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	if *databaseURL == "" {
		log.Fatal("database URL required: pass -database-url or set TAILOR_POSTGRES_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := postgres.Connect(ctx, postgres.ConnectionConfig{URL: *databaseURL})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	switch cmd := flag.Arg(0); cmd {
	case "migrate":
		runMigrate(ctx, log, db)
	case "seed":
		runSeed(ctx, log, db, flag.Arg(1))
	default:
		log.Errorf("unknown command %q", cmd)
		usage()
		os.Exit(2)
	}
}

func runMigrate(ctx context.Context, log *logrus.Logger, db *sql.DB) {
	log.Info("applying migrations")
	if err := postgres.RunMigrations(ctx, db); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}
	log.WithField("migrations", len(postgres.GetMigrations())).Info("schema up to date")
}

// runSeed populates the cloth type reference list. seedFile may be empty
// to use the built-in defaults.
func runSeed(ctx context.Context, log *logrus.Logger, db *sql.DB, seedFile string) {
	logger := observability.NewLogger(observability.WarnLevel, os.Stderr)
	store := clothtypes.NewStore(db, logger)

	if err := store.SeedFromFile(ctx, seedFile); err != nil {
		log.WithError(err).Fatal("seeding failed")
	}

	types, err := store.List(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to list cloth types after seeding")
	}
	log.WithField("cloth_types", len(types)).Info("seeding complete")
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: tailorctl [flags] <command>

commands:
  migrate            apply pending schema migrations
  seed [file.yaml]   seed the cloth type list (defaults when no file given)

flags:
`)
	flag.PrintDefaults()
}

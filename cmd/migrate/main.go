package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/auth-service/internal/config"
	"github.com/Rrens/auth-service/internal/repository/postgres"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	down := flag.Bool("down", false, "roll back every applied migration")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbCfg := cfg.Storage.Postgres
	log.Info().
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("source", dbCfg.MigrationsURL).
		Msg("Connecting to database")

	if *down {
		err = postgres.RollbackMigrations(dbCfg.DSN(), dbCfg.MigrationsURL)
	} else {
		err = postgres.RunMigrations(dbCfg.DSN(), dbCfg.MigrationsURL)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

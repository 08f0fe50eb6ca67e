package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"meetingpoint-service/internal/adapters/repositories"
	"meetingpoint-service/internal/platform/db"
)

// dbtool initializes the search-history schema. Useful for environments
// where the server runs without DDL privileges.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	url := os.Getenv("MEETPOINT_DATABASE_URL")
	if strings.TrimSpace(url) == "" {
		log.Fatal().Msg("MEETPOINT_DATABASE_URL is required")
	}

	sqlDB, err := db.Open(url)
	if err != nil {
		log.Fatal().Err(err).Msg("open postgres")
	}
	defer sqlDB.Close()

	if err := repositories.InitSchema(sqlDB); err != nil {
		log.Fatal().Err(err).Msg("init schema")
	}

	log.Info().Msg("search history schema ready")
}

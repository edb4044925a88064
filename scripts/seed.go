package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/feedbackform/internal/adapters/database"
	"github.com/zatekoja/feedbackform/internal/application/services"
	"github.com/zatekoja/feedbackform/internal/domain/entities"
	"github.com/zatekoja/feedbackform/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/feedbackform/internal/infrastructure/observability"
	"github.com/zatekoja/feedbackform/pkg/config"
)

var sampleEntries = []entities.EntryFields{
	{Name: "Ana", Email: "ana@example.com", Age: json.RawMessage("30"), Message: "Loved the workshop."},
	{Name: "Bo", Email: "bo@example.com", Age: json.RawMessage("42"), Message: "Room was too cold."},
	{Name: "Chidi", Email: "chidi@example.com", Age: json.RawMessage(`"27"`), Message: "More hands-on time please."},
	{Name: "Dara", Email: "dara@example.com", Age: json.RawMessage("35"), Message: "Great speakers."},
}

// Seeds the Postgres entry store with sample feedback.
// RESET_DB=true empties the entries table first.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("feedback-seed", cfg.App.Env, cfg.App.LogLevel)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	adapter := database.NewEntryAdapter(pgClient)
	if err := adapter.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare entries table")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating entries before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, "TRUNCATE TABLE entries RESTART IDENTITY"); err != nil {
			log.Fatal().Err(err).Msg("Failed to truncate entries")
		}
	}

	service := services.NewEntryService(adapter)
	for _, fields := range sampleEntries {
		entry, err := service.Create(ctx, fields)
		if err != nil {
			log.Fatal().Err(err).Str("name", fields.Name).Msg("Failed to seed entry")
		}
		log.Info().Str("id", entry.ID).Str("name", entry.Name).Msg("Seeded entry")
	}

	count, err := adapter.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count entries")
	}
	log.Info().Int("entries", count).Msg("Seeding complete")
}

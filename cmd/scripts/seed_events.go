package main

import (
	"context"
	"log"
	"time"

	"github.com/godshand/gods-hand-backend/internal/config"
	"github.com/godshand/gods-hand-backend/internal/models"
	mongorepo "github.com/godshand/gods-hand-backend/internal/repositories/mongodb"
	"github.com/godshand/gods-hand-backend/internal/services"
	"github.com/godshand/gods-hand-backend/pkg/mongodb"
	"github.com/joho/godotenv"
)

// Seeds demo disaster events and an operator account for local development.
// One event is created with its lottery window already expired so the next
// scheduler pass (or timer load) executes it immediately; the other is fresh.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	eventRepo := mongorepo.NewEventRepository(db)
	adminRepo := mongorepo.NewAdminUserRepository(db)

	ctx := context.Background()
	now := time.Now()

	events := []*models.DisasterEvent{
		{
			Title:                   "Test Earthquake Relief Fund",
			Description:             "Seeded event with an already-expired lottery window",
			DisasterLocation:        "Kathmandu, Nepal",
			EstimatedAmountRequired: 250000,
			Source:                  "seed-script",
			DisasterHash:            "0x7465737420656172746871756b652072656c6965660000000000000000000001",
			LotteryDurationHours:    72,
			CreatedAt:               now.Add(-73 * time.Hour),
			UpdatedAt:               now.Add(-73 * time.Hour),
		},
		{
			Title:                   "Test Flood Relief Fund",
			Description:             "Seeded event with a fresh lottery window",
			DisasterLocation:        "Kerala, India",
			EstimatedAmountRequired: 100000,
			Source:                  "seed-script",
			DisasterHash:            "0x7465737420666c6f6f642072656c696566000000000000000000000000000002",
			LotteryDurationHours:    72,
			CreatedAt:               now,
			UpdatedAt:               now,
		},
	}

	for _, event := range events {
		if err := eventRepo.Create(ctx, event); err != nil {
			log.Fatalf("Failed to create event %q: %v", event.Title, err)
		}
		log.Printf("Created event %q (id=%s, createdAt=%s)", event.Title, event.ID.Hex(), event.CreatedAt.Format(time.RFC3339))
	}

	authService := services.NewAuthService(adminRepo, cfg)
	admin, err := authService.CreateAdmin(ctx, "admin@godshand.local", "changeme", "admin")
	if err != nil {
		log.Printf("Warning: failed to create operator account (may already exist): %v", err)
	} else {
		log.Printf("Created operator account %s (id=%s)", admin.Email, admin.ID.Hex())
	}

	log.Println("Seed data created successfully")
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/godshand/gods-hand-backend/internal/config"
	mongorepo "github.com/godshand/gods-hand-backend/internal/repositories/mongodb"
	"github.com/godshand/gods-hand-backend/internal/services"
	"github.com/godshand/gods-hand-backend/pkg/lotterycontract"
	"github.com/godshand/gods-hand-backend/pkg/mongodb"
	"github.com/joho/godotenv"
)

// One-shot lottery check for running under external cron or a scheduled
// job runner. Prints the pass summary as JSON and exits nonzero when the
// pass itself could not run (per-event failures are part of the summary).
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	db := mongoClient.Database(cfg.MongoDB.Database)
	eventRepo := mongorepo.NewEventRepository(db)

	gateway, err := lotterycontract.NewEVMGateway(cfg.Chain.RPCURL, cfg.Chain.ContractAddress, cfg.Chain.PrivateKey, cfg.Chain.ChainID)
	if err != nil {
		log.Fatalf("Failed to set up contract gateway: %v", err)
	}

	lotteryService := services.NewLotteryService(eventRepo, gateway)
	schedulerService := services.NewSchedulerService(eventRepo, lotteryService)

	summary, err := schedulerService.RunScheduledCheck(context.Background())
	if err != nil {
		log.Fatalf("Lottery check failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		log.Fatalf("Failed to encode summary: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godshand/gods-hand-backend/api/routes"
	"github.com/godshand/gods-hand-backend/internal/config"
	"github.com/godshand/gods-hand-backend/internal/handlers"
	mongorepo "github.com/godshand/gods-hand-backend/internal/repositories/mongodb"
	"github.com/godshand/gods-hand-backend/internal/services"
	"github.com/godshand/gods-hand-backend/pkg/lotterycontract"
	"github.com/godshand/gods-hand-backend/pkg/mongodb"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	// Environment variables from .env take effect before viper reads them
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	eventRepo := mongorepo.NewEventRepository(db)
	adminRepo := mongorepo.NewAdminUserRepository(db)

	gateway, err := lotterycontract.NewEVMGateway(cfg.Chain.RPCURL, cfg.Chain.ContractAddress, cfg.Chain.PrivateKey, cfg.Chain.ChainID)
	if err != nil {
		log.Fatalf("Failed to set up contract gateway: %v", err)
	}

	lotteryService := services.NewLotteryService(eventRepo, gateway)
	schedulerService := services.NewSchedulerService(eventRepo, lotteryService)
	timerService := services.NewLotteryTimerService(eventRepo, lotteryService)
	eventService := services.NewEventService(eventRepo)
	authService := services.NewAuthService(adminRepo, cfg)

	handlerDeps := routes.HandlerDependencies{
		AuthHandler:    handlers.NewAuthHandler(authService),
		EventHandler:   handlers.NewEventHandler(eventService, timerService),
		LotteryHandler: handlers.NewLotteryHandler(eventService, schedulerService, timerService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	// Arm in-process timers from the stored lottery windows. Expired
	// lotteries execute during this load.
	go func() {
		if err := timerService.Start(context.Background()); err != nil {
			slog.Error("Failed to start lottery timer service", "error", err)
		}
	}()

	// Periodic batch pass, belt-and-braces alongside the timers. Both go
	// through the same conditional claim, so overlap is harmless. Each pass
	// is bounded by the check interval so a stuck execution cannot stall
	// every subsequent pass.
	tickerDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Lottery.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Lottery.CheckInterval)
				if _, err := schedulerService.RunScheduledCheck(ctx); err != nil {
					slog.Error("Scheduled lottery check failed", "error", err)
				}
				cancel()
			case <-tickerDone:
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	slog.Info("Server starting", "port", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	close(tickerDone)
	timerService.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	slog.Info("Server exiting")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/api"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/config"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/loader"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/model"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/view"
	"github.com/pvasilakos/Portfolio-Tracker-Backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Load the transaction feed
	transactions, err := loader.LoadTransactions(cfg.Data.TransactionsPath)
	if err != nil {
		log.Fatalf("Failed to load transactions: %v", err)
	}

	log.Printf("Loaded %d transactions from %s", len(transactions), cfg.Data.TransactionsPath)

	// Market data collaborators
	client := yahoo.NewFinanceClient()
	priceService := yahoo.NewPriceService(client, cfg.Quotes.TTL)
	rateService := yahoo.NewRateService(client)

	// One portfolio view per asset category present in the feed. Views are
	// independent, so they replay their batches concurrently; each ledger
	// itself stays single-threaded.
	categories := make(map[model.AssetType]bool)
	for _, tx := range transactions {
		categories[tx.AssetType] = true
	}

	views := make(map[model.AssetType]*view.PortfolioView, len(categories))
	var mu sync.Mutex
	var g errgroup.Group
	for assetType := range categories {
		assetType := assetType
		g.Go(func() error {
			v, err := view.New(transactions, assetType, cfg.Portfolio.BaseCurrency, rateService, priceService)
			if err != nil {
				return err
			}

			mu.Lock()
			views[assetType] = v
			mu.Unlock()

			log.Printf("Built %s portfolio view", assetType)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Failed to build portfolio views: %v", err)
	}

	// Create router
	router := api.NewRouter(views, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

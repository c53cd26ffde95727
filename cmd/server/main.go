package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phonescout/phonescout/internal/api"
	"github.com/phonescout/phonescout/internal/config"
	"github.com/phonescout/phonescout/internal/core"
	"github.com/phonescout/phonescout/internal/llm"
	"github.com/phonescout/phonescout/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for catalog seeding
	seedFlag := flag.String("seed", "", "Seed the catalog from the given JSON file and exit")
	flag.Parse()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Handle catalog seeding if flag is set
	if *seedFlag != "" {
		log.Printf("Seeding catalog from %s...", *seedFlag)
		numSeeded, err := dbStore.SeedFromFile(*seedFlag)
		if err != nil {
			log.Fatalf("Catalog seeding failed: %v", err)
		}
		log.Printf("Catalog seeding complete. Inserted %d phones. Exiting.", numSeeded)
		os.Exit(0)
	}

	// Initialize providers in priority order; the mock provider is the
	// terminal fallback when no real backend is configured.
	providers := buildProviders()

	cfg := core.DefaultLLMConfig()
	cfg.FailureThreshold = config.AppConfig.BreakerFailureThreshold
	cfg.BreakerTimeout = time.Duration(config.AppConfig.BreakerTimeoutSeconds) * time.Second
	cfg.MaxAttempts = config.AppConfig.LLMMaxAttempts
	cfg.RetryMinWait = time.Duration(config.AppConfig.LLMRetryMinWaitSeconds) * time.Second
	cfg.RetryMaxWait = time.Duration(config.AppConfig.LLMRetryMaxWaitSeconds) * time.Second
	cfg.RequestTimeout = time.Duration(config.AppConfig.LLMTimeoutSeconds) * time.Second

	llmService := core.NewLLMService(providers, cfg)
	defer llmService.Close()

	searchService := core.NewSearchService(dbStore)
	safetyService := core.NewSafetyService(config.AppConfig.MaxQueryLength, config.AppConfig.BlockedKeywords)
	chatService := core.NewChatService(llmService, searchService, safetyService, config.AppConfig.MaxSearchResults)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService, searchService, llmService, dbStore,
		config.AppConfig.MaxSearchResults, config.AppConfig.MaxQueryLength)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}

func buildProviders() []llm.Provider {
	var providers []llm.Provider

	if config.AppConfig.GoogleAPIKey != "" {
		gemini, err := llm.NewGeminiProvider(context.Background(), config.AppConfig.GoogleAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			log.Printf("Failed to initialize Gemini provider: %v", err)
		} else {
			providers = append(providers, gemini)
		}
	}
	if config.AppConfig.OpenAIAPIKey != "" {
		providers = append(providers, llm.NewOpenAIProvider(config.AppConfig.OpenAIAPIKey, config.AppConfig.OpenAIModel))
	}
	if config.AppConfig.AnthropicAPIKey != "" {
		providers = append(providers, llm.NewAnthropicProvider(config.AppConfig.AnthropicAPIKey, config.AppConfig.AnthropicModel))
	}

	if len(providers) == 0 {
		providers = append(providers, llm.MockProvider{})
	}
	return providers
}

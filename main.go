package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaot623/gogo/chatbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatbot/internal/config"
	"github.com/xiaot623/gogo/chatbot/internal/hub"
	"github.com/xiaot623/gogo/chatbot/internal/repository"
	"github.com/xiaot623/gogo/chatbot/internal/service"
	server "github.com/xiaot623/gogo/chatbot/internal/transport/http"
	"github.com/xiaot623/gogo/chatbot/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting chatbot...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Storage: %s", cfg.StorageBackend)
	log.Printf("Default provider: %s", cfg.DefaultProvider)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize store
	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize providers
	providers, err := llm.NewProviders(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize providers: %v", err)
	}

	// Initialize reply policy
	replies, err := policy.NewReplyEngineFromFile(ctx, cfg.ReplyPolicyFile)
	if err != nil {
		log.Fatalf("Failed to initialize reply policy: %v", err)
	}

	// Start broadcast hub
	h := hub.NewHub()
	go h.Run(ctx)

	svc := service.New(db, providers, replies, h, cfg)
	e := server.NewServer(svc, h, cfg)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Chat API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down chatbot...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}
	stop()

	log.Println("Chatbot stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("Firestore project: %s", cfg.FirestoreProject)
		return repository.NewFirestoreStore(ctx, cfg.FirestoreProject)
	case "sqlite", "":
		log.Printf("Database: %s", cfg.DatabaseURL)
		return repository.NewSQLiteStore(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eduardofloriani/serverless-ecommerce/internal/api"
	"github.com/eduardofloriani/serverless-ecommerce/internal/audit"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/config"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/postgres"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/rabbitmq"
	rediskv "github.com/eduardofloriani/serverless-ecommerce/pkg/redis"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/store"

	_ "github.com/eduardofloriani/serverless-ecommerce/docs"
)

// @title           E-Commerce Catalog & Ordering API
// @version         1.0
// @description     A RESTful API for products and orders. Every successful mutation records an expiring audit event in the event store.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[API] Starting api-service...")

	cfg := config.Load()

	// Entity store backend
	var kv store.KV
	switch cfg.StoreBackend {
	case "memory":
		log.Println("[API] Using in-memory entity store")
		kv = store.NewMemory()
	case "postgres":
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		if err := postgres.RunMigrations(db); err != nil {
			log.Fatalf("[API] Failed to run migrations: %v", err)
		}
		kv = postgres.NewStore(db)
	default:
		log.Fatalf("[API] Unknown STORE_BACKEND: %s", cfg.StoreBackend)
	}

	// Audit transport: either append straight to the event store, or publish
	// to RabbitMQ and let the audit consumer do the append.
	var sink audit.Sink
	switch cfg.AuditTransport {
	case "direct":
		client, err := rediskv.Connect(cfg.RedisAddr)
		if err != nil {
			log.Fatalf("[API] Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		sink = audit.StoreSink{Store: rediskv.NewEventStore(client)}
	case "amqp":
		rmqConn, err := rabbitmq.Connect(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to RabbitMQ: %v", err)
		}
		defer rmqConn.Close()

		publisher, err := rabbitmq.NewPublisher(rmqConn)
		if err != nil {
			log.Fatalf("[API] Failed to create publisher: %v", err)
		}
		defer publisher.Close()
		sink = audit.QueueSink{Publisher: publisher}
	default:
		log.Fatalf("[API] Unknown AUDIT_TRANSPORT: %s", cfg.AuditTransport)
	}

	recorder := audit.NewRecorder(sink)
	recorder.Start()

	// Setup handlers and router
	productHandler := api.NewProductHandler(kv, recorder, cfg.AdminEmail)
	orderHandler := api.NewOrderHandler(kv, recorder)
	router := api.NewRouter(productHandler, orderHandler)

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Listening on port %s", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[API] Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[API] Server forced to shutdown: %v", err)
	}

	// Flush any audit entries still in the outbox.
	recorder.Close()
	log.Println("[API] Server exited gracefully")
}

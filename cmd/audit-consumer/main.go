package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/eduardofloriani/serverless-ecommerce/internal/audit"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/config"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/rabbitmq"
	rediskv "github.com/eduardofloriani/serverless-ecommerce/pkg/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[Audit] Starting audit-consumer...")

	cfg := config.Load()

	// Connect to Redis (the event store)
	client, err := rediskv.Connect(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("[Audit] Failed to connect to Redis: %v", err)
	}
	defer client.Close()

	// Connect to RabbitMQ
	rmqConn, err := rabbitmq.Connect(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("[Audit] Failed to connect to RabbitMQ: %v", err)
	}
	defer rmqConn.Close()

	// Create consumer
	consumer := audit.NewConsumer(rediskv.NewEventStore(client))

	consumerCfg := rabbitmq.ConsumerConfig{
		QueueName:    "audit.events",
		DLQName:      "dlq.audit.events",
		RoutingKeys:  []string{"product.*", "order.*"},
		ConsumerName: "audit-consumer",
	}

	if err := rabbitmq.SetupConsumer(rmqConn, consumerCfg, consumer.HandleMessage); err != nil {
		log.Fatalf("[Audit] Failed to setup consumer: %v", err)
	}

	log.Println("[Audit] Consumer is running. Waiting for messages...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Audit] Shutting down...")
}

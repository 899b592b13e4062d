package redis

import (
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/adiretotes/store-api/pkg/global"
)

// Shared client. Pub/sub subscriptions are long-lived, so connections
// are pooled here instead of opened per call.
var client *redis.Client

func Init() {
	client = redis.NewClient(&redis.Options{
		Addr:     global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		Password: global.GetEnvOrDefault("REDIS_PASSWORD", ""),
		DB:       0,
		Protocol: 2,
	})

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	log.Println("Connected to Redis successfully")
}

func Client() *redis.Client {
	return client
}

// SetClient swaps the client; used by tests running against a local
// instance.
func SetClient(c *redis.Client) {
	client = c
}

package cache

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	config "github.com/pulsegym/gym_membership/configs"
)

var Client *redis.Client

const webhookEventTTL = 24 * time.Hour

func ConnectRedis() {
	addr := config.Config("REDIS_ADDR")
	if addr == "" {
		log.Println("⚠️ REDIS_ADDR not set, webhook deduplication cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis not reachable (%v), webhook deduplication cache disabled", err)
		return
	}

	Client = client
	log.Println("✅ Redis connected successfully")
}

// MarkWebhookEventProcessed records a gateway event id and reports
// whether this delivery is the first one. When the cache is down it
// reports first=true: the conditional payment transition is idempotent
// on its own, so dedup here only saves work and log noise.
func MarkWebhookEventProcessed(ctx context.Context, eventID string) bool {
	if Client == nil {
		return true
	}

	first, err := Client.SetNX(ctx, "webhook:event:"+eventID, 1, webhookEventTTL).Result()
	if err != nil {
		log.Printf("⚠️ Redis SETNX failed for event %s: %v", eventID, err)
		return true
	}
	return first
}

// UnmarkWebhookEvent releases an event id whose processing failed so the
// gateway's redelivery is not swallowed by the dedup check.
func UnmarkWebhookEvent(ctx context.Context, eventID string) {
	if Client == nil {
		return
	}

	if err := Client.Del(ctx, "webhook:event:"+eventID).Err(); err != nil {
		log.Printf("⚠️ Redis DEL failed for event %s: %v", eventID, err)
	}
}

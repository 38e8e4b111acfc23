package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

func availabilityKey(eventId uint) string {
	return fmt.Sprintf("event:%d:available", eventId)
}

// CacheAvailability stores the available-seat count for an event. The value
// is only a fast-path hint; the seat map stays authoritative.
func CacheAvailability(ctx context.Context, eventId uint, count int64) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.SetEx(ctx, availabilityKey(eventId), count, 5*time.Minute).Err(); err != nil {
		log.Printf("[redis] Failed to cache availability for event %d: %s\n", eventId, err.Error())
	}
}

// GetCachedAvailability returns (count, true) on a cache hit.
func GetCachedAvailability(ctx context.Context, eventId uint) (int64, bool) {
	rd := GetRedisClient()
	if rd == nil {
		return 0, false
	}
	val, err := rd.Get(ctx, availabilityKey(eventId)).Int64()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		log.Printf("[redis] Error reading availability for event %d: %s\n", eventId, err.Error())
		return 0, false
	}
	return val, true
}

// InvalidateAvailability drops the cached count after a seat-map mutation.
func InvalidateAvailability(ctx context.Context, eventId uint) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(ctx, availabilityKey(eventId)).Err(); err != nil {
		log.Printf("[redis] Failed to invalidate availability for event %d: %s\n", eventId, err.Error())
	}
}

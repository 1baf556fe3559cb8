package database

import (
	"context"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Redis stays nil when REDIS_ADDR is unset; callers treat that as "no cache".
var Redis *redis.Client

func ConnectRedis() {
	addr := config.Config("REDIS_ADDR")
	if addr == "" {
		log.Warn("REDIS_ADDR not set, stats cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorf("🔥 Failed to reach redis at %s, stats cache disabled: %v", addr, err)
		return
	}

	Redis = client
	log.Info("✅ Redis connected successfully")
}

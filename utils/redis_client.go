package utils

import (
	"context"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yatube/yatube/config"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedis returns the shared Redis client, or nil when the server was
// unreachable at first use. A nil result tells callers to run on their
// in-process fallback instead.
func GetRedis() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.Get()
		addr := net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort))
		client := redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			if Sugar != nil {
				Sugar.Warnf("redis unreachable at %s, using in-process stores: %v", addr, err)
			} else {
				log.Printf("redis unreachable at %s, using in-process stores: %v", addr, err)
			}
			_ = client.Close()
			return
		}
		redisClient = client
	})
	return redisClient
}

package realtime

import (
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// NewRedis creates a new Redis client.
func NewRedis(addr, password string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	log.Infof("redis client created (addr: %s)", addr)
	return rdb
}

package redis

import (
	"github.com/redis/go-redis/v9"
)

// NewClient connects to the redis instance at addr (host:port).
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

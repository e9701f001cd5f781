package redis

import (
	"fmt"

	"staygo/config"

	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

func SetupClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// SetupRedsync builds the distributed mutex factory on top of the shared client.
// Booking uses it to serialize check-then-insert per property and room.
func SetupRedsync(client *redis.Client) *redsync.Redsync {
	pool := redsyncredis.NewPool(client)
	return redsync.New(pool)
}

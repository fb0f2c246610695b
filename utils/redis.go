package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

// InitRedis connects and pings redis.
func InitRedis(url, password string, db int) error {
	rdb = redis.NewClient(&redis.Options{
		Addr:     url,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return err
	}

	log.Infow("redis connected", "addr", url)
	return nil
}

func GetRedis() *redis.Client {
	return rdb
}

func CloseRedis() error {
	if rdb != nil {
		return rdb.Close()
	}
	return nil
}

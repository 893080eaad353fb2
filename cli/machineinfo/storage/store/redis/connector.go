package redis

/*
Settings of the Redis sink:

host = "localhost"
port = "6379"
password = ""
db = "0"
key = "machineinfo:export"
mode = "list"       list appends with RPUSH, publish sends to the channel
*/

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	modeList    = "list"
	modePublish = "publish"
)

const writeTimeout = 5 * time.Second

type writer interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

type Connector struct {
	client writer
	config map[string]string
	key    string
	mode   string
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("storage settings are missing")
	}
	c.config = cfg

	c.key = cfg["key"]
	if c.key == "" {
		c.key = "machineinfo:export"
	}
	c.mode = cfg["mode"]
	if c.mode == "" {
		c.mode = modeList
	}
	if c.mode != modeList && c.mode != modePublish {
		return fmt.Errorf("unknown Redis mode %q", c.mode)
	}

	db := 0
	if cfg["db"] != "" {
		var err error
		if db, err = strconv.Atoi(cfg["db"]); err != nil {
			return fmt.Errorf("invalid Redis db %q: %w", cfg["db"], err)
		}
	}

	host, port := cfg["host"], cfg["port"]
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: cfg["password"],
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("Redis is unavailable: %w", err)
	}

	c.client = client
	return nil
}

func (c *Connector) Save(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("record is nil")
	}

	payload, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	switch c.mode {
	case modePublish:
		err = c.client.Publish(ctx, c.key, payload).Err()
	default:
		err = c.client.RPush(ctx, c.key, payload).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to write record to %s: %w", c.key, err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

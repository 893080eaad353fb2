package tarantool_queue

/*
Settings of the Tarantool queue sink:

host = "localhost"
port = "3301"
user = "user"
password = "pass"
max_recons = 5
timeout = 1
reconnect = 1
queue = "machineinfo"
*/

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tarantool/go-tarantool"
	"github.com/tarantool/go-tarantool/queue"
)

type Connector struct {
	connection *tarantool.Connection
	queue      queue.Queue
	config     map[string]string
}

var intDefaults = map[string]int{
	"max_recons": 5,
	"timeout":    1,
	"reconnect":  1,
}

func intOption(cfg map[string]string, name string) (int, error) {
	if cfg[name] == "" {
		return intDefaults[name], nil
	}
	v, err := strconv.Atoi(cfg[name])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, cfg[name], err)
	}
	return v, nil
}

func options(cfg map[string]string) (tarantool.Opts, error) {
	maxRecons, err := intOption(cfg, "max_recons")
	if err != nil {
		return tarantool.Opts{}, err
	}
	timeout, err := intOption(cfg, "timeout")
	if err != nil {
		return tarantool.Opts{}, err
	}
	reconnect, err := intOption(cfg, "reconnect")
	if err != nil {
		return tarantool.Opts{}, err
	}
	return tarantool.Opts{
		Timeout:       time.Duration(timeout) * time.Second,
		Reconnect:     time.Duration(reconnect) * time.Second,
		MaxReconnects: uint(maxRecons),
		User:          cfg["user"],
		Pass:          cfg["password"],
	}, nil
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("storage settings are missing")
	}
	if cfg["queue"] == "" {
		return fmt.Errorf("Tarantool queue is not set")
	}

	c.config = cfg
	host, port := c.config["host"], c.config["port"]
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "3301"
	}
	conStr := host + ":" + port

	opts, err := options(cfg)
	if err != nil {
		return err
	}

	c.connection, err = tarantool.Connect(conStr, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to Tarantool: %w", err)
	}
	c.queue = queue.New(c.connection, c.config["queue"])

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

	if _, err = c.queue.Put(payload); err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}

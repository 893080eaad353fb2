package nats

/*
Settings of the NATS sink:

servers = "nats://localhost:4222"
topic = "machineinfo.export"
user = ""
password = ""
*/

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

type Connector struct {
	connection *nats.Conn
	config     map[string]string
	topic      string
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("storage settings are missing")
	}
	c.config = cfg

	c.topic = cfg["topic"]
	if c.topic == "" {
		return fmt.Errorf("NATS topic is not set")
	}

	servers := cfg["servers"]
	if servers == "" {
		servers = nats.DefaultURL
	}

	opts := []nats.Option{nats.Name("machineinfo-export")}
	if cfg["user"] != "" {
		opts = append(opts, nats.UserInfo(cfg["user"], cfg["password"]))
	}

	if c.connection, err = nats.Connect(servers, opts...); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
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

	if err = c.connection.Publish(c.topic, payload); err != nil {
		return fmt.Errorf("failed to publish record: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	if err := c.connection.Drain(); err != nil {
		c.connection.Close()
		return err
	}
	return nil
}

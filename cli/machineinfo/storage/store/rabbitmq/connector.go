package rabbitmq

/*
Settings of the RabbitMQ sink:

host = "localhost"
port = "5672"
user = "guest"
password = "guest"
exchange = "machineinfo"
exchange_type = "fanout"
key = "machineinfo.export"
content_type = "application/json"   defaults to the MIME type of export.encoding
*/

import (
	"fmt"

	"github.com/streadway/amqp"
)

type Connector struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	config     map[string]string
}

func valueOr(cfg map[string]string, name, fallback string) string {
	if v := cfg[name]; v != "" {
		return v
	}
	return fallback
}

func url(cfg map[string]string) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		valueOr(cfg, "user", "guest"), valueOr(cfg, "password", "guest"),
		valueOr(cfg, "host", "localhost"), valueOr(cfg, "port", "5672"))
}

func publishing(cfg map[string]string, payload []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  valueOr(cfg, "content_type", "application/json"),
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	}
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("storage settings are missing")
	}
	c.config = cfg

	if cfg["exchange"] == "" {
		return fmt.Errorf("RabbitMQ exchange is not set")
	}

	if c.connection, err = amqp.Dial(url(cfg)); err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	if c.channel, err = c.connection.Channel(); err != nil {
		c.connection.Close()
		return fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	err = c.channel.ExchangeDeclare(cfg["exchange"], valueOr(cfg, "exchange_type", amqp.ExchangeFanout), true, false, false, false, nil)
	if err != nil {
		c.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", cfg["exchange"], err)
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

	err = c.channel.Publish(c.config["exchange"], c.config["key"], false, false, publishing(c.config, payload))
	if err != nil {
		return fmt.Errorf("failed to publish record: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}

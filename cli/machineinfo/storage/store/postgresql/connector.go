package postgresql

/*
Settings of the export table in PostgreSQL. Every key is optional:

host = "localhost"
port = "5432"
user = "postgres"
password = "postgres"
database = "machineinfo"
table = "machine_info_export"
payload_field = "payload"
sslmode = "disable"
*/

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

var defaults = map[string]string{
	"host":          "localhost",
	"port":          "5432",
	"user":          "postgres",
	"database":      "machineinfo",
	"table":         "machine_info_export",
	"payload_field": "payload",
	"sslmode":       "disable",
}

type Connector struct {
	connection *sql.DB
	config     map[string]string
	insert     string
}

func option(cfg map[string]string, name string) string {
	if v := cfg[name]; v != "" {
		return v
	}
	return defaults[name]
}

func (c *Connector) Init(cfg map[string]string) error {
	var (
		err error
	)
	if cfg == nil {
		return fmt.Errorf("storage settings are missing")
	}
	c.config = cfg
	connStr := fmt.Sprintf("dbname=%s host=%s port=%s user=%s password=%s sslmode=%s",
		option(cfg, "database"), option(cfg, "host"), option(cfg, "port"), option(cfg, "user"), cfg["password"], option(cfg, "sslmode"))
	if c.connection, err = sql.Open("postgres", connStr); err != nil {
		return fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	if err = c.connection.Ping(); err != nil {
		return fmt.Errorf("PostgreSQL is unavailable: %w", err)
	}

	c.insert = insertQuery(cfg)
	log.Debugf("PostgreSQL export query: %s", c.insert)
	return err
}

func insertQuery(cfg map[string]string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1)", option(cfg, "table"), option(cfg, "payload_field"))
}

func (c *Connector) Save(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("record is nil")
	}

	payload, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	if _, err = c.connection.Exec(c.insert, payload); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}

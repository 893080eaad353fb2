package mysql

/*
Settings of the export table in MySQL:

host = "localhost"
port = "3306"
user = "root"
password = "secret"
database = "machineinfo"
table = "machine_info_export"
payload_field = "payload"
*/

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

type Connector struct {
	connection *sql.DB
	config     map[string]string
	insert     string
}

func valueOr(cfg map[string]string, name, fallback string) string {
	if v := cfg[name]; v != "" {
		return v
	}
	return fallback
}

func dataSourceName(cfg map[string]string) string {
	dsn := mysql.NewConfig()
	dsn.User = valueOr(cfg, "user", "root")
	dsn.Passwd = cfg["password"]
	dsn.Net = "tcp"
	dsn.Addr = valueOr(cfg, "host", "localhost") + ":" + valueOr(cfg, "port", "3306")
	dsn.DBName = valueOr(cfg, "database", "machineinfo")
	return dsn.FormatDSN()
}

func insertQuery(cfg map[string]string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)",
		valueOr(cfg, "table", "machine_info_export"), valueOr(cfg, "payload_field", "payload"))
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("storage settings are missing")
	}
	c.config = cfg

	if c.connection, err = sql.Open("mysql", dataSourceName(cfg)); err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err = c.connection.Ping(); err != nil {
		return fmt.Errorf("MySQL is unavailable: %w", err)
	}

	c.insert = insertQuery(cfg)
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

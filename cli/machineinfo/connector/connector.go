package connector

import (
	"database/sql"
)

// Connector owns a database/sql pool opened from a settings map.
type Connector interface {
	GetConnection() *sql.DB
	Connect(map[string]string) error
	Close() error
}

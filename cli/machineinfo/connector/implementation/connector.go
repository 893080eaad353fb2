package implementation

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Settings struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

type Connector struct {
	connection *sql.DB
	settings   Settings
}

var defaultPorts = map[string]string{
	DriverPostgres: "5432",
	DriverMySQL:    "3306",
}

func getOptionValue(optionName string, optionDefaultValue string, settings map[string]string) string {
	optionValue := settings[optionName]
	if optionValue == "" {
		log.Warnf("Key '%s' is missing in the database settings. Using default '%s'.", optionName, optionDefaultValue)
		optionValue = optionDefaultValue
	}

	return optionValue
}

func (c *Connector) FillSettings(settings map[string]string) {
	c.settings.Driver = getOptionValue("driver", DriverPostgres, settings)
	c.settings.Host = getOptionValue("host", "localhost", settings)
	c.settings.Port = getOptionValue("port", defaultPorts[c.settings.Driver], settings)
	c.settings.User = getOptionValue("user", "postgres", settings)
	c.settings.Password = getOptionValue("password", "", settings)
	c.settings.Database = getOptionValue("database", "customers", settings)
	c.settings.SSLMode = getOptionValue("sslmode", "disable", settings)
}

// DataSourceName renders the filled settings in the format of the selected driver.
func (c *Connector) DataSourceName() (string, error) {
	switch c.settings.Driver {
	case DriverPostgres:
		return fmt.Sprintf("dbname=%s host=%s port=%s user=%s password=%s sslmode=%s",
			c.settings.Database, c.settings.Host, c.settings.Port, c.settings.User, c.settings.Password, c.settings.SSLMode), nil
	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = c.settings.User
		cfg.Passwd = c.settings.Password
		cfg.Net = "tcp"
		cfg.Addr = c.settings.Host + ":" + c.settings.Port
		cfg.DBName = c.settings.Database
		return cfg.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unknown database driver: %s", c.settings.Driver)
	}
}

func (c *Connector) Connect(settings map[string]string) error {
	var err error
	if settings == nil {
		return fmt.Errorf("database settings are missing")
	}

	c.FillSettings(settings)

	dsn, err := c.DataSourceName()
	if err != nil {
		return err
	}

	if c.connection, err = sql.Open(c.settings.Driver, dsn); err != nil {
		return fmt.Errorf("failed to open %s connection: %w", c.settings.Driver, err)
	}

	if err = c.connection.Ping(); err != nil {
		return fmt.Errorf("%s is unavailable: %w", c.settings.Driver, err)
	}
	return err
}

func (c *Connector) Driver() string {
	return c.settings.Driver
}

func (c *Connector) GetConnection() *sql.DB {
	return c.connection
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}

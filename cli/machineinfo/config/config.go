package config

/*
Configuration file of the machine information service
*/

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/sh-dot/machineinfo/cli/machineinfo/storage"
	"github.com/sh-dot/machineinfo/cli/machineinfo/types"
	"github.com/sh-dot/machineinfo/libs/reconcile"
)

const (
	defaultApiPort        = 8080
	defaultExportCron     = "0 3 * * *"
	defaultExportWorkers  = 4
	defaultExportBuffer   = 100
	defaultExportPageSize = 4000
	defaultKeyPrefix      = "permissions"
	defaultRedisTimeout   = 2
	defaultMigrationsPath = "file://migrations"
)

type PermissionSettings struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	Timeout   int    `yaml:"timeout"`
}

type ExportSettings struct {
	Enabled        bool       `yaml:"enabled"`
	CronExpression string     `yaml:"cron"`
	View           types.View `yaml:"view"`
	User           string     `yaml:"user"`
	OrgID          int64      `yaml:"org_id"`
	Workers        int        `yaml:"workers"`
	Buffer         int        `yaml:"buffer"`
	Encoding       string     `yaml:"encoding"`
	PageSize       int        `yaml:"page_size"`
}

type Settings struct {
	ApiPort        int32                        `yaml:"api_port"`
	ApiKeys        []string                     `yaml:"api_keys"`
	LogLevel       string                       `yaml:"log_level"`
	LogFilePath    string                       `yaml:"log_file_path"`
	LogMaxAgeDays  int                          `yaml:"log_max_age_days"`
	Primary        map[string]string            `yaml:"primary"`
	Billing        map[string]string            `yaml:"billing"`
	Permission     PermissionSettings           `yaml:"permission"`
	Store          map[string]map[string]string `yaml:"storage"`
	Export         ExportSettings               `yaml:"export"`
	MigrationsPath string                       `yaml:"migrations_path"`
	Reconcile      reconcile.Table              `yaml:"reconcile"`
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

func (s *Settings) GetPermissionTimeout() time.Duration {
	return time.Duration(s.Permission.Timeout) * time.Second
}

func (s *Settings) GetTable() reconcile.Table {
	return s.Reconcile
}

// New reads the settings file. Missing values get defaults, invalid values are
// logged and replaced by defaults. Keys of the reconcile section override the
// production table one by one.
func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}

	c.Reconcile = reconcile.DefaultTable()
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, err
	}

	if c.ApiPort == 0 {
		c.ApiPort = defaultApiPort
	}
	if c.ApiPort < 0 || c.ApiPort > 65535 {
		log.Errorf("Invalid api_port (%d). Defaulting to %d.", c.ApiPort, defaultApiPort)
		c.ApiPort = defaultApiPort
	}

	if c.MigrationsPath == "" {
		c.MigrationsPath = defaultMigrationsPath
	}

	if c.Permission.KeyPrefix == "" {
		c.Permission.KeyPrefix = defaultKeyPrefix
	}
	if c.Permission.Timeout <= 0 {
		c.Permission.Timeout = defaultRedisTimeout
	}

	setExportDefaults(&c.Export)

	if c.Reconcile.MaskSentinel == "" {
		log.Errorf("Empty reconcile.mask_sentinel. Defaulting to %q.", reconcile.DefaultTable().MaskSentinel)
		c.Reconcile.MaskSentinel = reconcile.DefaultTable().MaskSentinel
	}

	return c, err
}

func setExportDefaults(e *ExportSettings) {
	if e.CronExpression == "" {
		e.CronExpression = defaultExportCron
	}
	if e.View == "" {
		e.View = types.View(reconcile.ViewDistributor)
	}
	if e.Workers == 0 {
		e.Workers = defaultExportWorkers
	}
	if e.Workers < 0 {
		log.Errorf("Invalid export.workers (%d). Defaulting to %d.", e.Workers, defaultExportWorkers)
		e.Workers = defaultExportWorkers
	}
	if e.Buffer <= 0 {
		e.Buffer = defaultExportBuffer
	}
	if e.PageSize == 0 {
		e.PageSize = defaultExportPageSize
	}
	if e.PageSize < 0 {
		log.Errorf("Invalid export.page_size (%d). Defaulting to %d.", e.PageSize, defaultExportPageSize)
		e.PageSize = defaultExportPageSize
	}

	switch {
	case e.Encoding == "":
		e.Encoding = storage.EncodingJSON
	case !storage.ValidEncoding(e.Encoding):
		log.Errorf("Unknown export.encoding %q. Defaulting to %q.", e.Encoding, storage.EncodingJSON)
		e.Encoding = storage.EncodingJSON
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rifflock/lfshook"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/sh-dot/machineinfo/cli/machineinfo/api"
	"github.com/sh-dot/machineinfo/cli/machineinfo/config"
	"github.com/sh-dot/machineinfo/cli/machineinfo/connector/implementation"
	"github.com/sh-dot/machineinfo/cli/machineinfo/domain"
	"github.com/sh-dot/machineinfo/cli/machineinfo/metrics"
	"github.com/sh-dot/machineinfo/cli/machineinfo/repository/machine"
	"github.com/sh-dot/machineinfo/cli/machineinfo/source"
	"github.com/sh-dot/machineinfo/cli/machineinfo/source/billing"
	"github.com/sh-dot/machineinfo/cli/machineinfo/source/permission"
	"github.com/sh-dot/machineinfo/cli/machineinfo/storage"
	"github.com/sh-dot/machineinfo/libs/reconcile"
)

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "path to the config file")
	flag.Parse()
	cfg, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
		return
	}

	configureLogging(cfg)

	if err := applyMigrations(cfg); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
		return
	}

	table := cfg.GetTable()
	primarySource, err := source.NewDefaultPrimary(primaryDSN(cfg.Primary), table.Alerts)
	if err != nil {
		log.Fatalf("Failed to open primary source: %v", err)
		return
	}

	repository := &machine.MachineRepository{Primary: primarySource}

	if len(cfg.Billing) > 0 {
		billingConnector := &implementation.Connector{}
		if err := billingConnector.Connect(cfg.Billing); err != nil {
			log.Fatalf("Failed to connect to billing database: %v", err)
			return
		}
		defer billingConnector.Close()
		repository.Billing = billing.NewSQL(billingConnector, billingConnector.Driver())
	} else {
		log.Warn("Billing database is not configured, customer locations stay empty")
	}

	if cfg.Permission.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Permission.Addr,
			Password: cfg.Permission.Password,
			DB:       cfg.Permission.DB,
		})
		defer client.Close()
		repository.Permission = permission.NewRedis(client, cfg.Permission.KeyPrefix, cfg.GetPermissionTimeout())
	} else {
		log.Warn("Permission store is not configured, every record is masked")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	getMachineInfo := &domain.GetMachineInfo{
		Repository: repository,
		Engine:     reconcile.NewEngine(table),
		Metrics:    m,
	}

	if cfg.Export.Enabled {
		stop, err := runExport(cfg, repository, getMachineInfo, m)
		if err != nil {
			log.Fatalf("Failed to start export: %v", err)
			return
		}
		defer stop()
	}

	runApi(cfg, getMachineInfo, &domain.GetCrossBorderAlerts{Repository: repository})
}

func getConfig(configFilePath string) (config.Settings, error) {
	if configFilePath == "" {
		return config.Settings{}, errors.New("config path is not set")
	}

	c, err := config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("failed to parse config: %w", err)
	}

	return c, nil
}

func configureLogging(cfg config.Settings) {
	log.SetLevel(cfg.GetLogLevel())

	consoleFmt := &log.TextFormatter{ForceColors: true, FullTimestamp: false}
	log.SetFormatter(consoleFmt)
	log.SetOutput(os.Stdout)

	if cfg.LogFilePath != "" {
		logDir := filepath.Dir(cfg.LogFilePath)
		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
				log.Fatalf("Failed to create log directory: %v", err)
			}
		}

		log.AddHook(newFileHook(newFileLogger(cfg)))
	}
}

func newFileLogger(cfg config.Settings) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    100,
		MaxBackups: 366,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}
}

func newFileHook(logger *lumberjack.Logger) *lfshook.LfsHook {
	fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
	return lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: logger,
		log.FatalLevel: logger,
		log.ErrorLevel: logger,
		log.WarnLevel:  logger,
		log.InfoLevel:  logger,
		log.DebugLevel: logger,
		log.TraceLevel: logger,
	}, fileFmt)
}

func primaryDSN(p map[string]string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		valueOr(p["host"], "localhost"), valueOr(p["user"], "postgres"), p["password"],
		valueOr(p["database"], "machines"), valueOr(p["port"], "5432"), valueOr(p["sslmode"], "disable"))
}

// exportDatabaseURL points at the PostgreSQL export sink. Without that sink
// there is nothing to migrate.
func exportDatabaseURL(cfg config.Settings) (string, bool) {
	s, ok := cfg.Store["postgresql"]
	if !ok {
		return "", false
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(valueOr(s["user"], "postgres"), s["password"]),
		Host:     valueOr(s["host"], "localhost") + ":" + valueOr(s["port"], "5432"),
		Path:     "/" + valueOr(s["database"], "machineinfo"),
		RawQuery: "sslmode=" + valueOr(s["sslmode"], "disable"),
	}
	return u.String(), true
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func applyMigrations(cfg config.Settings) error {
	databaseUrl, ok := exportDatabaseURL(cfg)
	if !ok {
		log.Debug("PostgreSQL export storage is not configured, skipping migrations")
		return nil
	}

	m, err := migrate.New(cfg.MigrationsPath, databaseUrl)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No new migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("Migrations applied")
	return nil
}

func runExport(cfg config.Settings, repository *machine.MachineRepository, getMachineInfo *domain.GetMachineInfo, m *metrics.Metrics) (func(), error) {
	repo := storage.NewRepository()
	if err := repo.LoadStorages(cfg.Store, cfg.Export.Encoding); err != nil {
		return nil, err
	}
	if repo.Len() == 0 {
		repo.Close()
		return nil, errors.New("export is enabled but no storage is configured")
	}
	async := storage.NewAsyncRepository(storage.NewObservedSaver(repo, m.ObserveSinkWrite), cfg.Export.Buffer, cfg.Export.Workers)

	var orgID *int64
	if cfg.Export.OrgID != 0 {
		org := cfg.Export.OrgID
		orgID = &org
	}

	export := &domain.ExportMachineInfo{
		Lister:         repository,
		GetMachineInfo: getMachineInfo,
		Saver:          async,
		Metrics:        m,
		View:           cfg.Export.View.Reconcile(),
		OrgID:          orgID,
		User:           cfg.Export.User,
		Workers:        cfg.Export.Workers,
		PageSize:       cfg.Export.PageSize,
		Encoding:       cfg.Export.Encoding,
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Export.CronExpression, func() {
		// Run logs its own outcome.
		_, _ = export.Run(context.Background())
	})
	if err != nil {
		async.Close()
		repo.Close()
		return nil, fmt.Errorf("invalid export cron expression %q: %w", cfg.Export.CronExpression, err)
	}
	c.Start()
	log.Infof("Export of the %s view scheduled at %q", export.View, cfg.Export.CronExpression)

	return func() {
		<-c.Stop().Done()
		async.Close()
		if err := repo.Close(); err != nil {
			log.Warnf("Failed to close storages: %v", err)
		}
	}, nil
}

func runApi(cfg config.Settings, machineInfo api.MachineInfoGetter, crossBorder api.CrossBorderAlertsGetter) {
	handler := api.NewHandler(machineInfo, crossBorder)
	controller, err := api.NewController(handler, cfg.ApiKeys, prometheus.DefaultGatherer)
	if err != nil {
		log.Fatalf("Failed to create API controller: %v", err)
		return
	}
	log.Infof("Starting API on port %d", cfg.ApiPort)
	if err := controller.Run(cfg.ApiPort); err != nil {
		log.Fatal(err)
	}
}

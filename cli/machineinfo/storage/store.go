package storage

import (
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/sh-dot/machineinfo/cli/machineinfo/storage/store/mysql"
	"github.com/sh-dot/machineinfo/cli/machineinfo/storage/store/nats"
	"github.com/sh-dot/machineinfo/cli/machineinfo/storage/store/postgresql"
	"github.com/sh-dot/machineinfo/cli/machineinfo/storage/store/rabbitmq"
	"github.com/sh-dot/machineinfo/cli/machineinfo/storage/store/redis"
	"github.com/sh-dot/machineinfo/cli/machineinfo/storage/store/tarantool_queue"
)

var ErrInvalidStorage = errors.New("storage not found")
var ErrUnknownStorage = errors.New("storage isn't support yet")

type Store interface {
	Connector
	Saver
}

// Saver writes one export record to an external system.
type Saver interface {
	Save(interface{ ToBytes() ([]byte, error) }) error
}

// Connector opens and closes the connection of an external system.
type Connector interface {
	Init(map[string]string) error
	Close() error
}

// Repository is the set of export sinks.
type Repository struct {
	storages []Saver
	names    []string
}

func (r *Repository) AddStore(name string, s Saver) {
	r.storages = append(r.storages, s)
	r.names = append(r.names, name)
}

func (r *Repository) Len() int {
	return len(r.storages)
}

// Save writes the record to every sink. All sinks are tried; the returned
// error joins the failures.
func (r *Repository) Save(m interface{ ToBytes() ([]byte, error) }) error {
	var errs []error
	for i, store := range r.storages {
		if err := store.Save(m); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.names[i], err))
		}
	}
	return errors.Join(errs...)
}

// LoadStorages connects every sink of the storage section of the config.
// Sinks that label their messages get the content type of encoding unless
// their settings name one.
func (r *Repository) LoadStorages(storages map[string]map[string]string, encoding string) error {
	if len(storages) == 0 {
		return ErrInvalidStorage
	}

	names := make([]string, 0, len(storages))
	for name := range storages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		db, err := newStore(name)
		if err != nil {
			return err
		}

		if err := db.Init(sinkSettings(storages[name], encoding)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		log.Infof("Export storage %s connected", name)
		r.AddStore(name, db)
	}
	return nil
}

func sinkSettings(cfg map[string]string, encoding string) map[string]string {
	settings := make(map[string]string, len(cfg)+1)
	for k, v := range cfg {
		settings[k] = v
	}
	if settings["content_type"] == "" {
		settings["content_type"] = ContentType(encoding)
	}
	return settings
}

// Close closes every sink that can be closed.
func (r *Repository) Close() error {
	var errs []error
	for i, s := range r.storages {
		if c, ok := s.(Connector); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.names[i], err))
			}
		}
	}
	return errors.Join(errs...)
}

func newStore(name string) (Store, error) {
	switch name {
	case "rabbitmq":
		return &rabbitmq.Connector{}, nil
	case "postgresql":
		return &postgresql.Connector{}, nil
	case "nats":
		return &nats.Connector{}, nil
	case "tarantool_queue":
		return &tarantool_queue.Connector{}, nil
	case "redis":
		return &redis.Connector{}, nil
	case "mysql":
		return &mysql.Connector{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStorage, name)
	}
}

func NewRepository() *Repository {
	return &Repository{}
}

package source

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/in/filter"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/out"
	"github.com/sh-dot/machineinfo/libs/reconcile"
)

var (
	telemetryColumns = nullableText("gps_up_time", "smr_up_time", "smr", "smr_source", "lat", "lon", "etl_machine_id")
	alertColumns     = textColumns("alert_type") + ", " + nullableText("payload")
	territoryColumns = textColumns("category_id", "territory_name", "territory_owner", "group_name", "group_owner")
	personnelColumns = textColumns("category_id", "name")
)

type DefaultPrimary struct {
	db *gorm.DB
	// CrossBorderTypes are the alert types of the cross-border history.
	CrossBorderTypes []string
}

func NewDefaultPrimary(dsn string, alerts reconcile.AlertTypes) (*DefaultPrimary, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the query store: %w", err)
	}

	return &DefaultPrimary{
		db:               db,
		CrossBorderTypes: []string{alerts.CrossBorderIn, alerts.CrossBorderOut},
	}, nil
}

func (s *DefaultPrimary) GetDistributorMachines(filter filter.Machine) ([]out.DistributorMachine, error) {
	var machines []out.DistributorMachine

	if err := s.distributorQuery(filter).Scan(&machines).Error; err != nil {
		return nil, err
	}

	return machines, nil
}

func (s *DefaultPrimary) distributorQuery(filter filter.Machine) *gorm.DB {
	q := s.db.Table("distributor_machine").Select(textColumns(
		"org_id", "org_name", "machine_type", "oem", "tr_model", "serial", "pin",
		"product_type", "location_db_name", "area1", "area2",
		"build_location", "build_date", "engine_model", "sales_type",
		"invoiced_to_distributor_date", "first_in_dirt_date", "final_delivery_date",
	)+", customer_names::text AS customer_names").
		Where("tr_model = ? AND serial = ?", filter.Model, filter.Serial)

	if filter.OrgID != nil {
		q = q.Where("org_id = ?", *filter.OrgID)
	}

	return q.Order("id")
}

func (s *DefaultPrimary) GetTrunkMachines(filter filter.Machine) ([]out.TrunkMachine, error) {
	var machines []out.TrunkMachine

	q := s.db.Table("trunk_machine").Select(textColumns(
		"org_id", "organization_name", "machine_type", "oem", "sales_model", "serial", "pin_number",
		"product_type", "location_db_name", "area1", "area2", "customer_name", "customer_address",
		"build_location", "build_date", "engine_model", "sales_type",
		"invoiced_to_distributor_date", "first_in_dirt_date", "final_delivery_date",
	)).
		Where("sales_model = ? AND serial = ?", filter.Model, filter.Serial)

	if err := q.Order("id").Scan(&machines).Error; err != nil {
		return nil, err
	}

	return machines, nil
}

func (s *DefaultPrimary) GetMachineKeys(filter filter.MachineKeys) ([]out.MachineKey, error) {
	var keys []out.MachineKey

	q, err := s.keysQuery(filter)
	if err != nil {
		return nil, err
	}

	if err := q.Scan(&keys).Error; err != nil {
		return nil, err
	}

	return keys, nil
}

func (s *DefaultPrimary) keysQuery(filter filter.MachineKeys) (*gorm.DB, error) {
	var q *gorm.DB
	switch filter.View {
	case reconcile.ViewTrunk:
		q = s.db.Table("trunk_machine").Select("DISTINCT sales_model AS model, serial")
	case reconcile.ViewDistributor:
		q = s.db.Table("distributor_machine").Select("DISTINCT tr_model AS model, serial")
		if filter.OrgID != nil {
			q = q.Where("org_id = ?", *filter.OrgID)
		}
	default:
		return nil, fmt.Errorf("%w: %q", reconcile.ErrUnknownView, filter.View)
	}

	q = q.Order("model, serial")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	return q, nil
}

func (s *DefaultPrimary) GetTelemetry(key out.MachineKey) ([]out.Telemetry, error) {
	var telemetry []out.Telemetry

	if err := s.childQuery("machine_telemetry", telemetryColumns, key).Scan(&telemetry).Error; err != nil {
		return nil, err
	}

	return telemetry, nil
}

func (s *DefaultPrimary) GetAlerts(key out.MachineKey) ([]out.Alert, error) {
	var alerts []out.Alert

	if err := s.childQuery("machine_alert", alertColumns, key).Scan(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

func (s *DefaultPrimary) GetTerritory(key out.MachineKey) ([]out.Territory, error) {
	var territory []out.Territory

	if err := s.childQuery("machine_territory", territoryColumns, key).Scan(&territory).Error; err != nil {
		return nil, err
	}

	return territory, nil
}

func (s *DefaultPrimary) GetPersonnel(key out.MachineKey) ([]out.Personnel, error) {
	var personnel []out.Personnel

	if err := s.childQuery("machine_personnel", personnelColumns, key).Scan(&personnel).Error; err != nil {
		return nil, err
	}

	return personnel, nil
}

// childQuery reads the rows of one machine from a per-machine table in
// upstream order.
func (s *DefaultPrimary) childQuery(table, columns string, key out.MachineKey) *gorm.DB {
	return s.db.Table(table).
		Select(columns).
		Where("model = ? AND serial = ?", key.Model, key.Serial).
		Order("position")
}

func (s *DefaultPrimary) GetCrossBorderAlerts(filter filter.CrossBorder) ([]out.CrossBorderAlert, error) {
	var alerts []out.CrossBorderAlert

	if err := s.crossBorderQuery(filter).Scan(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

func (s *DefaultPrimary) crossBorderQuery(filter filter.CrossBorder) *gorm.DB {
	return s.db.Table("machine_alert_history").
		Select("model AS full_model, serial, alert_type, org_id::text AS org_id, alert_data::text AS alert_data, raised_at").
		Where("UPPER(status) = 'ACTIVE'").
		Where("trigger_org_id = ?", filter.OrgID).
		Where("alert_type IN ?", s.CrossBorderTypes).
		Where("model = ? AND serial = ?", filter.Model, filter.Serial).
		Order("raised_at")
}

// textColumns selects every column as non-null text.
func textColumns(names ...string) string {
	cols := make([]string, 0, len(names))
	for _, name := range names {
		cols = append(cols, fmt.Sprintf("COALESCE(%s::text, '') AS %s", name, name))
	}
	return strings.Join(cols, ", ")
}

// nullableText selects every column as text and keeps NULL.
func nullableText(names ...string) string {
	cols := make([]string, 0, len(names))
	for _, name := range names {
		cols = append(cols, fmt.Sprintf("%s::text AS %s", name, name))
	}
	return strings.Join(cols, ", ")
}

package machine

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/in/filter"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/out"
	"github.com/sh-dot/machineinfo/cli/machineinfo/source"
	"github.com/sh-dot/machineinfo/cli/machineinfo/source/billing"
	"github.com/sh-dot/machineinfo/cli/machineinfo/source/permission"
	"github.com/sh-dot/machineinfo/libs/reconcile"
)

// Bundle is everything the query store holds about one machine. Matches is the
// number of master rows found; only the first one is used.
type Bundle struct {
	Source    reconcile.SourceRecord
	Telemetry []reconcile.TelemetrySample
	Alerts    []reconcile.AlertRecord
	Territory []reconcile.TerritoryAssignment
	Personnel []reconcile.PersonnelAssignment
	Matches   int
}

type MachineRepository struct {
	Primary    source.Primary
	Billing    billing.Source
	Permission permission.Source
}

// GetBundle loads the master record of the view and the lists of the machine.
// A machine without master rows yields a bundle with zero matches.
func (r *MachineRepository) GetBundle(view reconcile.View, f filter.Machine) (Bundle, error) {
	var b Bundle

	switch view {
	case reconcile.ViewDistributor:
		rows, err := r.Primary.GetDistributorMachines(f)
		if err != nil {
			return b, fmt.Errorf("failed to load distributor master: %w", err)
		}
		b.Matches = len(rows)
		if len(rows) > 0 {
			b.Source = toDistributorRecord(rows[0])
		}
	case reconcile.ViewTrunk:
		rows, err := r.Primary.GetTrunkMachines(f)
		if err != nil {
			return b, fmt.Errorf("failed to load trunk master: %w", err)
		}
		b.Matches = len(rows)
		if len(rows) > 0 {
			b.Source = toTrunkRecord(rows[0])
		}
	default:
		return b, fmt.Errorf("%w: %q", reconcile.ErrUnknownView, view)
	}

	if b.Matches == 0 {
		return b, nil
	}

	key := out.MachineKey{Model: f.Model, Serial: f.Serial}

	telemetry, err := r.Primary.GetTelemetry(key)
	if err != nil {
		return b, fmt.Errorf("failed to load telemetry: %w", err)
	}
	b.Telemetry = toTelemetry(telemetry)

	alerts, err := r.Primary.GetAlerts(key)
	if err != nil {
		return b, fmt.Errorf("failed to load alerts: %w", err)
	}
	b.Alerts = toAlerts(alerts)

	territory, err := r.Primary.GetTerritory(key)
	if err != nil {
		return b, fmt.Errorf("failed to load territory: %w", err)
	}
	b.Territory = toTerritory(territory)

	personnel, err := r.Primary.GetPersonnel(key)
	if err != nil {
		return b, fmt.Errorf("failed to load personnel: %w", err)
	}
	b.Personnel = toPersonnel(personnel)

	return b, nil
}

func (r *MachineRepository) GetMachineKeys(f filter.MachineKeys) ([]out.MachineKey, error) {
	return r.Primary.GetMachineKeys(f)
}

func (r *MachineRepository) GetCrossBorderAlerts(f filter.CrossBorder) ([]out.CrossBorderAlert, error) {
	return r.Primary.GetCrossBorderAlerts(f)
}

func (r *MachineRepository) GetBillingAddress(orgID int64, accountNo string) (*reconcile.BillingAddress, error) {
	if r.Billing == nil {
		return nil, nil
	}
	a, err := r.Billing.GetBillingAddress(orgID, accountNo)
	if err != nil || a == nil {
		return nil, err
	}
	return &reconcile.BillingAddress{
		Address1: a.Address1,
		Address2: a.Address2,
		City:     a.City,
		State:    a.State,
		Zip:      a.Zip,
		Country:  a.Country,
	}, nil
}

func (r *MachineRepository) GetScope(ctx context.Context, user string, view reconcile.View) (*reconcile.PermissionScope, error) {
	if r.Permission == nil {
		return nil, nil
	}
	return r.Permission.GetScope(ctx, user, view)
}

func toDistributorRecord(m out.DistributorMachine) reconcile.DistributorRecord {
	r := reconcile.DistributorRecord{
		OrgID:                     m.OrgID,
		OrgName:                   m.OrgName,
		MachineType:               m.MachineType,
		OEM:                       m.OEM,
		TrModel:                   m.TrModel,
		Serial:                    m.Serial,
		Pin:                       m.Pin,
		ProductType:               m.ProductType,
		LocationDbName:            m.LocationDbName,
		Area1:                     m.Area1,
		Area2:                     m.Area2,
		BuildLocation:             m.BuildLocation,
		BuildDate:                 m.BuildDate,
		EngineModel:               m.EngineModel,
		SalesType:                 m.SalesType,
		InvoicedToDistributorDate: m.InvoicedToDistributorDate,
		FirstInDirtDate:           m.FirstInDirtDate,
		FinalDeliveryDate:         m.FinalDeliveryDate,
	}
	if m.CustomerNames != nil && *m.CustomerNames != "" {
		if err := json.Unmarshal([]byte(*m.CustomerNames), &r.CustomerNames); err != nil {
			log.WithFields(log.Fields{"model": m.TrModel, "serial": m.Serial}).
				Warnf("Unreadable customer names: %v", err)
			r.CustomerNames = nil
		}
	}
	return r
}

func toTrunkRecord(m out.TrunkMachine) reconcile.TrunkRecord {
	return reconcile.TrunkRecord{
		OrgID:                     m.OrgID,
		OrganizationName:          m.OrganizationName,
		MachineType:               m.MachineType,
		OEM:                       m.OEM,
		SalesModel:                m.SalesModel,
		Serial:                    m.Serial,
		PinNumber:                 m.PinNumber,
		ProductType:               m.ProductType,
		LocationDbName:            m.LocationDbName,
		Area1:                     m.Area1,
		Area2:                     m.Area2,
		CustomerName:              m.CustomerName,
		CustomerAddress:           m.CustomerAddress,
		BuildLocation:             m.BuildLocation,
		BuildDate:                 m.BuildDate,
		EngineModel:               m.EngineModel,
		SalesType:                 m.SalesType,
		InvoicedToDistributorDate: m.InvoicedToDistributorDate,
		FirstInDirtDate:           m.FirstInDirtDate,
		FinalDeliveryDate:         m.FinalDeliveryDate,
	}
}

func toTelemetry(rows []out.Telemetry) []reconcile.TelemetrySample {
	samples := make([]reconcile.TelemetrySample, 0, len(rows))
	for _, t := range rows {
		samples = append(samples, reconcile.TelemetrySample{
			GpsUpTime:    t.GpsUpTime,
			SmrUpTime:    t.SmrUpTime,
			Smr:          t.Smr,
			SmrSource:    t.SmrSource,
			Lat:          t.Lat,
			Lon:          t.Lon,
			EtlMachineID: t.EtlMachineID,
		})
	}
	return samples
}

func toAlerts(rows []out.Alert) []reconcile.AlertRecord {
	alerts := make([]reconcile.AlertRecord, 0, len(rows))
	for _, a := range rows {
		record := reconcile.AlertRecord{Type: a.AlertType}
		if a.Payload != nil {
			record.Payload = json.RawMessage(*a.Payload)
		}
		alerts = append(alerts, record)
	}
	return alerts
}

func toTerritory(rows []out.Territory) []reconcile.TerritoryAssignment {
	territory := make([]reconcile.TerritoryAssignment, 0, len(rows))
	for _, t := range rows {
		territory = append(territory, reconcile.TerritoryAssignment{
			CategoryID:     t.CategoryID,
			TerritoryName:  t.TerritoryName,
			TerritoryOwner: t.TerritoryOwner,
			GroupName:      t.GroupName,
			GroupOwner:     t.GroupOwner,
		})
	}
	return territory
}

func toPersonnel(rows []out.Personnel) []reconcile.PersonnelAssignment {
	personnel := make([]reconcile.PersonnelAssignment, 0, len(rows))
	for _, p := range rows {
		personnel = append(personnel, reconcile.PersonnelAssignment{CategoryID: p.CategoryID, Name: p.Name})
	}
	return personnel
}

package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Request carries everything known about one machine. List order is kept as
// received from the store.
type Request struct {
	View      View
	Source    SourceRecord
	Telemetry []TelemetrySample
	Alerts    []AlertRecord
	Territory []TerritoryAssignment
	Personnel []PersonnelAssignment
	Scope     *PermissionScope
}

// Engine merges upstream records into the canonical record. It holds no state
// besides its table and is safe for concurrent use.
type Engine struct {
	table Table
}

func NewEngine(table Table) *Engine {
	return &Engine{table: table.clone()}
}

func (e *Engine) Table() Table {
	return e.table.clone()
}

// Reconcile merges one machine and masks the result for the request scope.
// Masking always checks the organization of the source record.
func (e *Engine) Reconcile(req Request) (MachineInfo, error) {
	if req.Source == nil {
		return MachineInfo{}, ErrNoSource
	}

	master := req.Source.Normalize()
	if req.View != "" && req.View != master.View {
		return MachineInfo{}, fmt.Errorf("%w: %s record for %s view", ErrViewMismatch, master.View, req.View)
	}

	category, ok := e.table.category(master.View)
	if !ok {
		return MachineInfo{}, fmt.Errorf("%w: %q", ErrUnknownView, master.View)
	}

	info, err := e.merge(master, category, req)
	if err != nil {
		return MachineInfo{}, err
	}

	return Mask(req.Scope, master.OrgID, info, e.table), nil
}

func (e *Engine) merge(master MasterRecord, category string, req Request) (MachineInfo, error) {
	info := MachineInfo{
		MachineType:         ClassifyMachineType(master.MachineType, master.OEM, e.table),
		FullModel:           master.FullModel,
		Serial:              master.Serial,
		PinNumber:           master.Pin,
		MachineCategoryName: master.ProductType,
		Distributor:         master.Distributor,
		LocationDbName:      master.LocationDbName,
		Area1:               master.Area1,
		Area2:               master.Area2,
		CustomerName:        master.CustomerName,
		CustomerLocation:    master.CustomerLocation,
		PssrName:            firstPersonnel(req.Personnel, e.table.PersonnelCategory),
		BuildLocation:       master.BuildLocation,
		EngineModel:         master.EngineModel,
		SaleType:            master.SaleType,
		Smr:                 decimal.Zero,
	}

	display := ResolveTerritory(req.Territory, category, e.table)
	info.TerritoryOwner = display.Owner
	info.TerritoryGroupOwner = display.GroupOwner
	if row, ok := LastMatch(req.Territory, category); ok {
		info.TerritoryName = row.TerritoryName
		info.TerritoryGroupName = row.GroupName
	}

	if len(req.Telemetry) > 0 {
		if err := applyTelemetry(&info, req.Telemetry[0], master.Uptime); err != nil {
			return MachineInfo{}, err
		}
	}

	info.BuildDate = lifecycleDate(master.BuildDate)
	info.InvoicedToDistributorDate = lifecycleDate(master.InvoicedToDistributorDate)
	info.FidDate = lifecycleDate(master.FirstInDirtDate)
	info.FinalDeliveryDate = lifecycleDate(master.FinalDeliveryDate)

	names := e.table.Alerts
	info.CrossBorderIn = TallyAlerts(req.Alerts, names.CrossBorderIn)
	info.CrossBorderOut = TallyAlerts(req.Alerts, names.CrossBorderOut)
	info.ContractTermination = TallyAlerts(req.Alerts, names.ContractTermination)
	info.MaintenanceAlert = TallyAlerts(req.Alerts, names.Maintenance)
	info.ErrorCodeAlert = TallyAlerts(req.Alerts, names.ErrorCode)
	info.General = TallyAlerts(req.Alerts, names.General)
	info.EngineOvAlert = TallyAlerts(req.Alerts, names.EngineOverage)
	info.UndercarriageAlert = TallyAlerts(req.Alerts, names.Undercarriage)

	return info, nil
}

func applyTelemetry(info *MachineInfo, sample TelemetrySample, uptime UptimePolicy) error {
	smr, err := parseDecimal("smr", sample.Smr)
	if err != nil {
		return err
	}
	lat, err := parseFloat("lat", sample.Lat)
	if err != nil {
		return err
	}
	lon, err := parseFloat("lon", sample.Lon)
	if err != nil {
		return err
	}

	info.Smr = smr
	info.Latitude = lat
	info.Longitude = lon
	info.SmrSource = deref(sample.SmrSource)
	info.EtlMachineID = ValidateMachineID(deref(sample.EtlMachineID))
	info.GpsUpTime = ValidDatePtr(sample.GpsUpTime)

	switch uptime {
	case UptimeSMRFirst:
		info.SmrUpTime = ValidDatePtr(sample.SmrUpTime)
		if info.SmrUpTime == nil {
			info.SmrUpTime = ValidDatePtr(sample.GpsUpTime)
		}
	default:
		info.SmrUpTime = ResolveDate(TextPtr(sample.GpsUpTime), TextPtr(sample.SmrUpTime), AsText).Ptr()
	}
	return nil
}

func lifecycleDate(s string) *string {
	if s == "" {
		return nil
	}
	return ValidDate(s)
}

func parseDecimal(field string, s *string) (decimal.Decimal, error) {
	if s == nil {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q", ErrMalformedInput, field, *s)
	}
	return d, nil
}

func parseFloat(field string, s *string) (float64, error) {
	if s == nil {
		return 0.0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return 0.0, fmt.Errorf("%w: %s %q", ErrMalformedInput, field, *s)
	}
	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

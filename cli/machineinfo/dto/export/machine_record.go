package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sh-dot/machineinfo/libs/reconcile"
)

// MachineRecord is one row of a bulk export. SMR is carried as display text so
// every encoding renders it the same way; a zero reading is left empty.
type MachineRecord struct {
	BatchID    string `json:"batchId" msgpack:"batchId"`
	ExportedAt string `json:"exportedAt" msgpack:"exportedAt"`
	View       string `json:"view" msgpack:"view"`

	MachineType         string `json:"machineType" msgpack:"machineType"`
	FullModel           string `json:"fullModel" msgpack:"fullModel"`
	Serial              string `json:"serial" msgpack:"serial"`
	PinNumber           string `json:"pinNumber" msgpack:"pinNumber"`
	MachineCategoryName string `json:"machineCategoryName" msgpack:"machineCategoryName"`
	Distributor         string `json:"distributor" msgpack:"distributor"`
	CustomerName        string `json:"customerName" msgpack:"customerName"`
	CustomerLocation    string `json:"customerLocation" msgpack:"customerLocation"`
	PssrName            string `json:"pssrName" msgpack:"pssrName"`
	TerritoryOwner      string `json:"territoryOwner" msgpack:"territoryOwner"`
	TerritoryGroupOwner string `json:"territoryGroupOwner" msgpack:"territoryGroupOwner"`

	Smr          string  `json:"smr" msgpack:"smr"`
	SmrUpTime    string  `json:"smrUpTime" msgpack:"smrUpTime"`
	SmrSource    string  `json:"smrSource" msgpack:"smrSource"`
	Latitude     float64 `json:"latitude" msgpack:"latitude"`
	Longitude    float64 `json:"longitude" msgpack:"longitude"`
	EtlMachineID string  `json:"etlMachineId" msgpack:"etlMachineId"`

	CrossBorderIn       int `json:"crossBorderIn" msgpack:"crossBorderIn"`
	CrossBorderOut      int `json:"crossBorderOut" msgpack:"crossBorderOut"`
	ContractTermination int `json:"contractTermination" msgpack:"contractTermination"`
	MaintenanceAlert    int `json:"maintenanceAlert" msgpack:"maintenanceAlert"`
	ErrorCodeAlert      int `json:"errorCodeAlert" msgpack:"errorCodeAlert"`
	General             int `json:"general" msgpack:"general"`
	EngineOvAlert       int `json:"engineOvAlert" msgpack:"engineOvAlert"`
	UndercarriageAlert  int `json:"undercarriageAlert" msgpack:"undercarriageAlert"`
}

func NewMachineRecord(batchID string, exportedAt time.Time, view reconcile.View, info reconcile.MachineInfo) MachineRecord {
	r := MachineRecord{
		BatchID:             batchID,
		ExportedAt:          exportedAt.UTC().Format(time.RFC3339),
		View:                string(view),
		MachineType:         info.MachineType,
		FullModel:           info.FullModel,
		Serial:              info.Serial,
		PinNumber:           info.PinNumber,
		MachineCategoryName: info.MachineCategoryName,
		Distributor:         info.Distributor,
		CustomerName:        info.CustomerName,
		CustomerLocation:    info.CustomerLocation,
		PssrName:            info.PssrName,
		TerritoryOwner:      info.TerritoryOwner,
		TerritoryGroupOwner: info.TerritoryGroupOwner,
		SmrSource:           info.SmrSource,
		Latitude:            info.Latitude,
		Longitude:           info.Longitude,
		EtlMachineID:        info.EtlMachineID,
		CrossBorderIn:       info.CrossBorderIn,
		CrossBorderOut:      info.CrossBorderOut,
		ContractTermination: info.ContractTermination,
		MaintenanceAlert:    info.MaintenanceAlert,
		ErrorCodeAlert:      info.ErrorCodeAlert,
		General:             info.General,
		EngineOvAlert:       info.EngineOvAlert,
		UndercarriageAlert:  info.UndercarriageAlert,
	}
	if !info.Smr.IsZero() {
		r.Smr = FormatSMR(info.Smr)
	}
	if info.SmrUpTime != nil {
		r.SmrUpTime = *info.SmrUpTime
	}
	return r
}

// FormatSMR renders an hour meter value with thousands separators and at most
// two decimals: 12345.678 becomes "12,345.68", 1200.50 becomes "1,200.5".
func FormatSMR(d decimal.Decimal) string {
	s := d.Round(2).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sign + sb.String() + frac
}

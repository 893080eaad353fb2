package reconcile

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TelemetrySample is the latest reading of a machine. Every column is nullable.
type TelemetrySample struct {
	GpsUpTime    *string `json:"gpsUpTime"`
	SmrUpTime    *string `json:"smrUpTime"`
	Smr          *string `json:"smr"`
	SmrSource    *string `json:"smrSource"`
	Lat          *string `json:"lat"`
	Lon          *string `json:"lon"`
	EtlMachineID *string `json:"etlMachineId"`
}

// MachineInfo is the canonical, masked record of a single machine.
type MachineInfo struct {
	MachineType         string `json:"machineType"`
	FullModel           string `json:"fullModel"`
	Serial              string `json:"serial"`
	PinNumber           string `json:"pinNumber"`
	MachineCategoryName string `json:"machineCategoryName"`

	Distributor      string `json:"distributor"`
	LocationDbName   string `json:"locationDbName"`
	Area1            string `json:"area1"`
	Area2            string `json:"area2"`
	CustomerName     string `json:"customerName"`
	CustomerLocation string `json:"customerLocation"`
	PssrName         string `json:"pssrName"`

	TerritoryName       string `json:"territoryName"`
	TerritoryOwner      string `json:"territoryOwner"`
	TerritoryGroupName  string `json:"territoryGroupName"`
	TerritoryGroupOwner string `json:"territoryGroupOwner"`

	Smr          decimal.Decimal `json:"smr"`
	SmrUpTime    *string         `json:"smrUpTime"`
	SmrSource    string          `json:"smrSource"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	EtlMachineID string          `json:"etlMachineId"`
	GpsUpTime    *string         `json:"gpsUpTime"`

	BuildLocation             string  `json:"buildLocation"`
	BuildDate                 *string `json:"buildDate"`
	EngineModel               string  `json:"engineModel"`
	SaleType                  string  `json:"saleType"`
	InvoicedToDistributorDate *string `json:"invoicedToDistributorDate"`
	FidDate                   *string `json:"fidDate"`
	FinalDeliveryDate         *string `json:"finalDeliveryDate"`

	CrossBorderIn       int `json:"crossBorderIn"`
	CrossBorderOut      int `json:"crossBorderOut"`
	ContractTermination int `json:"contractTermination"`
	MaintenanceAlert    int `json:"maintenanceAlert"`
	ErrorCodeAlert      int `json:"errorCodeAlert"`
	General             int `json:"general"`
	EngineOvAlert       int `json:"engineOvAlert"`
	UndercarriageAlert  int `json:"undercarriageAlert"`
	// CareAlert is a disabled category and always zero.
	CareAlert int `json:"careAlert"`
}

func (m *MachineInfo) ToBytes() ([]byte, error) {
	return json.Marshal(m)
}

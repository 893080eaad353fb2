package reconcile

import (
	"strconv"
	"strings"
)

// UptimePolicy decides how the SMR update time is derived from telemetry.
type UptimePolicy uint8

const (
	// UptimeLatest takes the most current of the GPS and SMR update times.
	UptimeLatest UptimePolicy = iota
	// UptimeSMRFirst takes the SMR update time and falls back to GPS when it is not a date.
	UptimeSMRFirst
)

// MasterRecord is the schema-independent form of an upstream master record.
type MasterRecord struct {
	View   View
	OrgID  string
	Uptime UptimePolicy

	MachineType    string
	OEM            string
	FullModel      string
	Serial         string
	Pin            string
	ProductType    string
	Distributor    string
	LocationDbName string
	Area1          string
	Area2          string

	CustomerName     string
	CustomerLocation string

	BuildLocation string
	EngineModel   string
	SaleType      string

	BuildDate                 string
	InvoicedToDistributorDate string
	FirstInDirtDate           string
	FinalDeliveryDate         string
}

// SourceRecord is implemented by every upstream master schema.
type SourceRecord interface {
	Normalize() MasterRecord
}

type LocalizedName struct {
	Language  string `json:"lang"`
	Name      string `json:"name"`
	AccountNo string `json:"accNo"`
}

type BillingAddress struct {
	Address1 string `json:"billingaddress1"`
	Address2 string `json:"billingaddress2"`
	City     string `json:"billingcity"`
	State    string `json:"billingstate"`
	Zip      string `json:"billingzip"`
	Country  string `json:"billingcountry"`
}

// Location formats the address as "addr1 addr2, city, state, zip, country".
// Addresses without a first line have no location.
func (b *BillingAddress) Location() (string, bool) {
	if b == nil || b.Address1 == "" {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(b.Address1)
	sb.WriteString(" ")
	sb.WriteString(b.Address2)
	for _, part := range []string{b.City, b.State, b.Zip, b.Country} {
		sb.WriteString(", ")
		sb.WriteString(part)
	}
	return sb.String(), true
}

// DistributorRecord is a row of the distributor machine master.
type DistributorRecord struct {
	OrgID          string
	OrgName        string
	MachineType    string
	OEM            string
	TrModel        string
	Serial         string
	Pin            string
	ProductType    string
	LocationDbName string
	Area1          string
	Area2          string

	CustomerNames []LocalizedName
	// Billing is looked up from the customer master by BillingKey.
	Billing *BillingAddress

	BuildLocation             string
	BuildDate                 string
	EngineModel               string
	SalesType                 string
	InvoicedToDistributorDate string
	FirstInDirtDate           string
	FinalDeliveryDate         string
}

// BillingKey returns the customer master key of the record. ok is false when
// the organization id is not a nonzero integer or no account number is known.
func (r DistributorRecord) BillingKey() (orgID int64, accountNo string, ok bool) {
	orgID, err := strconv.ParseInt(strings.TrimSpace(r.OrgID), 10, 64)
	if err != nil {
		orgID = 0
	}
	if len(r.CustomerNames) > 0 {
		accountNo = r.CustomerNames[0].AccountNo
	}
	return orgID, accountNo, orgID != 0 && accountNo != ""
}

func (r DistributorRecord) Normalize() MasterRecord {
	m := MasterRecord{
		View:                      ViewDistributor,
		OrgID:                     r.OrgID,
		Uptime:                    UptimeLatest,
		MachineType:               r.MachineType,
		OEM:                       r.OEM,
		FullModel:                 r.TrModel,
		Serial:                    r.Serial,
		Pin:                       r.Pin,
		ProductType:               r.ProductType,
		Distributor:               r.OrgName,
		LocationDbName:            r.LocationDbName,
		Area1:                     r.Area1,
		Area2:                     r.Area2,
		BuildLocation:             r.BuildLocation,
		EngineModel:               r.EngineModel,
		SaleType:                  r.SalesType,
		BuildDate:                 r.BuildDate,
		InvoicedToDistributorDate: r.InvoicedToDistributorDate,
		FirstInDirtDate:           r.FirstInDirtDate,
		FinalDeliveryDate:         r.FinalDeliveryDate,
	}
	if len(r.CustomerNames) > 0 {
		m.CustomerName = r.CustomerNames[0].Name
	}
	if _, _, ok := r.BillingKey(); ok {
		if location, ok := r.Billing.Location(); ok {
			m.CustomerLocation = location
		}
	}
	return m
}

// TrunkRecord is a row of the trunk serial master.
type TrunkRecord struct {
	OrgID            string
	OrganizationName string
	MachineType      string
	OEM              string
	SalesModel       string
	Serial           string
	PinNumber        string
	ProductType      string
	LocationDbName   string
	Area1            string
	Area2            string

	CustomerName    string
	CustomerAddress string

	BuildLocation             string
	BuildDate                 string
	EngineModel               string
	SalesType                 string
	InvoicedToDistributorDate string
	FirstInDirtDate           string
	FinalDeliveryDate         string
}

func (r TrunkRecord) Normalize() MasterRecord {
	return MasterRecord{
		View:                      ViewTrunk,
		OrgID:                     r.OrgID,
		Uptime:                    UptimeSMRFirst,
		MachineType:               r.MachineType,
		OEM:                       r.OEM,
		FullModel:                 r.SalesModel,
		Serial:                    r.Serial,
		Pin:                       r.PinNumber,
		ProductType:               r.ProductType,
		Distributor:               r.OrganizationName,
		LocationDbName:            r.LocationDbName,
		Area1:                     r.Area1,
		Area2:                     r.Area2,
		CustomerName:              r.CustomerName,
		CustomerLocation:          r.CustomerAddress,
		BuildLocation:             r.BuildLocation,
		EngineModel:               r.EngineModel,
		SaleType:                  r.SalesType,
		BuildDate:                 r.BuildDate,
		InvoicedToDistributorDate: r.InvoicedToDistributorDate,
		FirstInDirtDate:           r.FirstInDirtDate,
		FinalDeliveryDate:         r.FinalDeliveryDate,
	}
}

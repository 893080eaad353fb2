package out

import "time"

// Telemetry columns are stored as text exactly as the ETL delivered them.
type Telemetry struct {
	GpsUpTime    *string `gorm:"column:gps_up_time"`
	SmrUpTime    *string `gorm:"column:smr_up_time"`
	Smr          *string `gorm:"column:smr"`
	SmrSource    *string `gorm:"column:smr_source"`
	Lat          *string `gorm:"column:lat"`
	Lon          *string `gorm:"column:lon"`
	EtlMachineID *string `gorm:"column:etl_machine_id"`
}

type Alert struct {
	AlertType string  `gorm:"column:alert_type"`
	Payload   *string `gorm:"column:payload"`
}

type Territory struct {
	CategoryID     string `gorm:"column:category_id"`
	TerritoryName  string `gorm:"column:territory_name"`
	TerritoryOwner string `gorm:"column:territory_owner"`
	GroupName      string `gorm:"column:group_name"`
	GroupOwner     string `gorm:"column:group_owner"`
}

type Personnel struct {
	CategoryID string `gorm:"column:category_id"`
	Name       string `gorm:"column:name"`
}

// BillingAddress is a customer master row.
type BillingAddress struct {
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string
	Country  string
}

type CrossBorderAlert struct {
	FullModel string    `gorm:"column:full_model"`
	Serial    string    `gorm:"column:serial"`
	AlertType string    `gorm:"column:alert_type"`
	OrgID     string    `gorm:"column:org_id"`
	AlertData *string   `gorm:"column:alert_data"`
	RaisedAt  time.Time `gorm:"column:raised_at"`
}

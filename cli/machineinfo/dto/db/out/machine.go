package out

// MachineKey identifies a machine across every table of the query store.
type MachineKey struct {
	Model  string `gorm:"column:model"`
	Serial string `gorm:"column:serial"`
}

type DistributorMachine struct {
	OrgID          string  `gorm:"column:org_id"`
	OrgName        string  `gorm:"column:org_name"`
	MachineType    string  `gorm:"column:machine_type"`
	OEM            string  `gorm:"column:oem"`
	TrModel        string  `gorm:"column:tr_model"`
	Serial         string  `gorm:"column:serial"`
	Pin            string  `gorm:"column:pin"`
	ProductType    string  `gorm:"column:product_type"`
	LocationDbName string  `gorm:"column:location_db_name"`
	Area1          string  `gorm:"column:area1"`
	Area2          string  `gorm:"column:area2"`
	CustomerNames  *string `gorm:"column:customer_names"`

	BuildLocation             string `gorm:"column:build_location"`
	BuildDate                 string `gorm:"column:build_date"`
	EngineModel               string `gorm:"column:engine_model"`
	SalesType                 string `gorm:"column:sales_type"`
	InvoicedToDistributorDate string `gorm:"column:invoiced_to_distributor_date"`
	FirstInDirtDate           string `gorm:"column:first_in_dirt_date"`
	FinalDeliveryDate         string `gorm:"column:final_delivery_date"`
}

type TrunkMachine struct {
	OrgID            string `gorm:"column:org_id"`
	OrganizationName string `gorm:"column:organization_name"`
	MachineType      string `gorm:"column:machine_type"`
	OEM              string `gorm:"column:oem"`
	SalesModel       string `gorm:"column:sales_model"`
	Serial           string `gorm:"column:serial"`
	PinNumber        string `gorm:"column:pin_number"`
	ProductType      string `gorm:"column:product_type"`
	LocationDbName   string `gorm:"column:location_db_name"`
	Area1            string `gorm:"column:area1"`
	Area2            string `gorm:"column:area2"`
	CustomerName     string `gorm:"column:customer_name"`
	CustomerAddress  string `gorm:"column:customer_address"`

	BuildLocation             string `gorm:"column:build_location"`
	BuildDate                 string `gorm:"column:build_date"`
	EngineModel               string `gorm:"column:engine_model"`
	SalesType                 string `gorm:"column:sales_type"`
	InvoicedToDistributorDate string `gorm:"column:invoiced_to_distributor_date"`
	FirstInDirtDate           string `gorm:"column:first_in_dirt_date"`
	FinalDeliveryDate         string `gorm:"column:final_delivery_date"`
}

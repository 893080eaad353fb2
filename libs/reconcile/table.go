package reconcile

import (
	"strings"

	"golang.org/x/text/cases"
)

// View selects which upstream master schema governs field mapping.
type View string

const (
	ViewDistributor View = "distributor"
	ViewTrunk       View = "trunk"
)

// AlertTypes holds the alert type names counted into the canonical record.
type AlertTypes struct {
	CrossBorderIn       string `yaml:"cross_border_in"`
	CrossBorderOut      string `yaml:"cross_border_out"`
	ContractTermination string `yaml:"contract_termination"`
	Maintenance         string `yaml:"maintenance"`
	ErrorCode           string `yaml:"error_code"`
	General             string `yaml:"general"`
	EngineOverage       string `yaml:"engine_overage"`
	Undercarriage       string `yaml:"undercarriage"`
}

// Table is the immutable configuration the engine is built with.
type Table struct {
	MaskSentinel      string          `yaml:"mask_sentinel"`
	GeneralName       string          `yaml:"general_name"`
	GeneralLabel      string          `yaml:"general_label"`
	NonOEMType        string          `yaml:"non_oem_type"`
	ProductLines      []string        `yaml:"product_lines"`
	TerritoryCategory map[View]string `yaml:"territory_category"`
	PersonnelCategory string          `yaml:"personnel_category"`
	Alerts            AlertTypes      `yaml:"alerts"`
}

func DefaultTable() Table {
	return Table{
		MaskSentinel: "***",
		GeneralName:  "General",
		GeneralLabel: "General",
		NonOEMType:   "NonKomatsu",
		ProductLines: []string{"Komtrax", "NonKomtrax", "KomtraxPlus"},
		TerritoryCategory: map[View]string{
			ViewDistributor: "3",
			ViewTrunk:       "2",
		},
		PersonnelCategory: "3",
		Alerts: AlertTypes{
			CrossBorderIn:       "Cross Border In",
			CrossBorderOut:      "Cross Border Out",
			ContractTermination: "Contract Termination",
			Maintenance:         "PM Job",
			ErrorCode:           "Abnormality",
			General:             "General",
			EngineOverage:       "Engine OV By Fuel",
			Undercarriage:       "UC Replacement",
		},
	}
}

func (t Table) clone() Table {
	c := t
	c.ProductLines = append([]string(nil), t.ProductLines...)
	c.TerritoryCategory = make(map[View]string, len(t.TerritoryCategory))
	for view, category := range t.TerritoryCategory {
		c.TerritoryCategory[view] = category
	}
	return c
}

func (t Table) category(view View) (string, bool) {
	category, ok := t.TerritoryCategory[view]
	return category, ok
}

func (t Table) isGeneral(name string) bool {
	return sameText(name, t.GeneralName)
}

// sameText compares trimmed values under Unicode case folding.
// A Caser is stateful, so one is created per call.
func sameText(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

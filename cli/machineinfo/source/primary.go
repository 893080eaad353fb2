package source

import (
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/in/filter"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/out"
)

// Primary is the query store of machine master data. Lists are returned in
// stored order.
type Primary interface {
	GetDistributorMachines(filter filter.Machine) ([]out.DistributorMachine, error)
	GetTrunkMachines(filter filter.Machine) ([]out.TrunkMachine, error)
	GetMachineKeys(filter filter.MachineKeys) ([]out.MachineKey, error)

	GetTelemetry(key out.MachineKey) ([]out.Telemetry, error)
	GetAlerts(key out.MachineKey) ([]out.Alert, error)
	GetTerritory(key out.MachineKey) ([]out.Territory, error)
	GetPersonnel(key out.MachineKey) ([]out.Personnel, error)

	GetCrossBorderAlerts(filter filter.CrossBorder) ([]out.CrossBorderAlert, error)
}

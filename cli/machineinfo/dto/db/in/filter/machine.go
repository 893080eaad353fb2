package filter

import "github.com/sh-dot/machineinfo/libs/reconcile"

// Machine selects master rows of a single machine. OrgID narrows distributor
// rows to one organization when set.
type Machine struct {
	Model  string
	Serial string
	OrgID  *int64
}

// MachineKeys selects one page of the machines of a bulk export.
type MachineKeys struct {
	View   reconcile.View
	OrgID  *int64
	Limit  int
	Offset int
}

type CrossBorder struct {
	Model  string
	Serial string
	OrgID  int64
}

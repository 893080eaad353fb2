package billing

import "github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/out"

// Source looks up billing addresses in the customer master. A missing customer
// is not an error: the address is nil.
type Source interface {
	GetBillingAddress(orgID int64, accountNo string) (*out.BillingAddress, error)
}

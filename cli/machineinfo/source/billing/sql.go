package billing

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sh-dot/machineinfo/cli/machineinfo/connector"
	"github.com/sh-dot/machineinfo/cli/machineinfo/connector/implementation"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/out"
)

const billingQuery = `SELECT
	COALESCE(billingaddress1, ''),
	COALESCE(billingaddress2, ''),
	COALESCE(billingcity, ''),
	COALESCE(billingstate, ''),
	COALESCE(billingzip, ''),
	COALESCE(billingcountry, '')
FROM customer_master
WHERE org_id = ? AND account_no = ?
ORDER BY id
LIMIT 1`

type SQL struct {
	Connector connector.Connector
	query     string
}

// NewSQL prepares the lookup for the placeholder style of driver.
func NewSQL(c connector.Connector, driver string) *SQL {
	return &SQL{Connector: c, query: bindQuery(billingQuery, driver)}
}

// GetBillingAddress returns the first customer master row of the account.
func (s *SQL) GetBillingAddress(orgID int64, accountNo string) (*out.BillingAddress, error) {
	var a out.BillingAddress

	row := s.Connector.GetConnection().QueryRow(s.query, orgID, accountNo)
	err := row.Scan(&a.Address1, &a.Address2, &a.City, &a.State, &a.Zip, &a.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("billing lookup for org %d account %s: %w", orgID, accountNo, err)
	}

	return &a, nil
}

// bindQuery rewrites ? placeholders to $n for Postgres.
func bindQuery(query, driver string) string {
	if driver != implementation.DriverPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/in/filter"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/out"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/response"
)

type CrossBorderRepository interface {
	GetCrossBorderAlerts(f filter.CrossBorder) ([]out.CrossBorderAlert, error)
}

// GetCrossBorderAlerts lists the active cross-border alerts a machine raised
// for an organization.
type GetCrossBorderAlerts struct {
	Repository CrossBorderRepository
}

func (d *GetCrossBorderAlerts) Run(model, serial, orgID string) ([]response.CrossBorderAlert, error) {
	if strings.TrimSpace(model) == "" || strings.TrimSpace(serial) == "" {
		return nil, fmt.Errorf("%w: model and serial are required", ErrInvalidQuery)
	}
	org, err := strconv.ParseInt(strings.TrimSpace(orgID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: org id %q", ErrInvalidQuery, orgID)
	}

	rows, err := d.Repository.GetCrossBorderAlerts(filter.CrossBorder{Model: model, Serial: serial, OrgID: org})
	if err != nil {
		return nil, err
	}

	alerts := make([]response.CrossBorderAlert, 0, len(rows))
	for _, r := range rows {
		a := response.CrossBorderAlert{
			FullModel: r.FullModel,
			Serial:    r.Serial,
			AlertType: r.AlertType,
			OrgID:     r.OrgID,
			RaisedAt:  r.RaisedAt,
		}
		if r.AlertData != nil && json.Valid([]byte(*r.AlertData)) {
			a.AlertData = json.RawMessage(*r.AlertData)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

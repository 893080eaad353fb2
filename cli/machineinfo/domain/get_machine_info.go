package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/in/filter"
	"github.com/sh-dot/machineinfo/cli/machineinfo/metrics"
	"github.com/sh-dot/machineinfo/cli/machineinfo/repository/machine"
	"github.com/sh-dot/machineinfo/libs/reconcile"
)

var (
	ErrMachineNotFound = errors.New("machine not found")
	ErrInvalidQuery    = errors.New("invalid query")
)

type MachineRepository interface {
	GetBundle(view reconcile.View, f filter.Machine) (machine.Bundle, error)
	GetBillingAddress(orgID int64, accountNo string) (*reconcile.BillingAddress, error)
	GetScope(ctx context.Context, user string, view reconcile.View) (*reconcile.PermissionScope, error)
}

// MachineQuery asks for one machine as seen by User in View. OrgID narrows
// distributor rows to one organization. Masking always follows the
// organization of the record itself.
type MachineQuery struct {
	Model     string
	Serial    string
	View      reconcile.View
	OrgID     string
	User      string
	RequestID string
}

type GetMachineInfo struct {
	Repository MachineRepository
	Engine     *reconcile.Engine
	Metrics    *metrics.Metrics
}

func (d *GetMachineInfo) Run(ctx context.Context, q MachineQuery) (info reconcile.MachineInfo, err error) {
	start := time.Now()
	defer func() {
		d.Metrics.ObserveReconcile(string(q.View), outcome(err), start)
	}()

	logger := log.WithFields(log.Fields{
		"request_id": q.RequestID,
		"model":      q.Model,
		"serial":     q.Serial,
		"view":       q.View,
	})

	f, err := machineFilter(q)
	if err != nil {
		return info, err
	}

	bundle, err := d.Repository.GetBundle(q.View, f)
	if err != nil {
		return info, err
	}
	if bundle.Matches == 0 {
		return info, fmt.Errorf("%w: %s %s", ErrMachineNotFound, q.Model, q.Serial)
	}
	if bundle.Matches > 1 {
		d.Metrics.IncDuplicateMaster()
		logger.Warnf("%d master rows matched, using the first one", bundle.Matches)
	}

	if err = ctx.Err(); err != nil {
		return info, err
	}

	if record, ok := bundle.Source.(reconcile.DistributorRecord); ok {
		if orgID, accountNo, ok := record.BillingKey(); ok {
			record.Billing, err = d.Repository.GetBillingAddress(orgID, accountNo)
			if err != nil {
				return info, err
			}
			bundle.Source = record
		}
	}

	scope, scopeErr := d.Repository.GetScope(ctx, q.User, q.View)
	if scopeErr != nil {
		d.Metrics.IncScopeFallback()
		logger.WithField("user", q.User).Warnf("Permission lookup failed, masking everything: %v", scopeErr)
		scope = nil
	}

	info, err = d.Engine.Reconcile(reconcile.Request{
		View:      q.View,
		Source:    bundle.Source,
		Telemetry: bundle.Telemetry,
		Alerts:    bundle.Alerts,
		Territory: bundle.Territory,
		Personnel: bundle.Personnel,
		Scope:     scope,
	})
	if err != nil {
		return reconcile.MachineInfo{}, err
	}

	logger.Debug("Machine reconciled")
	return info, nil
}

func machineFilter(q MachineQuery) (filter.Machine, error) {
	f := filter.Machine{Model: q.Model, Serial: q.Serial}
	if strings.TrimSpace(q.Model) == "" || strings.TrimSpace(q.Serial) == "" {
		return f, fmt.Errorf("%w: model and serial are required", ErrInvalidQuery)
	}

	if q.View == reconcile.ViewDistributor && q.OrgID != "" {
		orgID, err := strconv.ParseInt(strings.TrimSpace(q.OrgID), 10, 64)
		if err != nil {
			return f, fmt.Errorf("%w: org id %q", ErrInvalidQuery, q.OrgID)
		}
		f.OrgID = &orgID
	}
	return f, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrMachineNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, reconcile.ErrMalformedInput):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeError
	}
}

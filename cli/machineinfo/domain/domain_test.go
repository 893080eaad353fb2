package domain

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/in/filter"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/out"
	"github.com/sh-dot/machineinfo/cli/machineinfo/metrics"
	"github.com/sh-dot/machineinfo/cli/machineinfo/repository/machine"
	"github.com/sh-dot/machineinfo/libs/reconcile"
)

func str(s string) *string {
	return &s
}

type fakeRepository struct {
	mu        sync.Mutex
	bundles   map[string]machine.Bundle
	billing   *reconcile.BillingAddress
	scope     *reconcile.PermissionScope
	scopeErr  error
	keys      []out.MachineKey
	filters   []filter.Machine
	billingAt []string
	pages     []filter.MachineKeys
	keysErr   error
	failFrom  int
}

func (f *fakeRepository) GetBundle(view reconcile.View, m filter.Machine) (machine.Bundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, m)
	b, ok := f.bundles[m.Model+"/"+m.Serial]
	if !ok {
		return machine.Bundle{}, nil
	}
	return b, nil
}

func (f *fakeRepository) GetBillingAddress(orgID int64, accountNo string) (*reconcile.BillingAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.billingAt = append(f.billingAt, accountNo)
	return f.billing, nil
}

func (f *fakeRepository) GetScope(context.Context, string, reconcile.View) (*reconcile.PermissionScope, error) {
	return f.scope, f.scopeErr
}

func (f *fakeRepository) GetMachineKeys(m filter.MachineKeys) ([]out.MachineKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, m)
	if f.keysErr != nil && m.Offset >= f.failFrom {
		return nil, f.keysErr
	}
	if m.Offset >= len(f.keys) {
		return nil, nil
	}
	end := m.Offset + m.Limit
	if end > len(f.keys) {
		end = len(f.keys)
	}
	return f.keys[m.Offset:end], nil
}

func (f *fakeRepository) GetCrossBorderAlerts(m filter.CrossBorder) ([]out.CrossBorderAlert, error) {
	return []out.CrossBorderAlert{
		{FullModel: m.Model, Serial: m.Serial, AlertType: "Cross Border In", OrgID: "100", AlertData: str(`{"country":"MX"}`)},
		{FullModel: m.Model, Serial: m.Serial, AlertType: "Cross Border Out", OrgID: "100", AlertData: str(`broken`)},
	}, nil
}

type fakeSaver struct {
	mu    sync.Mutex
	saved [][]byte
	fail  bool
}

func (s *fakeSaver) Save(m interface{ ToBytes() ([]byte, error) }) error {
	if s.fail {
		return errors.New("sink down")
	}
	b, err := m.ToBytes()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.saved = append(s.saved, b)
	s.mu.Unlock()
	return nil
}

func distributorBundle() machine.Bundle {
	return machine.Bundle{
		Matches: 1,
		Source: reconcile.DistributorRecord{
			OrgID:   "100",
			OrgName: "Pacific Equipment",
			TrModel: "PC210",
			Serial:  "A1",
			CustomerNames: []reconcile.LocalizedName{
				{Language: "en", Name: "Johnson Excavating", AccountNo: "AC-7"},
			},
		},
		Telemetry: []reconcile.TelemetrySample{{
			GpsUpTime: str("2024-01-10"),
			SmrUpTime: str("2024-02-01"),
			Smr:       str("1200.5"),
			Lat:       str("35.5"),
			Lon:       str("139.5"),
		}},
		Territory: []reconcile.TerritoryAssignment{{CategoryID: "3", TerritoryName: "North", TerritoryOwner: "Smith"}},
		Personnel: []reconcile.PersonnelAssignment{{CategoryID: "3", Name: "Maria Lopez"}},
	}
}

func allOf(org string) *reconcile.PermissionScope {
	return &reconcile.PermissionScope{
		CustomerNameOrgIDs: []string{org},
		PersonalInfoOrgIDs: []string{org},
		MapOrgIDs:          []string{org},
	}
}

func newGetMachineInfo(repo *fakeRepository) *GetMachineInfo {
	return &GetMachineInfo{
		Repository: repo,
		Engine:     reconcile.NewEngine(reconcile.DefaultTable()),
		Metrics:    metrics.New(prometheus.NewRegistry()),
	}
}

func TestGetMachineInfo(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	repo := &fakeRepository{
		bundles: map[string]machine.Bundle{"PC210/A1": distributorBundle()},
		billing: &reconcile.BillingAddress{Address1: "12 Main St", Address2: "Suite 4", City: "Fresno", State: "CA", Zip: "93701", Country: "US"},
		scope:   allOf("100"),
	}
	d := newGetMachineInfo(repo)

	info, err := d.Run(context.Background(), MachineQuery{Model: "PC210", Serial: "A1", View: reconcile.ViewDistributor, OrgID: "100", User: "ann"})
	require.NoError(t, err)

	assert.Equal(t, "Johnson Excavating", info.CustomerName)
	assert.Equal(t, "12 Main St Suite 4, Fresno, CA, 93701, US", info.CustomerLocation)
	assert.Equal(t, "North-Smith", info.TerritoryOwner)
	require.NotNil(t, info.SmrUpTime)
	assert.Equal(t, "2024-02-01", *info.SmrUpTime)
	assert.Equal(t, 35.5, info.Latitude)

	assert.Equal(t, []string{"AC-7"}, repo.billingAt)
	require.Len(t, repo.filters, 1)
	require.NotNil(t, repo.filters[0].OrgID)
	assert.Equal(t, int64(100), *repo.filters[0].OrgID)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Reconciled.WithLabelValues("distributor", metrics.OutcomeOK)))
}

func TestGetMachineInfo_PermissionFailureMasks(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	repo := &fakeRepository{
		bundles:  map[string]machine.Bundle{"PC210/A1": distributorBundle()},
		scope:    allOf("100"),
		scopeErr: errors.New("redis down"),
	}
	d := newGetMachineInfo(repo)

	info, err := d.Run(context.Background(), MachineQuery{Model: "PC210", Serial: "A1", View: reconcile.ViewDistributor, User: "ann"})
	require.NoError(t, err)

	assert.Equal(t, "***************ing", info.CustomerName)
	assert.Equal(t, "********pez", info.PssrName)
	assert.Equal(t, 0.0, info.Latitude)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.ScopeFallbacks))
}

func TestGetMachineInfo_QueryOrgDoesNotUnmask(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	trunk := distributorBundle()
	trunk.Source = reconcile.TrunkRecord{
		OrgID:        "200",
		SalesModel:   "PC210",
		Serial:       "A1",
		CustomerName: "Johnson Excavating",
	}
	repo := &fakeRepository{
		bundles: map[string]machine.Bundle{"PC210/A1": trunk},
		scope:   allOf("100"),
	}
	d := newGetMachineInfo(repo)

	for _, org := range []string{"", "100", "200"} {
		t.Run("org_id="+org, func(t *testing.T) {
			info, err := d.Run(context.Background(), MachineQuery{Model: "PC210", Serial: "A1", View: reconcile.ViewTrunk, OrgID: org, User: "ann"})
			require.NoError(t, err)

			assert.Equal(t, "***************ing", info.CustomerName)
			assert.Equal(t, "********pez", info.PssrName)
			assert.Equal(t, 0.0, info.Latitude)
			assert.Equal(t, 0.0, info.Longitude)
		})
	}
}

func TestGetMachineInfo_DuplicateMaster(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	b := distributorBundle()
	b.Matches = 3
	repo := &fakeRepository{bundles: map[string]machine.Bundle{"PC210/A1": b}, scope: allOf("100")}
	d := newGetMachineInfo(repo)

	_, err := d.Run(context.Background(), MachineQuery{Model: "PC210", Serial: "A1", View: reconcile.ViewDistributor})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.DuplicateMaster))
}

func TestGetMachineInfo_Errors(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	malformed := distributorBundle()
	malformed.Telemetry[0].Smr = str("n/a")
	repo := &fakeRepository{bundles: map[string]machine.Bundle{"PC210/BAD": malformed}}
	d := newGetMachineInfo(repo)

	tests := []struct {
		name  string
		query MachineQuery
		err   error
	}{
		{
			name:  "Unknown machine",
			query: MachineQuery{Model: "PC210", Serial: "NONE", View: reconcile.ViewDistributor},
			err:   ErrMachineNotFound,
		},
		{
			name:  "Missing serial",
			query: MachineQuery{Model: "PC210", View: reconcile.ViewDistributor},
			err:   ErrInvalidQuery,
		},
		{
			name:  "Bad org id",
			query: MachineQuery{Model: "PC210", Serial: "A1", View: reconcile.ViewDistributor, OrgID: "ACME"},
			err:   ErrInvalidQuery,
		},
		{
			name:  "Malformed telemetry",
			query: MachineQuery{Model: "PC210", Serial: "BAD", View: reconcile.ViewDistributor},
			err:   reconcile.ErrMalformedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Run(context.Background(), tt.query)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Reconciled.WithLabelValues("distributor", metrics.OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Reconciled.WithLabelValues("distributor", metrics.OutcomeMalformed)))
}

func TestExportMachineInfo(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	general := distributorBundle()
	general.Territory = []reconcile.TerritoryAssignment{{CategoryID: "3", TerritoryName: "General"}}

	repo := &fakeRepository{
		bundles: map[string]machine.Bundle{
			"PC210/A1": distributorBundle(),
			"PC210/A2": general,
		},
		keys: []out.MachineKey{
			{Model: "PC210", Serial: "A1"},
			{Model: "PC210", Serial: "A2"},
			{Model: "PC210", Serial: "MISSING"},
		},
		scope: allOf("100"),
	}
	saver := &fakeSaver{}
	orgID := int64(100)

	savedNow := now
	now = func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { now = savedNow }()

	d := &ExportMachineInfo{
		Lister:         repo,
		GetMachineInfo: newGetMachineInfo(repo),
		Saver:          saver,
		Metrics:        metrics.New(prometheus.NewRegistry()),
		View:           reconcile.ViewDistributor,
		OrgID:          &orgID,
		Workers:        2,
		PageSize:       2,
	}

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.BatchID)
	assert.Equal(t, 2, summary.Queued)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, repo.pages, 2)
	assert.Equal(t, 2, repo.pages[1].Offset)

	records := map[string]map[string]interface{}{}
	for _, b := range saver.saved {
		var r map[string]interface{}
		require.NoError(t, json.Unmarshal(b, &r))
		records[r["serial"].(string)] = r
	}
	require.Len(t, records, 2)
	assert.Equal(t, "Maria Lopez", records["A1"]["pssrName"])
	assert.Equal(t, "", records["A2"]["pssrName"])
	assert.Equal(t, "1,200.5", records["A1"]["smr"])
	assert.Equal(t, "2024-03-01T00:00:00Z", records["A1"]["exportedAt"])
	assert.Equal(t, summary.BatchID, records["A1"]["batchId"])

	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.Queued))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.ExportFailures))
}

func TestExportMachineInfo_SinkFailures(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	repo := &fakeRepository{
		bundles: map[string]machine.Bundle{"PC210/A1": distributorBundle()},
		keys:    []out.MachineKey{{Model: "PC210", Serial: "A1"}},
	}
	d := &ExportMachineInfo{
		Lister:         repo,
		GetMachineInfo: newGetMachineInfo(repo),
		Saver:          &fakeSaver{fail: true},
		View:           reconcile.ViewDistributor,
	}

	summary, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Queued)
	assert.Equal(t, 1, summary.Failed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportMachineInfo_PageFailureIsObserved(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	repo := &fakeRepository{
		bundles: map[string]machine.Bundle{"PC210/A1": distributorBundle()},
		keys: []out.MachineKey{
			{Model: "PC210", Serial: "A1"},
			{Model: "PC210", Serial: "A1"},
			{Model: "PC210", Serial: "A1"},
		},
		scope:    allOf("100"),
		keysErr:  errors.New("query store went away"),
		failFrom: 2,
	}
	d := &ExportMachineInfo{
		Lister:         repo,
		GetMachineInfo: newGetMachineInfo(repo),
		Saver:          &fakeSaver{},
		Metrics:        metrics.New(prometheus.NewRegistry()),
		View:           reconcile.ViewDistributor,
		PageSize:       2,
	}

	summary, err := d.Run(context.Background())
	assert.ErrorIs(t, err, repo.keysErr)
	assert.Equal(t, 2, summary.Queued)
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.Queued))
	assert.Equal(t, 1, testutil.CollectAndCount(d.Metrics.ExportDuration))
}

func TestGetCrossBorderAlerts(t *testing.T) {
	d := &GetCrossBorderAlerts{Repository: &fakeRepository{}}

	alerts, err := d.Run("PC210", "A1", "100")
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Cross Border In", alerts[0].AlertType)
	assert.JSONEq(t, `{"country":"MX"}`, string(alerts[0].AlertData))
	assert.Nil(t, alerts[1].AlertData)

	_, err = d.Run("PC210", "A1", "")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = d.Run("", "A1", "100")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

package domain

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/in/filter"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/db/out"
	"github.com/sh-dot/machineinfo/cli/machineinfo/dto/export"
	"github.com/sh-dot/machineinfo/cli/machineinfo/metrics"
	"github.com/sh-dot/machineinfo/cli/machineinfo/storage"
	"github.com/sh-dot/machineinfo/libs/reconcile"
)

var now = time.Now // For mocking time.Now() in tests

const defaultPageSize = 4000

type MachineLister interface {
	GetMachineKeys(f filter.MachineKeys) ([]out.MachineKey, error)
}

// ExportSummary counts the machines of a batch. Queued records reached the
// saver; whether the sinks wrote them is reported by the saver itself.
type ExportSummary struct {
	BatchID string
	Queued  int
	Failed  int
}

// ExportMachineInfo reconciles every machine of a view page by page and hands
// the records to the export sinks.
type ExportMachineInfo struct {
	Lister         MachineLister
	GetMachineInfo *GetMachineInfo
	Saver          storage.Saver
	Metrics        *metrics.Metrics

	View     reconcile.View
	OrgID    *int64
	User     string
	Workers  int
	PageSize int
	Encoding string
}

func (d *ExportMachineInfo) Run(ctx context.Context) (summary ExportSummary, err error) {
	start := now()
	summary = ExportSummary{BatchID: uuid.NewString()}
	logger := log.WithFields(log.Fields{"batch_id": summary.BatchID, "view": d.View})
	defer func() {
		d.Metrics.ObserveExport(summary.Queued, summary.Failed, start)
		if err != nil {
			logger.Errorf("Export stopped after %d queued, %d failed: %v", summary.Queued, summary.Failed, err)
			return
		}
		logger.Infof("Export finished: %d queued, %d failed", summary.Queued, summary.Failed)
	}()

	pageSize := d.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	orgID := ""
	if d.OrgID != nil {
		orgID = strconv.FormatInt(*d.OrgID, 10)
	}

	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		keys, err := d.Lister.GetMachineKeys(filter.MachineKeys{
			View:   d.View,
			OrgID:  d.OrgID,
			Limit:  pageSize,
			Offset: offset,
		})
		if err != nil {
			return summary, err
		}

		queued, failed := d.exportPage(ctx, summary.BatchID, start, orgID, keys)
		summary.Queued += queued
		summary.Failed += failed

		if len(keys) < pageSize {
			break
		}
	}

	return summary, nil
}

func (d *ExportMachineInfo) exportPage(ctx context.Context, batchID string, at time.Time, orgID string, keys []out.MachineKey) (queued, failed int) {
	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan out.MachineKey)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				err := d.exportMachine(ctx, batchID, at, orgID, key)
				mu.Lock()
				if err != nil {
					failed++
				} else {
					queued++
				}
				mu.Unlock()
				if err != nil {
					log.WithFields(log.Fields{
						"batch_id": batchID,
						"model":    key.Model,
						"serial":   key.Serial,
					}).Errorf("Machine skipped: %v", err)
				}
			}
		}()
	}

	for _, key := range keys {
		jobs <- key
	}
	close(jobs)
	wg.Wait()

	return queued, failed
}

func (d *ExportMachineInfo) exportMachine(ctx context.Context, batchID string, at time.Time, orgID string, key out.MachineKey) error {
	info, err := d.GetMachineInfo.Run(ctx, MachineQuery{
		Model:     key.Model,
		Serial:    key.Serial,
		View:      d.View,
		OrgID:     orgID,
		User:      d.User,
		RequestID: batchID,
	})
	if err != nil {
		return err
	}

	if info.TerritoryOwner == d.GetMachineInfo.Engine.Table().GeneralLabel {
		info.PssrName = ""
	}

	record := export.NewMachineRecord(batchID, at, d.View, info)
	return d.Saver.Save(storage.NewEncoded(record, d.Encoding))
}

package services

import (
	"context"
	"encoding/base64"
	"fmt"
	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
	"sensordigest/internal/charts"
	apperrors "sensordigest/internal/errors"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/storage"
	"sensordigest/internal/storage/interfaces"
	"sensordigest/internal/structures"
	"strings"
	"sync"
	"time"
)

const (
	entrypointIngest = "ingest"
	entrypointSweep  = "sweep"
)

type PipelineServiceInterface interface {
	Ingest(ctx context.Context, payload *models.IngestPayload, now time.Time) string
	Sweep(ctx context.Context, now time.Time) *models.SweepResult
	Preview(email string) (string, bool, error)
	// Revision changes after every ingest and sweep.
	Revision() uint64
}

// PipelineService runs the entrypoints one at a time against the shared workbook.
type PipelineService struct {
	mu            sync.Mutex
	config        *structures.Config
	workbook      interfaces.WorkbookInterface
	ingest        IngestServiceInterface
	notifications NotificationServiceInterface
	reports       ReportServiceInterface
	digest        DigestServiceInterface
	charts        charts.ChartProviderInterface
	archiver      storage.ArchiverInterface
	metrics       providers.MetricsProviderInterface
	logger        providers.Logger
	revision      *atomic.Uint64
}

// Ingest records and flushes the reading, routes its violation alert, sends the digest
// when due and flushes the stamps. The returned text is the response body in every case.
func (ps *PipelineService) Ingest(ctx context.Context, payload *models.IngestPayload, now time.Time) string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	defer ps.revision.Inc()

	if err := ps.runIngest(ctx, payload, now); err != nil {
		kind := apperrors.TypeOf(err)
		ps.metrics.IncPipelineErrors(entrypointIngest, string(kind))
		ps.logger.Errorf(providers.TypeIngest, "Ingest of %q failed with %s error: %s", payload.Name, kind, err)
		raw, _ := json.Marshal(payload)
		return "oops...." + err.Error() + "\n" + now.Format(timeLayout(ps.config)) + "\n" + string(raw)
	}
	return "Wrote:\n  " + payload.Date + "\n  Name:" + payload.Name
}

func (ps *PipelineService) runIngest(ctx context.Context, payload *models.IngestPayload, now time.Time) error {
	recorded := ps.ingest.Record(payload, now)
	if recorded.Err != nil {
		ps.metrics.IncPipelineErrors(entrypointIngest, string(apperrors.TypeOf(recorded.Err)))
		ps.logger.Warnf(providers.TypeIngest, "Reading of %q kept best effort: %s", payload.Name, recorded.Err)
	}
	if err := ps.workbook.Flush(); err != nil {
		return err
	}

	violation, err := ps.notifications.RouteViolations(ctx, payload.Name, now)
	if err != nil {
		return err
	}
	if violation.Sent+violation.Failed > 0 {
		ps.logger.Infof(providers.TypeIngest, "Alarm for %q: %d sent, %d failed", payload.Name, violation.Sent, violation.Failed)
	}

	if _, err := ps.digest.MaybeSendDigest(ctx, now); err != nil {
		return err
	}

	return ps.workbook.Flush()
}

// Sweep runs the timer path: staleness alerts, the digest, log archiving and a flush.
// Each step runs even when an earlier one failed; failures only land in the result.
func (ps *PipelineService) Sweep(ctx context.Context, now time.Time) *models.SweepResult {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	defer ps.revision.Inc()

	started := time.Now()
	result := &models.SweepResult{StartedAt: now}
	fail := func(step string, err error) {
		kind := apperrors.TypeOf(err)
		ps.metrics.IncPipelineErrors(entrypointSweep, string(kind))
		ps.logger.Errorf(providers.TypeSweep, "Sweep %s failed with %s error: %s", step, kind, err)
		result.Errors = append(result.Errors, step+": "+err.Error())
	}

	staleness, err := ps.notifications.RouteStaleness(ctx, now)
	result.Staleness = staleness
	if err != nil {
		fail("staleness", err)
	}

	digest, err := ps.digest.MaybeSendDigest(ctx, now)
	result.Digest = digest
	if err != nil {
		fail("digest", err)
	}

	archived, err := ps.archiver.Archive(now)
	result.Archived = archived
	if err != nil {
		fail("archive", err)
	}

	if err := ps.workbook.Flush(); err != nil {
		fail("flush", err)
	}

	ps.metrics.ObserveSweepDuration(time.Since(started))
	ps.logger.Infof(providers.TypeSweep, "Sweep done in %s with %d errors", time.Since(started), len(result.Errors))
	return result
}

// Preview renders the digest body of one subscriber with the charts inlined as data
// URIs so a browser can show it.
func (ps *PipelineService) Preview(email string) (string, bool, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	snapshot, err := ps.workbook.Snapshot()
	if err != nil {
		return "", false, apperrors.NewStorageError("read summary", err)
	}
	sub, ok := ps.reports.Lookup(ps.reports.Build(snapshot), email)
	if !ok {
		return "", false, nil
	}
	assets, err := ps.charts.Charts()
	if err != nil {
		return "", false, apperrors.NewInternalError("render charts", err)
	}

	body, images := ps.digest.Compose(sub, assets)
	for _, img := range images {
		uri := fmt.Sprintf("data:%s;base64,%s", img.ContentType, base64.StdEncoding.EncodeToString(img.Data))
		body = strings.ReplaceAll(body, "'cid:"+img.ContentID+"'", "'"+uri+"'")
	}
	return body, true, nil
}

func (ps *PipelineService) Revision() uint64 {
	return ps.revision.Load()
}

func NewPipelineService(config *structures.Config, workbook interfaces.WorkbookInterface, ingest IngestServiceInterface, notifications NotificationServiceInterface, reports ReportServiceInterface, digest DigestServiceInterface, chartProvider charts.ChartProviderInterface, archiver storage.ArchiverInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) PipelineServiceInterface {
	return &PipelineService{
		config:        config,
		workbook:      workbook,
		ingest:        ingest,
		notifications: notifications,
		reports:       reports,
		digest:        digest,
		charts:        chartProvider,
		archiver:      archiver,
		metrics:       metrics,
		logger:        logger,
		revision:      atomic.NewUint64(0),
	}
}

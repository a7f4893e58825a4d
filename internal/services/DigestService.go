package services

import (
	"context"
	"fmt"
	"sensordigest/internal/charts"
	apperrors "sensordigest/internal/errors"
	"sensordigest/internal/mail"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/storage/interfaces"
	"sensordigest/internal/structures"
	"sensordigest/internal/summary"
	"strings"
	"time"
)

const (
	defaultDigestSubject = "Humidity sensor weekly summary"
	defaultDigestBanner  = "<b>Weekly humidity sensor summary email</b><br>"
)

var wildcardMarkers = []string{"Everything", "All"}

type DigestServiceInterface interface {
	MaybeSendDigest(ctx context.Context, now time.Time) (*models.DigestResult, error)
	Compose(sub *models.Subscription, assets []*models.ChartAsset) (string, []models.InlineImage)
}

type DigestService struct {
	config   *structures.Config
	workbook interfaces.WorkbookInterface
	reports  ReportServiceInterface
	charts   charts.ChartProviderInterface
	mailer   mail.MailerInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
}

// digestState reads the schedule marker. Any failure means the digest is not due.
func (ds *DigestService) digestState(snapshot *models.SummarySnapshot) (models.DigestState, error) {
	days, err := summary.ParseFrequencyDays(snapshot.SummaryFrequency)
	if err != nil {
		return models.DigestState{}, apperrors.NewScheduleStateError("read "+models.RegionFrequency, err)
	}
	last, err := summary.ParseTime(snapshot.LastSummary, timeLayout(ds.config))
	if err != nil {
		return models.DigestState{}, apperrors.NewScheduleStateError("read "+models.RegionLastSummary, err)
	}
	return models.DigestState{LastSummarySentAt: last, SummaryFrequencyDays: days}, nil
}

// MaybeSendDigest sends the digest to every subscriber once it is due and then moves
// LastSummary to now exactly once, regardless of individual send failures.
func (ds *DigestService) MaybeSendDigest(ctx context.Context, now time.Time) (*models.DigestResult, error) {
	snapshot, err := ds.workbook.Snapshot()
	if err != nil {
		ds.logger.Errorf(providers.TypeApp, "Digest skipped, summary unreadable: %s", err)
		ds.metrics.IncDigestRuns("error")
		return &models.DigestResult{Skipped: true, Reason: err.Error()}, nil
	}

	state, err := ds.digestState(snapshot)
	if err != nil {
		ds.logger.Warnf(providers.TypeApp, "Digest skipped: %s", err)
		ds.metrics.IncDigestRuns("error")
		return &models.DigestResult{Skipped: true, Reason: err.Error()}, nil
	}

	nextDue := state.NextDue()
	if !nextDue.Before(now) {
		ds.logger.Debugf(providers.TypeApp, "No need to send summary emails, next due %s", nextDue.Format(timeLayout(ds.config)))
		ds.metrics.IncDigestRuns("skipped")
		return &models.DigestResult{Skipped: true, Reason: "not due", NextDue: nextDue}, nil
	}

	assets, err := ds.charts.Charts()
	if err != nil {
		ds.logger.Errorf(providers.TypeApp, "Charts unavailable, sending tables only: %s", err)
		assets = nil
	}

	result := &models.DigestResult{NextDue: nextDue}
	subject := orDefault(ds.config.Digest.Subject, defaultDigestSubject)
	for _, sub := range ds.reports.Build(snapshot) {
		body, images := ds.Compose(sub, assets)
		result.Recipients = append(result.Recipients, sub.Email)

		ds.logger.Infof(providers.TypeMail, "Sending summary to %s", sub.Email)
		err := ds.mailer.Send(ctx, &models.Message{To: sub.Email, Subject: subject, HTMLBody: body, InlineImages: images})
		if err != nil {
			ds.logger.Errorf(providers.TypeMail, "Summary to %s failed: %s", sub.Email, err)
			ds.metrics.IncNotificationFailures(kindDigest)
			result.Failed++
			continue
		}
		ds.metrics.IncNotificationsSent(kindDigest)
		result.Sent++
	}

	if err := ds.workbook.SetLastSummary(now); err != nil {
		ds.metrics.IncDigestRuns("error")
		return result, apperrors.NewStorageError("write "+models.RegionLastSummary, err)
	}
	ds.metrics.IncDigestRuns("sent")
	return result, nil
}

// Compose builds the digest body of one subscriber. A chart is attached when its title
// contains one of the subscriber's plot titles or a wildcard marker, so a blank plot
// title attaches every chart. Each chart is attached at most once and content ids are
// numbered per subscriber.
func (ds *DigestService) Compose(sub *models.Subscription, assets []*models.ChartAsset) (string, []models.InlineImage) {
	var b strings.Builder
	b.WriteString(orDefault(ds.config.Digest.Banner, defaultDigestBanner))
	b.WriteString(sub.HTMLTable)
	b.WriteString("<br><br>")

	var images []models.InlineImage
	for _, asset := range assets {
		if !chartMatches(asset.Title, sub.PlotTitles) {
			continue
		}
		cid := fmt.Sprintf("chart%d", len(images))
		b.WriteString("<p align='center'><img src='cid:" + cid + "'></p>")
		images = append(images, models.InlineImage{ContentID: cid, ContentType: asset.ContentType, Data: asset.Image})
	}
	return b.String(), images
}

func chartMatches(title string, plotTitles []string) bool {
	for _, marker := range wildcardMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	for _, plot := range plotTitles {
		if strings.Contains(title, plot) {
			return true
		}
	}
	return false
}

func NewDigestService(config *structures.Config, workbook interfaces.WorkbookInterface, reports ReportServiceInterface, chartProvider charts.ChartProviderInterface, mailer mail.MailerInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) DigestServiceInterface {
	return &DigestService{
		config:   config,
		workbook: workbook,
		reports:  reports,
		charts:   chartProvider,
		mailer:   mailer,
		metrics:  metrics,
		logger:   logger,
	}
}

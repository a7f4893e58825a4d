package services

import (
	"context"
	"fmt"
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
	defaultTimeLayout       = "2006-01-02 15:04:05"
	defaultViolationSubject = "Humidity sensor %s Alarm"
	defaultStaleSubject     = "Humidity sensor not reporting"

	kindViolation = "violation"
	kindStale     = "stale"
	kindDigest    = "digest"
)

type NotificationServiceInterface interface {
	RouteViolations(ctx context.Context, sensorName string, now time.Time) (*models.ViolationResult, error)
	RouteStaleness(ctx context.Context, now time.Time) (*models.StalenessResult, error)
}

type NotificationService struct {
	config   *structures.Config
	workbook interfaces.WorkbookInterface
	mailer   mail.MailerInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
}

func timeLayout(conf *structures.Config) string {
	if conf.Summary.TimeLayout == "" {
		return defaultTimeLayout
	}
	return conf.Summary.TimeLayout
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// RouteViolations sends the column's alarm message to each of its recipients.
// LastAlarm is stamped once at least one send succeeded.
func (ns *NotificationService) RouteViolations(ctx context.Context, sensorName string, now time.Time) (*models.ViolationResult, error) {
	result := &models.ViolationResult{SensorName: sensorName}

	snapshot, err := ns.workbook.Snapshot()
	if err != nil {
		return result, apperrors.NewStorageError("read summary", err)
	}
	column, ok := columnIndex(ns.config, snapshot, ns.logger).Resolve(sensorName)
	if !ok {
		return result, nil
	}
	result.Column = column

	row := summary.RowAt(snapshot, column)
	if !row.SendAlarm {
		return result, nil
	}

	subject := fmt.Sprintf(orDefault(ns.config.Alerts.ViolationSubject, defaultViolationSubject), sensorName)
	body := fmt.Sprintf("Sensor: %s<br>%s<br><br>Date: %s", sensorName, summary.FormatAlarmMessage(row.AlarmMessage), now.Format(timeLayout(ns.config)))

	for _, email := range row.AlarmRecipients {
		err := ns.mailer.Send(ctx, &models.Message{To: email, Subject: subject, HTMLBody: body})
		if err != nil {
			ns.logger.Errorf(providers.TypeMail, "Alarm for %q to %s failed: %s", sensorName, email, err)
			ns.metrics.IncNotificationFailures(kindViolation)
			result.Failed++
			continue
		}
		ns.metrics.IncNotificationsSent(kindViolation)
		result.Sent++
	}

	if result.Sent > 0 {
		if err := ns.workbook.SetLastAlarm(column, now); err != nil {
			return result, apperrors.NewStorageError("write LastAlarm", err)
		}
		result.Stamped = true
	}
	return result, nil
}

// RouteStaleness batches the messages of every stale column per recipient and sends
// one email per recipient in first appearance order.
func (ns *NotificationService) RouteStaleness(ctx context.Context, now time.Time) (*models.StalenessResult, error) {
	result := &models.StalenessResult{}

	snapshot, err := ns.workbook.Snapshot()
	if err != nil {
		return result, apperrors.NewStorageError("read summary", err)
	}

	buffers := make(map[string][]string)
	for _, column := range summary.PopulatedColumns(snapshot, ns.config.Summary.FirstColumn) {
		row := summary.RowAt(snapshot, column)
		if !row.Stale {
			continue
		}
		result.StaleColumns = append(result.StaleColumns, column)

		message := fmt.Sprintf("Sensor '%s' hasn't reported data since %s", row.SensorName, row.LastUpdate)
		for _, email := range row.StaleRecipients {
			if _, seen := buffers[email]; !seen {
				result.Recipients = append(result.Recipients, email)
			}
			buffers[email] = append(buffers[email], message)
		}
	}

	subject := orDefault(ns.config.Alerts.StaleSubject, defaultStaleSubject)
	for _, email := range result.Recipients {
		err := ns.mailer.Send(ctx, &models.Message{To: email, Subject: subject, HTMLBody: strings.Join(buffers[email], "<br>")})
		if err != nil {
			ns.logger.Errorf(providers.TypeMail, "Staleness alert to %s failed: %s", email, err)
			ns.metrics.IncNotificationFailures(kindStale)
			result.Failed++
			continue
		}
		ns.metrics.IncNotificationsSent(kindStale)
		result.Sent++
	}

	for _, column := range result.StaleColumns {
		if err := ns.workbook.SetLastAlarm(column, now); err != nil {
			return result, apperrors.NewStorageError("write LastAlarm", err)
		}
		if err := ns.workbook.SetLastStaleAlarm(column, now); err != nil {
			return result, apperrors.NewStorageError("write LastStaleAlarm", err)
		}
	}
	if len(result.StaleColumns) > 0 {
		ns.logger.Infof(providers.TypeSweep, "Stale columns %v, %d of %d alerts sent", result.StaleColumns, result.Sent, len(result.Recipients))
	}
	return result, nil
}

func NewNotificationService(config *structures.Config, workbook interfaces.WorkbookInterface, mailer mail.MailerInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) NotificationServiceInterface {
	return &NotificationService{
		config:   config,
		workbook: workbook,
		mailer:   mailer,
		metrics:  metrics,
		logger:   logger,
	}
}

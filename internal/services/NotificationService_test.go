package services

import (
	"context"
	"errors"
	apperrors "sensordigest/internal/errors"
	"sensordigest/internal/models"
	"sensordigest/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alarmFixture() *fixture {
	f := newFixture()
	f.wb.Set(models.FieldSendAlarmEmail, 2, "TRUE")
	f.wb.Set(models.FieldEmailAddresses, 2, "a@x.org; ;b@x.org ")
	f.wb.Set(models.FieldAlarmMessage, 2, `Too humid\nCheck the vent`)
	return f
}

func TestRouteViolations_SendsPerRecipient(t *testing.T) {
	f := alarmFixture()

	result, err := f.notifications.RouteViolations(context.Background(), "Hornet", testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.True(t, result.Stamped)

	require.Len(t, f.mailer.Sent, 2)
	assert.Equal(t, "a@x.org", f.mailer.Sent[0].To)
	assert.Equal(t, "b@x.org", f.mailer.Sent[1].To)
	assert.Equal(t, "Humidity sensor Hornet Alarm", f.mailer.Sent[0].Subject)
	assert.Equal(t, "Sensor: Hornet<br>Too humid<br>Check the vent<br><br>Date: 2026-01-10 12:00:00", f.mailer.Sent[0].HTMLBody)

	assert.Equal(t, []int{2}, f.wb.AlarmStamps)
	assert.Equal(t, testNow.Format(testutil.TimeLayout), f.wb.Field(models.FieldLastAlarm, 2))
	assert.Equal(t, 2, f.metrics.Sent[kindViolation])
}

func TestRouteViolations_FlagOff(t *testing.T) {
	f := alarmFixture()
	f.wb.Set(models.FieldSendAlarmEmail, 2, "FALSE")

	result, err := f.notifications.RouteViolations(context.Background(), "Hornet", testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
	assert.Empty(t, f.mailer.Sent)
	assert.Empty(t, f.wb.AlarmStamps)
}

func TestRouteViolations_UnknownSensor(t *testing.T) {
	f := alarmFixture()

	result, err := f.notifications.RouteViolations(context.Background(), "Moth", testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Column)
	assert.Empty(t, f.mailer.Sent)
}

func TestRouteViolations_PartialFailureStillStamps(t *testing.T) {
	f := alarmFixture()
	f.mailer.Fail["a@x.org"] = true

	result, err := f.notifications.RouteViolations(context.Background(), "Hornet", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.Stamped)
	assert.Equal(t, 2, f.mailer.Attempt)
}

func TestRouteViolations_AllFailedNoStamp(t *testing.T) {
	f := alarmFixture()
	f.mailer.Fail["a@x.org"] = true
	f.mailer.Fail["b@x.org"] = true

	result, err := f.notifications.RouteViolations(context.Background(), "Hornet", testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.False(t, result.Stamped)
	assert.Empty(t, f.wb.AlarmStamps)
	assert.Equal(t, 2, f.metrics.Failed[kindViolation])
}

func TestRouteViolations_SnapshotError(t *testing.T) {
	f := alarmFixture()
	f.wb.SnapshotErr = errors.New("locked")

	_, err := f.notifications.RouteViolations(context.Background(), "Hornet", testNow)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeStorage, apperrors.TypeOf(err))
}

func staleFixture() *fixture {
	f := newFixture()
	f.wb.Set(models.FieldSensorStaleEmail, 2, "TRUE")
	f.wb.Set(models.FieldSensorStaleEmail, 3, "TRUE")
	f.wb.Set(models.FieldLastUpdate, 2, "2026-01-01 08:00:00")
	f.wb.Set(models.FieldLastUpdate, 3, "2026-01-02 09:00:00")
	f.wb.Set(models.FieldEmailAddresses, 2, "a@x.org")
	f.wb.Set(models.FieldEmailAddresses, 3, "a@x.org;c@x.org")
	return f
}

func TestRouteStaleness_FanIn(t *testing.T) {
	f := staleFixture()

	result, err := f.notifications.RouteStaleness(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, result.StaleColumns)
	assert.Equal(t, []string{"a@x.org", "c@x.org"}, result.Recipients)

	toA := f.mailer.To("a@x.org")
	require.Len(t, toA, 1)
	assert.Equal(t, "Humidity sensor not reporting", toA[0].Subject)
	assert.Equal(t,
		"Sensor 'Hornet' hasn't reported data since 2026-01-01 08:00:00<br>Sensor 'Wasp' hasn't reported data since 2026-01-02 09:00:00",
		toA[0].HTMLBody)

	toC := f.mailer.To("c@x.org")
	require.Len(t, toC, 1)
	assert.Equal(t, "Sensor 'Wasp' hasn't reported data since 2026-01-02 09:00:00", toC[0].HTMLBody)

	assert.Len(t, f.mailer.Sent, 2)
	assert.Equal(t, []int{2, 3}, f.wb.AlarmStamps)
}

func TestRouteStaleness_StampsDespiteFailures(t *testing.T) {
	f := staleFixture()
	f.mailer.Fail["a@x.org"] = true
	f.mailer.Fail["c@x.org"] = true

	result, err := f.notifications.RouteStaleness(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, []int{2, 3}, f.wb.AlarmStamps)
}

func TestRouteStaleness_OnlyFlaggedColumns(t *testing.T) {
	f := staleFixture()
	f.wb.Set(models.FieldSensorStaleEmail, 3, "FALSE")

	result, err := f.notifications.RouteStaleness(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, result.StaleColumns)
	assert.Equal(t, []string{"a@x.org"}, result.Recipients)
	assert.Empty(t, f.mailer.To("c@x.org"))
	assert.Equal(t, []int{2}, f.wb.AlarmStamps)
}

func TestRouteStaleness_StaleAlarmRow(t *testing.T) {
	f := staleFixture()
	f.wb.EnableStaleAlarmRow()

	_, err := f.notifications.RouteStaleness(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, f.wb.StaleStamps)
	assert.Equal(t, testNow.Format(testutil.TimeLayout), f.wb.Field(models.FieldLastStaleAlarm, 3))
}

func TestRouteStaleness_NothingStale(t *testing.T) {
	f := newFixture()

	result, err := f.notifications.RouteStaleness(context.Background(), testNow)
	require.NoError(t, err)
	assert.Empty(t, result.StaleColumns)
	assert.Empty(t, f.mailer.Sent)
	assert.Empty(t, f.wb.AlarmStamps)
}

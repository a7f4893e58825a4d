package services

import (
	"context"
	"errors"
	"sensordigest/internal/models"
	"sensordigest/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lastSent = time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local)

func digestFixture() *fixture {
	f := newFixture().withBlock()
	f.subscribe(2, "a@x.org", "Hornet")
	f.subscribe(3, "b@x.org", "Wasp")
	f.wb.SetDigestState(lastSent.Format(testutil.TimeLayout), "7")
	return f
}

func TestMaybeSendDigest_NotDueYet(t *testing.T) {
	f := digestFixture()
	before := f.wb.LastSummary()

	result, err := f.digest.MaybeSendDigest(context.Background(), lastSent.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, "not due", result.Reason)
	assert.True(t, lastSent.AddDate(0, 0, 7).Equal(result.NextDue))
	assert.Empty(t, f.mailer.Sent)
	assert.Equal(t, 0, f.wb.SummaryWrites)
	assert.Equal(t, before, f.wb.LastSummary())
	assert.Equal(t, 0, f.charts.Calls)
}

func TestMaybeSendDigest_ExactlyDueIsSkipped(t *testing.T) {
	f := digestFixture()

	result, err := f.digest.MaybeSendDigest(context.Background(), lastSent.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, f.mailer.Sent)
}

func TestMaybeSendDigest_Due(t *testing.T) {
	f := digestFixture()
	now := lastSent.AddDate(0, 0, 8)

	result, err := f.digest.MaybeSendDigest(context.Background(), now)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, []string{"a@x.org", "b@x.org"}, result.Recipients)
	assert.Equal(t, 2, result.Sent)

	require.Len(t, f.mailer.To("a@x.org"), 1)
	require.Len(t, f.mailer.To("b@x.org"), 1)
	assert.Equal(t, "Humidity sensor weekly summary", f.mailer.Sent[0].Subject)
	assert.Equal(t, 1, f.wb.SummaryWrites)
	assert.Equal(t, now.Format(testutil.TimeLayout), f.wb.LastSummary())
	assert.Equal(t, 1, f.metrics.Digests["sent"])

	// the moved marker makes the next run a no-op
	again, err := f.digest.MaybeSendDigest(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Len(t, f.mailer.Sent, 2)
}

func TestMaybeSendDigest_WildcardChartForEveryone(t *testing.T) {
	f := digestFixture()

	_, err := f.digest.MaybeSendDigest(context.Background(), lastSent.AddDate(0, 0, 8))
	require.NoError(t, err)

	for _, email := range []string{"a@x.org", "b@x.org"} {
		msg := f.mailer.To(email)[0]
		titles := imageTitles(f.charts.Assets, msg.InlineImages)
		assert.Contains(t, titles, "Everything Overview", email)
	}
	a := f.mailer.To("a@x.org")[0]
	assert.Equal(t, []string{"Hornet Humidity", "Everything Overview"}, imageTitles(f.charts.Assets, a.InlineImages))
	assert.Equal(t, "chart0", a.InlineImages[0].ContentID)
	assert.Equal(t, "chart1", a.InlineImages[1].ContentID)
}

func TestMaybeSendDigest_SendFailureStillMovesMarker(t *testing.T) {
	f := digestFixture()
	f.mailer.Fail["a@x.org"] = true
	now := lastSent.AddDate(0, 0, 8)

	result, err := f.digest.MaybeSendDigest(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, f.wb.SummaryWrites)
	assert.Equal(t, now.Format(testutil.TimeLayout), f.wb.LastSummary())
}

func TestMaybeSendDigest_MalformedStateFailsSafe(t *testing.T) {
	tests := []struct {
		name      string
		last      string
		frequency string
	}{
		{"bad frequency", lastSent.Format(testutil.TimeLayout), "weekly"},
		{"missing frequency", lastSent.Format(testutil.TimeLayout), ""},
		{"bad last summary", "sometime", "7"},
		{"missing last summary", "", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := digestFixture()
			f.wb.SetDigestState(tt.last, tt.frequency)

			result, err := f.digest.MaybeSendDigest(context.Background(), lastSent.AddDate(1, 0, 0))
			require.NoError(t, err)
			assert.True(t, result.Skipped)
			assert.NotEmpty(t, result.Reason)
			assert.Empty(t, f.mailer.Sent)
			assert.Equal(t, 0, f.wb.SummaryWrites)
		})
	}
}

func TestMaybeSendDigest_SnapshotErrorFailsSafe(t *testing.T) {
	f := digestFixture()
	f.wb.SnapshotErr = errors.New("locked")

	result, err := f.digest.MaybeSendDigest(context.Background(), lastSent.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, f.mailer.Sent)
}

func TestMaybeSendDigest_ChartsUnavailable(t *testing.T) {
	f := digestFixture()
	f.charts.Err = errors.New("render failed")

	result, err := f.digest.MaybeSendDigest(context.Background(), lastSent.AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Empty(t, f.mailer.Sent[0].InlineImages)
}

func TestMaybeSendDigest_MarkerWriteFailure(t *testing.T) {
	f := digestFixture()
	f.wb.SetErr = errors.New("read only")

	_, err := f.digest.MaybeSendDigest(context.Background(), lastSent.AddDate(0, 0, 8))
	assert.Error(t, err)
	assert.Len(t, f.mailer.Sent, 2)
}

func TestCompose_FirstMatchAttachesOnce(t *testing.T) {
	f := newFixture()
	sub := &models.Subscription{
		Email:      "a@x.org",
		PlotTitles: []string{"Hornet", "Hornet Humidity"},
		HTMLTable:  "<table></table>",
	}

	body, images := f.digest.Compose(sub, f.charts.Assets)
	require.Len(t, images, 2)
	assert.Equal(t, "chart0", images[0].ContentID)
	assert.Equal(t, []byte("png:Hornet Humidity"), images[0].Data)
	assert.Equal(t, []byte("png:Everything Overview"), images[1].Data)
	assert.Equal(t,
		"<b>Weekly humidity sensor summary email</b><br><table></table><br><br>"+
			"<p align='center'><img src='cid:chart0'></p>"+
			"<p align='center'><img src='cid:chart1'></p>",
		body)
}

func TestCompose_EmptyPlotTitleMatchesEveryChart(t *testing.T) {
	f := newFixture()
	sub := &models.Subscription{Email: "a@x.org", PlotTitles: []string{""}}

	_, images := f.digest.Compose(sub, f.charts.Assets)
	require.Len(t, images, 3)
	assert.Equal(t, []string{"Hornet Humidity", "Wasp Humidity", "Everything Overview"}, imageTitles(f.charts.Assets, images))
	assert.Equal(t, "chart2", images[2].ContentID)
}

func TestCompose_NoPlotTitlesMatchesWildcardsOnly(t *testing.T) {
	f := newFixture()
	sub := &models.Subscription{Email: "a@x.org"}

	_, images := f.digest.Compose(sub, f.charts.Assets)
	require.Len(t, images, 1)
	assert.Equal(t, "Everything Overview", imageTitles(f.charts.Assets, images)[0])
}

func TestCompose_AllMarkerIsCaseSensitive(t *testing.T) {
	f := newFixture()
	assets := testutil.NewStaticCharts("All sensors", "overall trend").Assets
	sub := &models.Subscription{Email: "a@x.org", PlotTitles: []string{"Hornet"}}

	_, images := f.digest.Compose(sub, assets)
	require.Len(t, images, 1)
	assert.Equal(t, []byte("png:All sensors"), images[0].Data)
}

func imageTitles(assets []*models.ChartAsset, images []models.InlineImage) []string {
	var titles []string
	for _, img := range images {
		for _, asset := range assets {
			if string(asset.Image) == string(img.Data) {
				titles = append(titles, asset.Title)
			}
		}
	}
	return titles
}

func TestCompose_BannerFromConfig(t *testing.T) {
	f := newFixture()
	f.conf.Digest.Banner = "<h1>Hive report</h1>"

	body, _ := f.digest.Compose(&models.Subscription{HTMLTable: "<table></table>"}, nil)
	assert.True(t, strings.HasPrefix(body, "<h1>Hive report</h1><table></table>"))
}

package charts

import (
	"bytes"
	"image/png"
	"sensordigest/internal/models"
	"sensordigest/internal/structures"
	"sensordigest/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededWorkbook(t *testing.T) *testutil.MemoryWorkbook {
	t.Helper()
	wb := testutil.NewMemoryWorkbook("Hornet", "Wasp")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		for _, sensor := range []string{"Hornet", "Wasp"} {
			_, err := wb.AppendRecord(&models.SensorRecord{
				SensorName: sensor,
				Timestamp:  base.Add(time.Duration(i) * time.Hour),
				Temps:      [3]string{"10", "12", "14"},
				Humids:     [3]string{"40", "55", "70"},
			})
			require.NoError(t, err)
		}
	}
	return wb
}

func TestChartProvider_Charts_ConfigOrder(t *testing.T) {
	conf := &structures.Config{Charts: []structures.ChartConfig{
		{Title: "Hornet Humidity", Sensors: []string{"Hornet"}, Metric: MetricHumidity},
		{Title: "Everything Overview", Metric: MetricTemperature},
	}}
	cp := NewChartProvider(conf, seededWorkbook(t), testutil.NewMockCache(), &testutil.MockLogger{})

	assets, err := cp.Charts()
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "Hornet Humidity", assets[0].Title)
	assert.Equal(t, "Everything Overview", assets[1].Title)
	assert.Equal(t, ContentTypePNG, assets[0].ContentType)

	for _, asset := range assets {
		cfg, err := png.DecodeConfig(bytes.NewReader(asset.Image))
		require.NoError(t, err, asset.Title)
		assert.Equal(t, chartWidth, cfg.Width)
		assert.Equal(t, chartHeight, cfg.Height)
	}
}

func TestChartProvider_Charts_SkipsChartWithoutData(t *testing.T) {
	conf := &structures.Config{Charts: []structures.ChartConfig{
		{Title: "Ghost Humidity", Sensors: []string{"Ghost"}},
		{Title: "Hornet Humidity", Sensors: []string{"Hornet"}},
	}}
	cp := NewChartProvider(conf, seededWorkbook(t), testutil.NewMockCache(), &testutil.MockLogger{})

	assets, err := cp.Charts()
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "Hornet Humidity", assets[0].Title)
}

func TestChartProvider_Charts_UsesCache(t *testing.T) {
	conf := &structures.Config{Charts: []structures.ChartConfig{{Title: "Hornet Humidity", Sensors: []string{"Hornet"}}}}
	cache := testutil.NewMockCache()
	cp := NewChartProvider(conf, seededWorkbook(t), cache, &testutil.MockLogger{})

	first, err := cp.Charts()
	require.NoError(t, err)
	cached, ok := cache.Get("chart:Hornet Humidity")
	require.True(t, ok)
	assert.Equal(t, first[0].Image, cached)

	cache.Set("chart:Hornet Humidity", []byte("cached"))
	second, err := cp.Charts()
	require.NoError(t, err)
	assert.Equal(t, "cached", string(second[0].Image))
}

func TestToPoints_SkipsNonNumeric(t *testing.T) {
	records := []*models.SensorRecord{
		{Timestamp: time.Unix(200, 0), Humids: [3]string{"", "bad", ""}},
		{Timestamp: time.Unix(100, 0), Humids: [3]string{"", "51.5", ""}},
	}
	points := toPoints(records, MetricHumidity)
	require.Len(t, points, 1)
	assert.Equal(t, 51.5, points[0].Value)
}

func TestRenderPNG_NoData(t *testing.T) {
	_, err := RenderPNG("Empty", "%", []Series{{Name: "Hornet"}})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderPNG_SinglePoint(t *testing.T) {
	image, err := RenderPNG("One reading", "°", []Series{
		{Name: "Hornet", Points: []Point{{Time: time.Unix(100, 0), Value: 20}}},
	})
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(image))
	assert.NoError(t, err)
}

// Package charts renders digest chart images from the sensor logs.
package charts

import (
	"errors"
	"fmt"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/storage/interfaces"
	"sensordigest/internal/structures"
	"strconv"
	"strings"
)

const (
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"

	ContentTypePNG = "image/png"
	defaultPoints  = 48
)

type ChartProviderInterface interface {
	Charts() ([]*models.ChartAsset, error)
}

type ChartProvider struct {
	charts   []structures.ChartConfig
	workbook interfaces.WorkbookInterface
	cache    providers.CacheProviderInterface
	logger   providers.Logger
}

func NewChartProvider(conf *structures.Config, workbook interfaces.WorkbookInterface, cache providers.CacheProviderInterface, logger providers.Logger) ChartProviderInterface {
	return &ChartProvider{
		charts:   conf.Charts,
		workbook: workbook,
		cache:    cache,
		logger:   logger,
	}
}

// Charts returns one asset per configured chart in configuration order. Charts
// whose sensors have no plottable readings yet are left out.
func (cp *ChartProvider) Charts() ([]*models.ChartAsset, error) {
	assets := make([]*models.ChartAsset, 0, len(cp.charts))
	for _, chart := range cp.charts {
		key := "chart:" + chart.Title
		if image, ok := cp.cache.Get(key); ok {
			assets = append(assets, &models.ChartAsset{Title: chart.Title, ContentType: ContentTypePNG, Image: image})
			continue
		}

		image, err := cp.render(chart)
		if errors.Is(err, ErrNoData) {
			cp.logger.Debugf(providers.TypeSweep, "Chart %q has no data yet", chart.Title)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("render chart %q: %w", chart.Title, err)
		}
		cp.cache.Set(key, image)
		assets = append(assets, &models.ChartAsset{Title: chart.Title, ContentType: ContentTypePNG, Image: image})
	}
	return assets, nil
}

func (cp *ChartProvider) render(chart structures.ChartConfig) ([]byte, error) {
	sensors := chart.Sensors
	if len(sensors) == 0 {
		sensors = cp.workbook.Sensors()
	}
	points := chart.Points
	if points <= 0 {
		points = defaultPoints
	}

	unit := "%"
	if chart.Metric == MetricTemperature {
		unit = "°"
	}

	series := make([]Series, 0, len(sensors))
	for _, sensor := range sensors {
		records, err := cp.workbook.ReadRecords(sensor, points)
		if err != nil {
			return nil, err
		}
		series = append(series, Series{Name: sensor, Points: toPoints(records, chart.Metric)})
	}
	cp.logger.Debugf(providers.TypeSweep, "Rendered chart %q from %d sensors", chart.Title, len(series))
	return RenderPNG(chart.Title, unit, series)
}

// toPoints plots the mean reading of each record. Rows without a numeric mean are skipped.
func toPoints(records []*models.SensorRecord, metric string) []Point {
	out := make([]Point, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		raw := rec.Humids[1]
		if metric == MetricTemperature {
			raw = rec.Temps[1]
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			continue
		}
		out = append(out, Point{Time: rec.Timestamp, Value: v})
	}
	return out
}

package services

import (
	"sensordigest/internal/models"
	"sensordigest/internal/storage"
	"sensordigest/internal/structures"
	"sensordigest/internal/testutil"
	"time"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.Local)

func testConfig() *structures.Config {
	return &structures.Config{
		Summary: structures.SummaryConfig{TimeLayout: testutil.TimeLayout},
	}
}

type fixture struct {
	conf          *structures.Config
	wb            *testutil.MemoryWorkbook
	mailer        *testutil.RecordingMailer
	charts        *testutil.StaticCharts
	metrics       *testutil.MockMetrics
	logger        *testutil.MockLogger
	ingest        IngestServiceInterface
	notifications NotificationServiceInterface
	reports       ReportServiceInterface
	digest        DigestServiceInterface
	pipeline      PipelineServiceInterface
}

// newFixture wires every service over an in-memory workbook holding Hornet (column 2)
// and Wasp (column 3).
func newFixture() *fixture {
	f := &fixture{
		conf:    testConfig(),
		wb:      testutil.NewMemoryWorkbook("Hornet", "Wasp"),
		mailer:  &testutil.RecordingMailer{Fail: map[string]bool{}},
		charts:  testutil.NewStaticCharts("Hornet Humidity", "Wasp Humidity", "Everything Overview"),
		metrics: &testutil.MockMetrics{},
		logger:  &testutil.MockLogger{},
	}
	f.ingest = NewIngestService(f.conf, f.wb, f.metrics, f.logger)
	f.notifications = NewNotificationService(f.conf, f.wb, f.mailer, f.metrics, f.logger)
	f.reports = NewReportService(f.conf)
	f.digest = NewDigestService(f.conf, f.wb, f.reports, f.charts, f.mailer, f.metrics, f.logger)
	archiver := storage.NewArchiver(f.conf, f.wb, &testutil.MockCompressor{}, f.logger)
	f.pipeline = NewPipelineService(f.conf, f.wb, f.ingest, f.notifications, f.reports, f.digest, f.charts, archiver, f.metrics, f.logger)
	return f
}

func (f *fixture) subscribe(column int, emails, chartTitle string) *fixture {
	f.wb.Set(models.FieldEmailAddresses, column, emails)
	f.wb.Set(models.FieldChartTitles, column, chartTitle)
	return f
}

func (f *fixture) withBlock() *fixture {
	f.wb.SetBlock("#ffffff",
		[]string{"Sensor", "Hornet", "Wasp"},
		[]string{"Humidity", "81", "40"},
		[]string{"Temp", "20", "21"},
	)
	return f
}

func hornetPayload() *models.IngestPayload {
	return &models.IngestPayload{
		Name:         "Hornet",
		Date:         "2024-01-01",
		BadValues:    "1",
		MinTemp:      "40",
		MeanTemp:     "43",
		MaxTemp:      "101",
		MinHumidity:  "-3",
		MeanHumidity: "51",
		MaxHumidity:  "55",
	}
}

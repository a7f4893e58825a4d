//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"sensordigest/internal"
	"sensordigest/internal/charts"
	"sensordigest/internal/controllers"
	"sensordigest/internal/mail"
	"sensordigest/internal/providers"
	"sensordigest/internal/scheduler"
	"sensordigest/internal/services"
	"sensordigest/internal/storage"
	"sensordigest/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewExcelWorkbook,
		storage.NewZstdCompressor,
		storage.NewArchiver,
		mail.NewMailer,
		charts.NewChartProvider,

		services.NewIngestService,
		services.NewNotificationService,
		services.NewReportService,
		services.NewDigestService,
		services.NewPipelineService,
		scheduler.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

package interfaces

import (
	"context"
	"sensordigest/internal/models"
	"time"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Sweep(ctx context.Context) *models.SweepResult
	LastSweep() time.Time
	Persist() error
}

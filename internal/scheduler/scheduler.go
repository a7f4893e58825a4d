package scheduler

import (
	"context"
	"github.com/roylee0704/gron"
	"go.uber.org/atomic"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/scheduler/interfaces"
	"sensordigest/internal/services"
	storageinterfaces "sensordigest/internal/storage/interfaces"
	"sensordigest/internal/structures"
	"sync"
	"time"
)

type Scheduler struct {
	config    *structures.Config
	logger    providers.Logger
	pipeline  services.PipelineServiceInterface
	workbook  storageinterfaces.WorkbookInterface
	cron      *gron.Cron
	opsMu     sync.Mutex
	lastSweep *atomic.Time
	clock     func() time.Time
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Sweep.Interval

	s.cron.AddFunc(gron.Every(interval), func() {
		s.Sweep(context.Background())
	})

	s.cron.Start()
	s.logger.Infof(providers.TypeSweep, "Sweep scheduled every %s", interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep runs the staleness and digest path once. Overlapping ticks wait for the
// running sweep to finish.
func (s *Scheduler) Sweep(ctx context.Context) *models.SweepResult {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	now := s.clock()
	s.logger.Infof(providers.TypeSweep, "Sweep started")
	result := s.pipeline.Sweep(ctx, now)
	s.lastSweep.Store(now)
	return result
}

func (s *Scheduler) LastSweep() time.Time {
	return s.lastSweep.Load()
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting workbook to %s...", s.config.Workbook.Path)
	err := s.workbook.Flush()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting workbook: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, pipeline services.PipelineServiceInterface, workbook storageinterfaces.WorkbookInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:    config,
		logger:    logger,
		pipeline:  pipeline,
		workbook:  workbook,
		lastSweep: atomic.NewTime(time.Time{}),
		clock:     time.Now,
	}
}

// Package scheduler corre los jobs periódicos de solo lectura. Ninguna
// mutación del almacén pasa por acá: eso queda en el camino del request.
package scheduler

import (
	"github.com/go-co-op/gocron/v2"

	"pet-reminder/internal/domain/pets"
	"pet-reminder/internal/domain/schedules"
	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/logger"
)

// Manager es el dueño del scheduler gocron.
type Manager struct {
	scheduler gocron.Scheduler
	log       *logger.Logger
}

// Start arranca el scheduler con los jobs registrados.
func Start(log *logger.Logger, clk clock.Clock, petsSvc *pets.Service, schedSvc *schedules.Service) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	m := &Manager{scheduler: s, log: log}
	m.registerOverdueSummaryJob(newOverdueSummaryJob(log, clk, petsSvc, schedSvc))

	m.scheduler.Start()
	log.Info("scheduler started")
	return m, nil
}

func (m *Manager) registerOverdueSummaryJob(job *overdueSummaryJob) {
	_, err := m.scheduler.NewJob(
		job.schedule(),
		gocron.NewTask(job.execute),
		gocron.WithName(job.name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		m.log.Error("register job failed", logError(job.name(), err)...)
	}
}

// Stop apaga el scheduler.
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		m.log.Error("scheduler shutdown failed", logError("scheduler", err)...)
		return
	}
	m.log.Info("scheduler stopped")
}

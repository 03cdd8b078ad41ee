package scheduler

import (
	"context"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"pet-reminder/internal/domain/pets"
	"pet-reminder/internal/domain/schedules"
	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/dates"
	"pet-reminder/internal/platform/logger"
)

// overdueSummaryJob loguea una vez al día cuántas tareas vencidas acumula
// cada mascota. Solo lectura.
type overdueSummaryJob struct {
	log      *logger.Logger
	clk      clock.Clock
	petsSvc  *pets.Service
	schedSvc *schedules.Service
}

func newOverdueSummaryJob(log *logger.Logger, clk clock.Clock, petsSvc *pets.Service, schedSvc *schedules.Service) *overdueSummaryJob {
	return &overdueSummaryJob{
		log:      log,
		clk:      clk,
		petsSvc:  petsSvc,
		schedSvc: schedSvc,
	}
}

func (j *overdueSummaryJob) name() string {
	return "overdue-summary"
}

func (j *overdueSummaryJob) schedule() gocron.JobDefinition {
	return gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(8, 0, 0)))
}

func (j *overdueSummaryJob) execute() {
	ctx := context.Background()
	today := j.clk.Today()

	petList, err := j.petsSvc.List(ctx)
	if err != nil {
		j.log.Error("overdue summary: list pets failed", zap.Error(err))
		return
	}

	for _, p := range petList {
		items, err := j.schedSvc.ListByPet(ctx, p.ID)
		if err != nil {
			j.log.Error("overdue summary: list tasks failed", zap.String("pet_id", p.ID), zap.Error(err))
			continue
		}
		overdue := 0
		for _, it := range items {
			if dates.DaysRemaining(it.RemindDate, today) < 0 {
				overdue++
			}
		}
		if overdue > 0 {
			j.log.Info("pet has overdue tasks",
				zap.String("pet_id", p.ID),
				zap.String("label", p.Label),
				zap.Int("overdue", overdue),
			)
		}
	}
}

func logError(name string, err error) []zap.Field {
	return []zap.Field{zap.String("job", name), zap.Error(err)}
}

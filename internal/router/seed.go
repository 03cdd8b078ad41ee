package router

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pet-reminder/internal/domain/history"
	"pet-reminder/internal/domain/pets"
	"pet-reminder/internal/domain/schedules"
	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/dates"
	"pet-reminder/internal/platform/logger"
)

// seedDemo carga las dos mascotas de prueba con tareas vencidas y próximas,
// para arrancar el modo dev con algo que mirar. Best-effort: un fallo solo
// se loguea.
func seedDemo(ctx context.Context, log *logger.Logger, clk clock.Clock, petRepo pets.Repository, schedRepo schedules.Repository, histRepo history.Repository) {
	today := clk.Today()

	type seedPet struct {
		label    string
		birthday string
		gender   pets.Gender
	}
	seeds := []seedPet{
		{label: "测试1", birthday: "2021-03-15", gender: pets.GenderFemale},
		{label: "测试2", birthday: "2019-11-28", gender: pets.GenderMale},
	}

	type seedTask struct {
		templateID string
		dayOffset  int
	}
	tasksByPet := [][]seedTask{
		{{templateID: "bath", dayOffset: -3}, {templateID: "vaccine", dayOffset: 30}},
		{{templateID: "clinic", dayOffset: -1}, {templateID: "groom", dayOffset: -2}},
	}
	historyByPet := []map[string][]string{
		{
			"bath":    {"2024-05-12", "2024-03-30", "2024-02-10"},
			"vaccine": {"2024-01-18", "2023-08-08"},
		},
		{
			"clinic": {"2023-12-09", "2023-08-15"},
			"groom":  {"2024-04-01"},
		},
	}

	for i, sp := range seeds {
		bd, err := dates.ParseISO(sp.birthday)
		if err != nil {
			continue
		}
		age := dates.AgeYears(bd, today)

		p := pets.Profile{
			ID:        uuid.NewString(),
			Label:     sp.label,
			Birthday:  &bd,
			AgeYears:  &age,
			Gender:    sp.gender,
			CreatedAt: clk.Now(),
			UpdatedAt: clk.Now(),
		}
		if err := petRepo.Create(ctx, p); err != nil {
			log.Warn("seed pet failed", zap.String("label", sp.label), zap.Error(err))
			continue
		}

		for _, st := range tasksByPet[i] {
			tpl, ok := schedules.TemplateByID(st.templateID)
			if !ok {
				continue
			}
			it := schedules.Item{
				ID:         uuid.NewString(),
				PetID:      p.ID,
				Title:      tpl.Verb + p.Label + tpl.Action,
				RemindDate: today.AddDate(0, 0, st.dayOffset),
				CreatedAt:  today,
				TemplateID: tpl.ID,
				IconKey:    tpl.IconKey,
			}
			if err := schedRepo.Create(ctx, it); err != nil {
				log.Warn("seed task failed", zap.String("template", st.templateID), zap.Error(err))
			}
		}

		// El historial se inserta del más viejo al más nuevo para que el
		// repo (que antepone) lo deje con el más reciente primero.
		for templateID, isoDates := range historyByPet[i] {
			for j := len(isoDates) - 1; j >= 0; j-- {
				d, err := dates.ParseISO(isoDates[j])
				if err != nil {
					continue
				}
				if err := histRepo.Append(ctx, p.ID, templateID, d); err != nil {
					log.Warn("seed history failed", zap.String("template", templateID), zap.Error(err))
				}
			}
		}
	}

	log.Info("demo data seeded", zap.Int("pets", len(seeds)))
}

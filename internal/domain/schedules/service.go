package schedules

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/dates"
)

var (
	ErrDuplicateSchedule = errors.New("duplicate schedule")
	ErrPastDate          = errors.New("date must be today or later")
	ErrEmptyDate         = errors.New("date required")
	ErrUnknownTemplate   = errors.New("unknown template")
	ErrUnknownPet        = errors.New("pet not found")
	ErrNotFound          = errors.New("task not found")
)

// Service es el almacén de tareas: altas, duplicados, reagendados y agrupado
// por urgencia. La lógica de completar vive en Workflow.
type Service struct {
	repo Repository
	pets PetDirectory
	clk  clock.Clock
}

func NewService(repo Repository, pets PetDirectory, clk clock.Clock) *Service {
	return &Service{
		repo: repo,
		pets: pets,
		clk:  clk,
	}
}

// Add agenda una tarea de un template del catálogo para la mascota dada.
// Rechaza el duplicado exacto (mismo título y misma fecha) antes de insertar.
func (s *Service) Add(ctx context.Context, petID, templateID string, date time.Time) (Item, error) {
	tpl, ok := TemplateByID(templateID)
	if !ok {
		return Item{}, ErrUnknownTemplate
	}
	pet, ok := s.pets.Pet(ctx, petID)
	if !ok {
		return Item{}, ErrUnknownPet
	}

	title := tpl.Verb + pet.Label + tpl.Action
	day := dates.Midnight(date)

	dup, err := s.HasDuplicate(ctx, petID, title, day)
	if err != nil {
		return Item{}, err
	}
	if dup {
		return Item{}, ErrDuplicateSchedule
	}

	it := Item{
		ID:         uuid.NewString(),
		PetID:      petID,
		Title:      title,
		RemindDate: day,
		CreatedAt:  s.clk.Today(),
		TemplateID: tpl.ID,
		IconKey:    tpl.IconKey,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// HasDuplicate reporta si ya existe una tarea con idéntico título y fecha.
func (s *Service) HasDuplicate(ctx context.Context, petID, title string, date time.Time) (bool, error) {
	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return false, err
	}
	day := dates.Midnight(date)
	for _, it := range items {
		if it.Title == title && it.RemindDate.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) Get(ctx context.Context, petID, taskID string) (Item, error) {
	it, err := s.repo.GetByID(ctx, petID, taskID)
	if err != nil {
		return Item{}, ErrNotFound
	}
	return it, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Item, error) {
	return s.repo.ListByPet(ctx, petID)
}

// Remove borra por id; silencioso si la tarea no existe.
func (s *Service) Remove(ctx context.Context, petID, taskID string) error {
	return s.repo.Delete(ctx, petID, taskID)
}

// Reschedule es el camino ad-hoc (menú contextual): exige fecha >= hoy y
// cambia solo RemindDate. No toca CreatedAt; el silencio sí se levanta
// porque la fecha cambió.
func (s *Service) Reschedule(ctx context.Context, petID, taskID string, date time.Time) (Item, error) {
	if date.IsZero() {
		return Item{}, ErrEmptyDate
	}
	day := dates.Midnight(date)
	if day.Before(s.clk.Today()) {
		return Item{}, ErrPastDate
	}

	it, err := s.repo.GetByID(ctx, petID, taskID)
	if err != nil {
		return Item{}, ErrNotFound
	}
	it.RemindDate = day
	it.Muted = false
	if err := s.repo.Update(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// Postpone es el camino del aviso de vencidas: además de la fecha nueva,
// reinicia CreatedAt a hoy y levanta el silencio. Solo exige fecha no vacía.
func (s *Service) Postpone(ctx context.Context, petID, taskID string, date time.Time) (Item, error) {
	if date.IsZero() {
		return Item{}, ErrEmptyDate
	}

	it, err := s.repo.GetByID(ctx, petID, taskID)
	if err != nil {
		return Item{}, ErrNotFound
	}
	it.RemindDate = dates.Midnight(date)
	it.CreatedAt = s.clk.Today()
	it.Muted = false
	if err := s.repo.Update(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// Mute marca la tarea para no volver a avisar su vencimiento.
func (s *Service) Mute(ctx context.Context, petID, taskID string) (Item, error) {
	it, err := s.repo.GetByID(ctx, petID, taskID)
	if err != nil {
		return Item{}, ErrNotFound
	}
	it.Muted = true
	if err := s.repo.Update(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// GroupByUrgency parte items en vencidas (countdown < 0) y próximas (>= 0),
// cada grupo ascendente por countdown. sort.SliceStable conserva el orden de
// inserción en empates.
func GroupByUrgency(items []Item, today time.Time) Grouped {
	var g Grouped
	for _, it := range items {
		if dates.DaysRemaining(it.RemindDate, today) < 0 {
			g.Overdue = append(g.Overdue, it)
		} else {
			g.Upcoming = append(g.Upcoming, it)
		}
	}
	byCountdown := func(list []Item) func(i, j int) bool {
		return func(i, j int) bool {
			return dates.DaysRemaining(list[i].RemindDate, today) < dates.DaysRemaining(list[j].RemindDate, today)
		}
	}
	sort.SliceStable(g.Overdue, byCountdown(g.Overdue))
	sort.SliceStable(g.Upcoming, byCountdown(g.Upcoming))
	return g
}

// SyncTitles regenera los títulos derivados de template tras un cambio de
// apodo (incluido el de cumpleaños). Las tareas sin template quedan igual.
func (s *Service) SyncTitles(ctx context.Context, petID, newLabel string) error {
	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.TemplateID == "" {
			continue
		}
		title := BuildTitle(it.TemplateID, newLabel, it.Title)
		if title == it.Title {
			continue
		}
		it.Title = title
		if err := s.repo.Update(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

// EnsureBirthdayReminder genera o actualiza en sitio el recordatorio anual de
// cumpleaños. Como mucho existe uno por mascota: si ya hay, se actualiza; si
// no, se inserta. Sin mes/día computable no se agenda nada.
func (s *Service) EnsureBirthdayReminder(ctx context.Context, petID, petLabel string, birthday time.Time) error {
	next, ok := dates.NextOccurrence(birthday, s.clk.Today())
	if !ok {
		return nil
	}
	title := BuildTitle(BirthdayTemplateID, petLabel, "")

	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.TemplateID != BirthdayTemplateID {
			continue
		}
		if it.RemindDate.Equal(next) && it.Title == title {
			return nil
		}
		it.Title = title
		it.RemindDate = next
		it.CreatedAt = s.clk.Today()
		it.Muted = false
		return s.repo.Update(ctx, it)
	}

	return s.repo.Create(ctx, Item{
		ID:         uuid.NewString(),
		PetID:      petID,
		Title:      title,
		RemindDate: next,
		CreatedAt:  s.clk.Today(),
		TemplateID: BirthdayTemplateID,
		IconKey:    "play",
	})
}

// RemoveBirthdayReminder borra el recordatorio de cumpleaños si existe.
// Se invoca al limpiar el cumpleaños del perfil: sin fecha no hay forma de
// regenerarlo, así que dejarlo sería una tarea huérfana.
func (s *Service) RemoveBirthdayReminder(ctx context.Context, petID string) error {
	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.TemplateID == BirthdayTemplateID {
			return s.repo.Delete(ctx, petID, it.ID)
		}
	}
	return nil
}

package schedules

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/dates"
	"pet-reminder/internal/platform/logger"
)

var ErrNoPrompt = errors.New("no pending prompt")

// Umbrales del chequeo de completado anticipado.
const (
	earlyRatioThreshold = 0.75
	earlyMinDaysAway    = 7
)

// HistoryAppender registra completados en el historial.
type HistoryAppender interface {
	Append(ctx context.Context, petID, templateID string, date time.Time) error
}

// Workflow orquesta el completado de tareas: intercepción anticipada, caso
// especial de cumpleaños, historial y el aviso de "agendar la próxima".
// Es el dueño del slot único de avisos.
type Workflow struct {
	repo    Repository
	store   *Service
	pets    PetDirectory
	history HistoryAppender
	clk     clock.Clock
	log     *logger.Logger

	slot promptSlot
}

func NewWorkflow(repo Repository, store *Service, pets PetDirectory, history HistoryAppender, clk clock.Clock, log *logger.Logger) *Workflow {
	return &Workflow{
		repo:    repo,
		store:   store,
		pets:    pets,
		history: history,
		clk:     clk,
		log:     log,
	}
}

// CompleteResult es el desenlace de un intento de completar: o terminó, o
// quedó suspendido detrás de un aviso.
type CompleteResult struct {
	Completed bool
	Notice    string
	Prompt    *Prompt
}

// NoticeBirthdayScheduled confirma que el recordatorio quedó agendado para
// el próximo cumpleaños.
const NoticeBirthdayScheduled = "已为下次生日生成提醒"

// Complete intenta completar una tarea. Sin override, una tarea que califica
// para completado anticipado suspende el intento y abre el aviso; el usuario
// reanuda con ResolveEarly.
func (w *Workflow) Complete(ctx context.Context, petID, taskID string, override bool) (CompleteResult, error) {
	it, err := w.store.Get(ctx, petID, taskID)
	if err != nil {
		return CompleteResult{}, err
	}
	today := w.clk.Today()

	if !override && w.qualifiesEarly(it, today) {
		p := Prompt{
			Kind:          PromptEarlyCompletion,
			PetID:         petID,
			TaskID:        taskID,
			Title:         it.Title,
			DaysRemaining: dates.DaysRemaining(it.RemindDate, today),
		}
		if !w.slot.open(p) {
			// Ya hay un aviso visible: este candidato no se muestra.
			return CompleteResult{}, nil
		}
		return CompleteResult{Prompt: w.slot.current()}, nil
	}

	if it.TemplateID == BirthdayTemplateID {
		return w.completeBirthday(ctx, it, today)
	}
	return w.completeOrdinary(ctx, it, today)
}

// completeBirthday nunca borra la tarea: la avanza a la próxima ocurrencia,
// suma un año a la mascota y registra el historial. Sin cumpleaños computable
// no pasa nada.
func (w *Workflow) completeBirthday(ctx context.Context, it Item, today time.Time) (CompleteResult, error) {
	pet, ok := w.pets.Pet(ctx, it.PetID)
	if !ok || pet.Birthday == nil {
		return CompleteResult{}, nil
	}
	next, ok := dates.NextOccurrence(*pet.Birthday, it.RemindDate)
	if !ok {
		return CompleteResult{}, nil
	}

	it.RemindDate = next
	it.CreatedAt = today
	it.Muted = false
	if err := w.repo.Update(ctx, it); err != nil {
		return CompleteResult{}, err
	}

	if err := w.pets.IncrementAge(ctx, it.PetID); err != nil {
		w.log.Warn("increment pet age failed", zap.String("pet_id", it.PetID), zap.Error(err))
	}
	if err := w.history.Append(ctx, it.PetID, BirthdayTemplateID, today); err != nil {
		w.log.Warn("history append failed", zap.String("pet_id", it.PetID), zap.Error(err))
	}

	return CompleteResult{Completed: true, Notice: NoticeBirthdayScheduled}, nil
}

// completeOrdinary borra la tarea de inmediato (el período de gracia visual
// es asunto de la presentación), registra historial y, si el template es del
// catálogo, ofrece agendar la próxima ocurrencia.
func (w *Workflow) completeOrdinary(ctx context.Context, it Item, today time.Time) (CompleteResult, error) {
	if err := w.store.Remove(ctx, it.PetID, it.ID); err != nil {
		return CompleteResult{}, err
	}
	if it.TemplateID != "" {
		if err := w.history.Append(ctx, it.PetID, it.TemplateID, today); err != nil {
			w.log.Warn("history append failed", zap.String("pet_id", it.PetID), zap.Error(err))
		}
	}

	res := CompleteResult{Completed: true}

	tpl, ok := TemplateByID(it.TemplateID)
	if !ok {
		return res, nil
	}
	pet, ok := w.pets.Pet(ctx, it.PetID)
	if !ok {
		return res, nil
	}

	suggested := today
	if it.RemindDate.After(today) {
		suggested = it.RemindDate
	}
	p := Prompt{
		Kind:          PromptNextOccurrence,
		PetID:         it.PetID,
		TemplateID:    tpl.ID,
		IconKey:       tpl.IconKey,
		ActionText:    tpl.Verb + pet.Label + tpl.Action,
		SuggestedDate: suggested,
	}
	if w.slot.open(p) {
		res.Prompt = w.slot.current()
	}
	return res, nil
}

// qualifiesEarly replica la regla de intercepción: sin silencio, con
// CreatedAt, intervalo positivo, fracción transcurrida < 0.75 y más de 7
// días de countdown.
func (w *Workflow) qualifiesEarly(it Item, today time.Time) bool {
	if it.Muted || it.CreatedAt.IsZero() {
		return false
	}
	span := dates.DaysRemaining(it.RemindDate, it.CreatedAt)
	if span <= 0 {
		return false
	}
	elapsed := dates.DaysRemaining(today, it.CreatedAt)
	if elapsed < 0 {
		return false
	}
	ratio := float64(elapsed) / float64(span)
	return ratio < earlyRatioThreshold && dates.DaysRemaining(it.RemindDate, today) > earlyMinDaysAway
}

// ResolveEarly reanuda un intento suspendido: aceptar re-invoca Complete con
// override; declinar deja la tarea intacta. En ambos casos libera el slot.
func (w *Workflow) ResolveEarly(ctx context.Context, accept bool) (CompleteResult, error) {
	p, ok := w.slot.take(PromptEarlyCompletion)
	if !ok {
		return CompleteResult{}, ErrNoPrompt
	}
	if !accept {
		return CompleteResult{}, nil
	}
	return w.Complete(ctx, p.PetID, p.TaskID, true)
}

// SurfaceOverdue se invoca en cada render de la lista de una mascota: con el
// slot libre, la primera tarea vencida y no silenciada (en orden de lista)
// abre el aviso de postergación. Devuelve el aviso visible, si lo hay.
func (w *Workflow) SurfaceOverdue(ctx context.Context, petID string) (*Prompt, error) {
	if cur := w.slot.current(); cur != nil {
		return cur, nil
	}

	items, err := w.store.ListByPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	today := w.clk.Today()
	for _, it := range items {
		if it.Muted || dates.DaysRemaining(it.RemindDate, today) >= 0 {
			continue
		}
		p := Prompt{
			Kind:          PromptOverdue,
			PetID:         petID,
			TaskID:        it.ID,
			Title:         it.Title,
			DaysRemaining: dates.DaysRemaining(it.RemindDate, today),
			SuggestedDate: today,
		}
		w.slot.open(p)
		return w.slot.current(), nil
	}
	return nil, nil
}

// PostponeOverdue resuelve el aviso de vencida reagendando con reinicio de
// CreatedAt. Con fecha vacía el aviso sigue abierto.
func (w *Workflow) PostponeOverdue(ctx context.Context, date time.Time) (Item, error) {
	p := w.slot.current()
	if p == nil || p.Kind != PromptOverdue {
		return Item{}, ErrNoPrompt
	}
	if date.IsZero() {
		return Item{}, ErrEmptyDate
	}

	it, err := w.store.Postpone(ctx, p.PetID, p.TaskID, date)
	if err != nil {
		return Item{}, err
	}
	w.slot.clear()
	return it, nil
}

// MuteOverdue resuelve el aviso silenciando la tarea ("no recordar de nuevo").
func (w *Workflow) MuteOverdue(ctx context.Context) (Item, error) {
	p := w.slot.current()
	if p == nil || p.Kind != PromptOverdue {
		return Item{}, ErrNoPrompt
	}

	it, err := w.store.Mute(ctx, p.PetID, p.TaskID)
	if err != nil {
		return Item{}, err
	}
	w.slot.clear()
	return it, nil
}

// ConfirmNext agenda la próxima ocurrencia ofrecida tras un completado.
// Valida fecha presente, no pasada y sin duplicado; si falla, el aviso sigue
// abierto para corregir la fecha.
func (w *Workflow) ConfirmNext(ctx context.Context, date time.Time) (Item, error) {
	p := w.slot.current()
	if p == nil || p.Kind != PromptNextOccurrence {
		return Item{}, ErrNoPrompt
	}
	if date.IsZero() {
		return Item{}, ErrEmptyDate
	}
	day := dates.Midnight(date)
	if day.Before(w.clk.Today()) {
		return Item{}, ErrPastDate
	}

	dup, err := w.store.HasDuplicate(ctx, p.PetID, p.ActionText, day)
	if err != nil {
		return Item{}, err
	}
	if dup {
		return Item{}, ErrDuplicateSchedule
	}

	it := Item{
		ID:         uuid.NewString(),
		PetID:      p.PetID,
		Title:      p.ActionText,
		RemindDate: day,
		CreatedAt:  w.clk.Today(),
		TemplateID: p.TemplateID,
		IconKey:    p.IconKey,
	}
	if err := w.repo.Create(ctx, it); err != nil {
		return Item{}, err
	}
	w.slot.clear()
	return it, nil
}

// CurrentPrompt expone el aviso visible (render).
func (w *Workflow) CurrentPrompt() *Prompt {
	return w.slot.current()
}

// Dismiss descarta el aviso visible sin efectos.
func (w *Workflow) Dismiss() {
	w.slot.clear()
}

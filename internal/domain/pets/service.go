package pets

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/dates"
	"pet-reminder/internal/ports/settings"
)

// Máximo de caracteres (runas) del apodo; cuenta igual ASCII y CJK.
const LabelMaxRunes = 8

var (
	ErrEmptyLabel      = errors.New("enter a nickname")
	ErrLabelTooLong    = errors.New("nickname too long")
	ErrLabelWhitespace = errors.New("nickname cannot contain spaces")
	ErrDuplicateLabel  = errors.New("duplicate pet name")
	ErrFutureBirthday  = errors.New("birthday cannot be in the future")
	// ErrNoChanges es informativo, no un fallo: el perfil quedó igual.
	ErrNoChanges = errors.New("profile unchanged")
	ErrNotFound  = errors.New("pet not found")
)

type Service struct {
	repo  Repository
	flags settings.Store
	clk   clock.Clock
}

func NewService(repo Repository, flags settings.Store, clk clock.Clock) *Service {
	return &Service{
		repo:  repo,
		flags: flags,
		clk:   clk,
	}
}

// Add crea una mascota con el apodo dado: sin cumpleaños, género unknown.
// Marca el flag has_pet la primera vez (best-effort, no corta el alta).
func (s *Service) Add(ctx context.Context, label string) (Profile, error) {
	trimmed, err := s.validateLabel(ctx, label, "")
	if err != nil {
		return Profile{}, err
	}

	now := s.clk.Now()
	p := Profile{
		ID:        uuid.NewString(),
		Label:     trimmed,
		Gender:    GenderUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}

	if has, err := s.flags.Bool(ctx, settings.KeyHasPet); err == nil && !has {
		_ = s.flags.SetBool(ctx, settings.KeyHasPet, true)
	}
	return p, nil
}

type UpdateInput struct {
	Label    string
	Birthday *time.Time // nil = sin cumpleaños
	Gender   Gender
}

// Change resume qué cambió en un guardado de perfil, para que el caller
// dispare la sincronización de títulos y el recordatorio de cumpleaños.
type Change struct {
	LabelChanged    bool
	BirthdayChanged bool
	BirthdayCleared bool
}

// UpdateProfile aplica el guardado del perfil. Valida el apodo con la misma
// cadena que Add (excluyéndose a sí misma de la unicidad), rechaza cumpleaños
// futuros y reporta ErrNoChanges si nada cambió. La edad se recalcula del
// cumpleaños nuevo, o se limpia junto con él.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateInput) (Profile, Change, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Profile{}, Change{}, ErrNotFound
	}

	trimmed, err := s.validateLabel(ctx, in.Label, id)
	if err != nil {
		return Profile{}, Change{}, err
	}

	gender := in.Gender
	if gender == "" {
		gender = GenderUnknown
	}

	if in.Birthday != nil && dates.Midnight(*in.Birthday).After(s.clk.Today()) {
		return Profile{}, Change{}, ErrFutureBirthday
	}

	ch := Change{
		LabelChanged:    current.Label != trimmed,
		BirthdayChanged: !sameBirthday(current.Birthday, in.Birthday),
	}
	ch.BirthdayCleared = ch.BirthdayChanged && in.Birthday == nil
	genderChanged := current.Gender != gender

	if !ch.LabelChanged && !ch.BirthdayChanged && !genderChanged {
		return current, Change{}, ErrNoChanges
	}

	current.Label = trimmed
	current.Gender = gender
	if in.Birthday != nil {
		bd := dates.Midnight(*in.Birthday)
		age := dates.AgeYears(bd, s.clk.Today())
		current.Birthday = &bd
		current.AgeYears = &age
	} else {
		current.Birthday = nil
		current.AgeYears = nil
	}
	current.UpdatedAt = s.clk.Now()

	if err := s.repo.Update(ctx, current); err != nil {
		return Profile{}, Change{}, err
	}
	return current, ch, nil
}

// IncrementAge suma exactamente 1 año al completar el recordatorio de
// cumpleaños. Baseline: AgeYears actual, o derivado del cumpleaños si falta.
func (s *Service) IncrementAge(ctx context.Context, id string) (Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Profile{}, ErrNotFound
	}

	baseline := 0
	if p.AgeYears != nil {
		baseline = *p.AgeYears
	} else if p.Birthday != nil {
		baseline = dates.AgeYears(*p.Birthday, s.clk.Today())
	}

	next := baseline + 1
	p.AgeYears = &next
	p.UpdatedAt = s.clk.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.repo.List(ctx)
}

// validateLabel aplica la cadena de validación en orden: vacío, largo,
// espacios, duplicado. selfID excluye a la propia mascota de la unicidad.
func (s *Service) validateLabel(ctx context.Context, raw, selfID string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyLabel
	}
	if utf8.RuneCountInString(trimmed) > LabelMaxRunes {
		return "", ErrLabelTooLong
	}
	if strings.ContainsFunc(raw, unicode.IsSpace) {
		return "", ErrLabelWhitespace
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range existing {
		if p.ID != selfID && p.Label == trimmed {
			return "", ErrDuplicateLabel
		}
	}
	return trimmed, nil
}

func sameBirthday(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return dates.Midnight(*a).Equal(dates.Midnight(*b))
}

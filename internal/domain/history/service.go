package history

import (
	"context"
	"time"

	"pet-reminder/internal/platform/dates"
)

// Service es el log de completados, append-only por mascota y template.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append registra un completado. Los completados sin template no dejan
// historial.
func (s *Service) Append(ctx context.Context, petID, templateID string, date time.Time) error {
	if templateID == "" {
		return nil
	}
	return s.repo.Append(ctx, petID, templateID, dates.Midnight(date))
}

func (s *Service) ListByPet(ctx context.Context, petID string) (Record, error) {
	return s.repo.ListByPet(ctx, petID)
}

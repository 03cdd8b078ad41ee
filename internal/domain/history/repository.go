package history

import (
	"context"
	"time"
)

type Repository interface {
	// Append antepone la fecha a la lista del template (más reciente primero).
	Append(ctx context.Context, petID, templateID string, date time.Time) error
	ListByPet(ctx context.Context, petID string) (Record, error)
}

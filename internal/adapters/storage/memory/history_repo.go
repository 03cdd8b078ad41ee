package memory

import (
	"context"
	"sync"
	"time"

	"pet-reminder/internal/domain/history"
)

type historyRepo struct {
	mu    sync.RWMutex
	byPet map[string]map[string][]time.Time
}

func NewHistoryRepo() history.Repository {
	return &historyRepo{
		byPet: make(map[string]map[string][]time.Time),
	}
}

func (r *historyRepo) Append(ctx context.Context, petID, templateID string, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTemplate, ok := r.byPet[petID]
	if !ok {
		byTemplate = make(map[string][]time.Time)
		r.byPet[petID] = byTemplate
	}
	// más reciente primero
	byTemplate[templateID] = append([]time.Time{date}, byTemplate[templateID]...)
	return nil
}

func (r *historyRepo) ListByPet(ctx context.Context, petID string) (history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(history.Record)
	for templateID, list := range r.byPet[petID] {
		cp := make([]time.Time, len(list))
		copy(cp, list)
		out[templateID] = cp
	}
	return out, nil
}

package memory

import (
	"context"
	"errors"
	"sync"

	"pet-reminder/internal/domain/schedules"
)

// scheduleRepo guarda las tareas por mascota en slices: el orden de
// inserción es el desempate estable del agrupado por urgencia.
type scheduleRepo struct {
	mu    sync.RWMutex
	byPet map[string][]schedules.Item
}

func NewScheduleRepo() schedules.Repository {
	return &scheduleRepo{
		byPet: make(map[string][]schedules.Item),
	}
}

func (r *scheduleRepo) Create(ctx context.Context, it schedules.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if it.ID == "" {
		return errors.New("task id required")
	}
	for _, existing := range r.byPet[it.PetID] {
		if existing.ID == it.ID {
			return errors.New("task already exists")
		}
	}
	r.byPet[it.PetID] = append(r.byPet[it.PetID], it)
	return nil
}

func (r *scheduleRepo) Update(ctx context.Context, it schedules.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byPet[it.PetID]
	for i, existing := range list {
		if existing.ID == it.ID {
			list[i] = it
			return nil
		}
	}
	return ErrNotFound
}

func (r *scheduleRepo) Delete(ctx context.Context, petID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byPet[petID]
	for i, existing := range list {
		if existing.ID == id {
			r.byPet[petID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	// no-op si no existe
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, petID, id string) (schedules.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.byPet[petID] {
		if it.ID == id {
			return it, nil
		}
	}
	return schedules.Item{}, ErrNotFound
}

func (r *scheduleRepo) ListByPet(ctx context.Context, petID string) ([]schedules.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byPet[petID]
	out := make([]schedules.Item, len(list))
	copy(out, list)
	return out, nil
}

package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pet-reminder/internal/domain/pets"
)

var ErrNotFound = errors.New("not found")

type petRepo struct {
	mu    sync.RWMutex
	byID  map[string]pets.Profile
	order []string // orden de alta para List estable
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID: make(map[string]pets.Profile),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *petRepo) List(ctx context.Context) ([]pets.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Profile, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

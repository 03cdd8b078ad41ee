package memory

import (
	"context"
	"sync"

	"pet-reminder/internal/ports/settings"
)

type settingsRepo struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func NewSettingsRepo() settings.Store {
	return &settingsRepo{
		flags: make(map[string]bool),
	}
}

func (r *settingsRepo) Bool(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flags[key], nil
}

func (r *settingsRepo) SetBool(ctx context.Context, key string, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags[key] = value
	return nil
}

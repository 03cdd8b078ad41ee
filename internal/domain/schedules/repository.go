package schedules

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, it Item) error
	Update(ctx context.Context, it Item) error
	// Delete es no-op si el id no existe.
	Delete(ctx context.Context, petID, id string) error
	GetByID(ctx context.Context, petID, id string) (Item, error)
	// ListByPet preserva el orden de inserción.
	ListByPet(ctx context.Context, petID string) ([]Item, error)
}

// Pet es la vista mínima del perfil que necesita este módulo.
type Pet struct {
	ID       string
	Label    string
	Birthday *time.Time
}

// PetDirectory resuelve mascotas sin acoplar este paquete al registro.
type PetDirectory interface {
	Pet(ctx context.Context, id string) (Pet, bool)
	// IncrementAge suma un año al completar el recordatorio de cumpleaños.
	IncrementAge(ctx context.Context, id string) error
}

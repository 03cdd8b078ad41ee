package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Profile) error
	Update(ctx context.Context, p Profile) error
	GetByID(ctx context.Context, id string) (Profile, error)
	// List devuelve los perfiles en orden de alta.
	List(ctx context.Context) ([]Profile, error)
}

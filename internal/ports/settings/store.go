// Package settings define el puerto hacia el almacén de flags persistidos
// (clave/valor booleano). El core solo lo escribe; la UI lo consulta para
// suprimir hints de onboarding.
package settings

import "context"

// KeyHasPet se marca en true tras el primer alta exitosa de mascota.
const KeyHasPet = "has_pet"

type Store interface {
	Bool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

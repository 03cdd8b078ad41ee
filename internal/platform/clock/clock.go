// Package clock abstrae la hora actual para que el dominio sea determinista
// en tests y soporte la fecha de debug configurada externamente.
package clock

import (
	"time"

	"pet-reminder/internal/platform/dates"
)

type Clock interface {
	Now() time.Time
	// Today devuelve el día civil actual (medianoche UTC).
	Today() time.Time
}

type systemClock struct{}

// System devuelve el reloj de pared.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Today() time.Time {
	return dates.Midnight(time.Now())
}

type fixedClock struct {
	t time.Time
}

// Fixed devuelve un reloj congelado en t (fecha de debug o tests).
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

// FixedISO construye un reloj fijo desde una fecha YYYY-MM-DD.
func FixedISO(s string) (Clock, error) {
	t, err := dates.ParseISO(s)
	if err != nil {
		return nil, err
	}
	return fixedClock{t: t}, nil
}

// DebugOverride es el reloj del modo debug: fijo en la fecha configurada,
// acotada para no quedar detrás del día real. Los tests que necesitan
// congelar el pasado usan Fixed/FixedISO directo.
func DebugOverride(s string) (Clock, error) {
	t, err := dates.ParseISO(s)
	if err != nil {
		return nil, err
	}
	return fixedClock{t: dates.ClampToFloor(t, time.Now())}, nil
}

func (c fixedClock) Now() time.Time {
	return c.t
}

func (c fixedClock) Today() time.Time {
	return dates.Midnight(c.t)
}

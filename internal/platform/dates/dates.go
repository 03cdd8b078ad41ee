// Package dates concentra la aritmética de fechas civiles del dominio:
// countdowns, edades y recurrencias anuales. Todas las funciones trabajan
// sobre fechas normalizadas a medianoche UTC (día civil, sin hora).
package dates

import "time"

const isoLayout = "2006-01-02"

// ParseISO parsea una fecha YYYY-MM-DD como día civil (medianoche UTC).
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Midnight(t), nil
}

// FormatISO formatea un día civil como YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(isoLayout)
}

// Midnight trunca a medianoche UTC. Comparar dos resultados de Midnight
// siempre da diferencias en múltiplos exactos de 24h (sin DST).
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysRemaining devuelve los días de calendario entre today y target.
// Positivo = futuro, cero = hoy, negativo = vencido.
func DaysRemaining(target, today time.Time) int {
	diff := Midnight(target).Sub(Midnight(today))
	return int(diff / (24 * time.Hour))
}

// ClampToFloor devuelve floor si d es anterior, d en otro caso.
func ClampToFloor(d, floor time.Time) time.Time {
	if Midnight(d).Before(Midnight(floor)) {
		return Midnight(floor)
	}
	return Midnight(d)
}

// AgeYears calcula años cumplidos de birth a asOf, con piso en 0.
func AgeYears(birth, asOf time.Time) int {
	b := Midnight(birth)
	a := Midnight(asOf)

	years := a.Year() - b.Year()
	if a.Month() < b.Month() || (a.Month() == b.Month() && a.Day() < b.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// NextOccurrence devuelve la próxima ocurrencia anual del mes/día de monthDay
// estrictamente posterior a asOf. Si monthDay es cero no hay nada que
// programar y devuelve false. El 29 de febrero en años no bisiestos se
// normaliza al 1 de marzo (comportamiento de time.Date).
func NextOccurrence(monthDay, asOf time.Time) (time.Time, bool) {
	if monthDay.IsZero() {
		return time.Time{}, false
	}

	ref := Midnight(asOf)
	candidate := time.Date(ref.Year(), monthDay.Month(), monthDay.Day(), 0, 0, 0, 0, time.UTC)
	if !candidate.After(ref) {
		candidate = time.Date(ref.Year()+1, monthDay.Month(), monthDay.Day(), 0, 0, 0, 0, time.UTC)
	}
	return candidate, true
}

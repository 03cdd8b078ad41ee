package history

import "time"

// Record agrupa las fechas de completado de una mascota por template,
// cada lista con la más reciente primero. Nunca se poda.
type Record map[string][]time.Time

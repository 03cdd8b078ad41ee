package schedules

import "time"

// Item es una tarea agendada para una mascota. RemindDate y CreatedAt son
// días civiles (medianoche UTC).
type Item struct {
	ID    string
	PetID string

	Title      string
	RemindDate time.Time
	CreatedAt  time.Time

	TemplateID string
	IconKey    string
	Muted      bool
}

// Grouped es la lista de tareas partida por urgencia, cada grupo ordenado
// ascendente por countdown con desempate estable por orden de inserción.
type Grouped struct {
	Overdue  []Item
	Upcoming []Item
}

package schedules

import (
	"sync"
	"time"
)

// PromptKind etiqueta la unión de avisos pendientes.
type PromptKind string

const (
	PromptEarlyCompletion PromptKind = "early_completion"
	PromptOverdue         PromptKind = "overdue"
	PromptNextOccurrence  PromptKind = "next_occurrence"
)

// Prompt es el aviso activo que espera decisión del usuario. A lo sumo hay
// uno visible; el slot único lo garantiza.
type Prompt struct {
	Kind  PromptKind
	PetID string

	// EarlyCompletion / Overdue
	TaskID        string
	Title         string
	DaysRemaining int

	// NextOccurrence
	TemplateID string
	IconKey    string
	ActionText string

	// Fecha sugerida del formulario del aviso.
	SuggestedDate time.Time
}

// promptSlot es el dueño único del aviso visible: abrir con uno ya activo no
// hace nada (el segundo candidato simplemente no se muestra).
type promptSlot struct {
	mu     sync.Mutex
	active *Prompt
}

func (s *promptSlot) open(p Prompt) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return false
	}
	s.active = &p
	return true
}

func (s *promptSlot) current() *Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	cp := *s.active
	return &cp
}

// take devuelve y libera el aviso activo solo si es del tipo pedido.
func (s *promptSlot) take(kind PromptKind) (Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.Kind != kind {
		return Prompt{}, false
	}
	p := *s.active
	s.active = nil
	return p, true
}

func (s *promptSlot) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
}

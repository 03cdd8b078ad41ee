package schedules

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/dates"
)

func RegisterRoutes(r chi.Router, svc *Service, wf *Workflow, clk clock.Clock) {
	r.Get("/templates", listTemplatesHandler())

	r.Route("/pets/{petID}/schedules", func(sr chi.Router) {
		sr.Get("/", listSchedulesHandler(svc, wf, clk))
		sr.Post("/", createScheduleHandler(svc, clk))
		sr.Post("/{taskID}/complete", completeTaskHandler(wf, clk))
		sr.Post("/{taskID}/reschedule", rescheduleTaskHandler(svc, clk))
		sr.Post("/{taskID}/postpone", postponeTaskHandler(svc, clk))
		sr.Post("/{taskID}/mute", muteTaskHandler(svc, clk))
		sr.Delete("/{taskID}", deleteTaskHandler(svc))
	})

	r.Route("/prompts", func(pr chi.Router) {
		pr.Get("/", currentPromptHandler(wf))
		pr.Post("/early", resolveEarlyHandler(wf, clk))
		pr.Post("/overdue", resolveOverdueHandler(wf, clk))
		pr.Post("/next", resolveNextHandler(wf, clk))
	})
}

type templateResponse struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Verb    string `json:"verb"`
	Action  string `json:"action"`
	IconKey string `json:"icon_key"`
}

type itemResponse struct {
	ID            string `json:"id"`
	PetID         string `json:"pet_id"`
	Title         string `json:"title"`
	RemindDate    string `json:"remind_date"`
	CreatedAt     string `json:"created_at"`
	TemplateID    string `json:"template_id,omitempty"`
	IconKey       string `json:"icon_key,omitempty"`
	Muted         bool   `json:"muted"`
	DaysRemaining int    `json:"days_remaining"`
}

type promptResponse struct {
	Kind          PromptKind `json:"kind"`
	PetID         string     `json:"pet_id"`
	TaskID        string     `json:"task_id,omitempty"`
	Title         string     `json:"title,omitempty"`
	DaysRemaining int        `json:"days_remaining,omitempty"`
	TemplateID    string     `json:"template_id,omitempty"`
	IconKey       string     `json:"icon_key,omitempty"`
	ActionText    string     `json:"action_text,omitempty"`
	SuggestedDate string     `json:"suggested_date,omitempty"`
}

type groupedResponse struct {
	Overdue  []itemResponse  `json:"overdue"`
	Upcoming []itemResponse  `json:"upcoming"`
	Prompt   *promptResponse `json:"prompt,omitempty"`
}

type completeResponse struct {
	Completed bool            `json:"completed"`
	Notice    string          `json:"notice,omitempty"`
	Prompt    *promptResponse `json:"prompt,omitempty"`
}

func toItemResponse(it Item, today time.Time) itemResponse {
	return itemResponse{
		ID:            it.ID,
		PetID:         it.PetID,
		Title:         it.Title,
		RemindDate:    dates.FormatISO(it.RemindDate),
		CreatedAt:     dates.FormatISO(it.CreatedAt),
		TemplateID:    it.TemplateID,
		IconKey:       it.IconKey,
		Muted:         it.Muted,
		DaysRemaining: dates.DaysRemaining(it.RemindDate, today),
	}
}

func toPromptResponse(p *Prompt) *promptResponse {
	if p == nil {
		return nil
	}
	out := &promptResponse{
		Kind:          p.Kind,
		PetID:         p.PetID,
		TaskID:        p.TaskID,
		Title:         p.Title,
		DaysRemaining: p.DaysRemaining,
		TemplateID:    p.TemplateID,
		IconKey:       p.IconKey,
		ActionText:    p.ActionText,
	}
	if !p.SuggestedDate.IsZero() {
		out.SuggestedDate = dates.FormatISO(p.SuggestedDate)
	}
	return out
}

func listTemplatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out := make([]templateResponse, 0, len(templates))
		for _, t := range Templates() {
			out = append(out, templateResponse{
				ID:      t.ID,
				Label:   t.Label,
				Verb:    t.Verb,
				Action:  t.Action,
				IconKey: t.IconKey,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listSchedulesHandler godoc
// @Summary Lista agrupada por urgencia
// @Description Devuelve vencidas y próximas ordenadas por countdown. Cada render dispara el aviso de vencidas si el slot está libre.
// @Tags schedules
// @Produce json
// @Success 200 {object} groupedResponse
// @Router /pets/{petID}/schedules [get]
func listSchedulesHandler(svc *Service, wf *Workflow, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		items, err := svc.ListByPet(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		prompt, err := wf.SurfaceOverdue(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		today := clk.Today()
		grouped := GroupByUrgency(items, today)

		out := groupedResponse{
			Overdue:  make([]itemResponse, 0, len(grouped.Overdue)),
			Upcoming: make([]itemResponse, 0, len(grouped.Upcoming)),
			Prompt:   toPromptResponse(prompt),
		}
		for _, it := range grouped.Overdue {
			out.Overdue = append(out.Overdue, toItemResponse(it, today))
		}
		for _, it := range grouped.Upcoming {
			out.Upcoming = append(out.Upcoming, toItemResponse(it, today))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type createScheduleRequest struct {
	TemplateID string `json:"template_id"`
	RemindDate string `json:"remind_date"` // YYYY-MM-DD
}

func createScheduleHandler(svc *Service, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		var req createScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		date, err := dates.ParseISO(req.RemindDate)
		if err != nil {
			http.Error(w, "remind_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		it, err := svc.Add(r.Context(), petID, req.TemplateID, date)
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toItemResponse(it, clk.Today()))
	}
}

type completeRequest struct {
	// Override salta el chequeo de completado anticipado (respuesta "sí"
	// del aviso, o reintento explícito).
	Override bool `json:"override"`
}

func completeTaskHandler(wf *Workflow, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		taskID := chi.URLParam(r, "taskID")

		var req completeRequest
		if r.Body != nil && r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		res, err := wf.Complete(r.Context(), petID, taskID, req.Override)
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, completeResponse{
			Completed: res.Completed,
			Notice:    res.Notice,
			Prompt:    toPromptResponse(res.Prompt),
		})
	}
}

type rescheduleRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func rescheduleTaskHandler(svc *Service, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		taskID := chi.URLParam(r, "taskID")

		var req rescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		date, err := dates.ParseISO(req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		it, err := svc.Reschedule(r.Context(), petID, taskID, date)
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponse(it, clk.Today()))
	}
}

// postponeTaskHandler es la misma operación que resuelve el aviso de vencidas,
// expuesta directa: fecha nueva con reinicio de CreatedAt.
func postponeTaskHandler(svc *Service, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		taskID := chi.URLParam(r, "taskID")

		var req rescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		date, err := dates.ParseISO(req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		it, err := svc.Postpone(r.Context(), petID, taskID, date)
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponse(it, clk.Today()))
	}
}

func muteTaskHandler(svc *Service, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, err := svc.Mute(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "taskID"))
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponse(it, clk.Today()))
	}
}

func deleteTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "taskID")); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func currentPromptHandler(wf *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		p := wf.CurrentPrompt()
		if p == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, toPromptResponse(p))
	}
}

type resolveEarlyRequest struct {
	Complete bool `json:"complete"`
}

func resolveEarlyHandler(wf *Workflow, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveEarlyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := wf.ResolveEarly(r.Context(), req.Complete)
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, completeResponse{
			Completed: res.Completed,
			Notice:    res.Notice,
			Prompt:    toPromptResponse(res.Prompt),
		})
	}
}

type resolveOverdueRequest struct {
	Postpone bool   `json:"postpone"`
	Date     string `json:"date"` // YYYY-MM-DD, requerido al postergar
}

func resolveOverdueHandler(wf *Workflow, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveOverdueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if !req.Postpone {
			it, err := wf.MuteOverdue(r.Context())
			if err != nil {
				writeScheduleError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toItemResponse(it, clk.Today()))
			return
		}

		var date time.Time
		if req.Date != "" {
			d, err := dates.ParseISO(req.Date)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = d
		}
		it, err := wf.PostponeOverdue(r.Context(), date)
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponse(it, clk.Today()))
	}
}

type resolveNextRequest struct {
	Confirm bool   `json:"confirm"`
	Date    string `json:"date"` // YYYY-MM-DD, requerido al confirmar
}

func resolveNextHandler(wf *Workflow, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveNextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if !req.Confirm {
			wf.Dismiss()
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var date time.Time
		if req.Date != "" {
			d, err := dates.ParseISO(req.Date)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = d
		}
		it, err := wf.ConfirmNext(r.Context(), date)
		if err != nil {
			writeScheduleError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toItemResponse(it, clk.Today()))
	}
}

func writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDuplicateSchedule):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownPet):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoPrompt):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

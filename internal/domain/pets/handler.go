package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pet-reminder/internal/domain/schedules"
	"pet-reminder/internal/platform/dates"
	"pet-reminder/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, schedSvc *schedules.Service, log *logger.Logger) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc, schedSvc, log))
	})
}

type createPetRequest struct {
	Label string `json:"label"`
}

// updatePetRequest es el guardado completo del perfil (el formulario envía
// todos los campos). Birthday vacío limpia el cumpleaños.
type updatePetRequest struct {
	Label    string `json:"label"`
	Birthday string `json:"birthday"` // YYYY-MM-DD, "" = sin cumpleaños
	Gender   string `json:"gender"`
}

type petResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Birthday string `json:"birthday,omitempty"`
	AgeYears *int   `json:"age_years,omitempty"`
	Gender   Gender `json:"gender"`
}

type noticeResponse struct {
	Notice string `json:"notice"`
}

func toPetResponse(p Profile) petResponse {
	out := petResponse{
		ID:       p.ID,
		Label:    p.Label,
		AgeYears: p.AgeYears,
		Gender:   p.Gender,
	}
	if p.Birthday != nil {
		out.Birthday = dates.FormatISO(*p.Birthday)
	}
	return out
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description Alta con apodo; género unknown y sin cumpleaños. Marca el flag has_pet la primera vez.
// @Tags pets
// @Accept json
// @Produce json
// @Success 201 {object} petResponse
// @Failure 400 {string} string "validación de apodo"
// @Failure 409 {string} string "duplicate pet name"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Add(r.Context(), req.Label)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler aplica el guardado del perfil y dispara los efectos
// cruzados: resync de títulos tras renombre y alta/baja del recordatorio de
// cumpleaños. Un efecto cruzado que falla no revierte el guardado: se loguea.
func updatePetHandler(svc *Service, schedSvc *schedules.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var birthday *time.Time
		if req.Birthday != "" {
			t, err := dates.ParseISO(req.Birthday)
			if err != nil {
				http.Error(w, "birthday must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			birthday = &t
		}

		p, ch, err := svc.UpdateProfile(r.Context(), petID, UpdateInput{
			Label:    req.Label,
			Birthday: birthday,
			Gender:   ParseGender(req.Gender),
		})
		if errors.Is(err, ErrNoChanges) {
			writeJSON(w, http.StatusOK, noticeResponse{Notice: err.Error()})
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if ch.LabelChanged {
			if err := schedSvc.SyncTitles(r.Context(), petID, p.Label); err != nil {
				log.Warn("sync titles failed", zap.String("pet_id", petID), zap.Error(err))
			}
		}
		if ch.BirthdayCleared {
			if err := schedSvc.RemoveBirthdayReminder(r.Context(), petID); err != nil {
				log.Warn("remove birthday reminder failed", zap.String("pet_id", petID), zap.Error(err))
			}
		} else if p.Birthday != nil {
			if err := schedSvc.EnsureBirthdayReminder(r.Context(), petID, p.Label, *p.Birthday); err != nil {
				log.Warn("ensure birthday reminder failed", zap.String("pet_id", petID), zap.Error(err))
			}
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateLabel):
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

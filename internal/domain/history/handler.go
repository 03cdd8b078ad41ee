package history

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pet-reminder/internal/platform/dates"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/pets/{petID}/history", listHistoryHandler(svc))
}

// listHistoryHandler devuelve el historial por template, cada lista con la
// fecha más reciente primero.
func listHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make(map[string][]string, len(rec))
		for templateID, list := range rec {
			ds := make([]string, 0, len(list))
			for _, d := range list {
				ds = append(ds, dates.FormatISO(d))
			}
			out[templateID] = ds
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(out)
	}
}

package pets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pet-reminder/internal/domain/schedules"
	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/logger"
)

// brokenScheduleRepo falla en toda lectura: simula un almacén de tareas caído
// para verificar que el guardado de perfil no se revierte por efectos cruzados.
type brokenScheduleRepo struct{}

func (brokenScheduleRepo) Create(context.Context, schedules.Item) error { return errors.New("down") }
func (brokenScheduleRepo) Update(context.Context, schedules.Item) error { return errors.New("down") }
func (brokenScheduleRepo) Delete(context.Context, string, string) error { return errors.New("down") }
func (brokenScheduleRepo) GetByID(context.Context, string, string) (schedules.Item, error) {
	return schedules.Item{}, errors.New("down")
}
func (brokenScheduleRepo) ListByPet(context.Context, string) ([]schedules.Item, error) {
	return nil, errors.New("down")
}

type stubDirectory struct{}

func (stubDirectory) Pet(context.Context, string) (schedules.Pet, bool) {
	return schedules.Pet{}, false
}
func (stubDirectory) IncrementAge(context.Context, string) error { return nil }

func TestUpdatePetHandler_LogsSideEffectFailures(t *testing.T) {
	clk, err := clock.FixedISO("2024-06-01")
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	svc := NewService(newTestRepo(), newTestFlags(), clk)
	schedSvc := schedules.NewService(brokenScheduleRepo{}, stubDirectory{}, clk)

	core, logs := observer.New(zapcore.WarnLevel)
	r := chi.NewRouter()
	RegisterRoutes(r, svc, schedSvc, logger.NewFromCore(core))

	p, err := svc.Add(context.Background(), "测试1")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Renombre + cumpleaños: el resync de títulos y el recordatorio fallan
	// contra el repo caído, pero el guardado responde 200 igual.
	body, _ := json.Marshal(map[string]string{
		"label":    "豆豆",
		"birthday": "2021-03-15",
		"gender":   "female",
	})
	req := httptest.NewRequest(http.MethodPatch, "/pets/"+p.ID, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	got, err := svc.GetByID(context.Background(), p.ID)
	if err != nil || got.Label != "豆豆" {
		t.Fatalf("profile = %+v, %v", got, err)
	}

	want := map[string]bool{
		"sync titles failed":              false,
		"ensure birthday reminder failed": false,
	}
	for _, e := range logs.All() {
		if _, ok := want[e.Message]; ok {
			want[e.Message] = true
		}
	}
	for msg, seen := range want {
		if !seen {
			t.Fatalf("missing warn %q; got %d entries", msg, logs.Len())
		}
	}
}

package router

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	mem "pet-reminder/internal/adapters/storage/memory"
	pg "pet-reminder/internal/adapters/storage/postgres"
	"pet-reminder/internal/domain/history"
	"pet-reminder/internal/domain/pets"
	"pet-reminder/internal/domain/schedules"
	"pet-reminder/internal/middleware"
	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/logger"
	"pet-reminder/internal/ports/settings"
)

type Options struct {
	Log   *logger.Logger
	Clock clock.Clock

	// Opcional: si viene, flags e historial persisten en Postgres; las
	// mascotas y tareas de la sesión viven siempre en memoria.
	DB *sql.DB

	// SeedDemo carga las mascotas y tareas de demostración (modo dev).
	SeedDemo bool
}

// Deps expone los servicios ya cableados, para el scheduler y los tests.
type Deps struct {
	Handler   http.Handler
	Pets      *pets.Service
	Schedules *schedules.Service
	Workflow  *schedules.Workflow
	Clock     clock.Clock
}

// petDirectory adapta el registro de mascotas al puerto que consume el
// módulo de tareas.
type petDirectory struct {
	svc *pets.Service
}

func (d petDirectory) Pet(ctx context.Context, id string) (schedules.Pet, bool) {
	p, err := d.svc.GetByID(ctx, id)
	if err != nil {
		return schedules.Pet{}, false
	}
	return schedules.Pet{ID: p.ID, Label: p.Label, Birthday: p.Birthday}, true
}

func (d petDirectory) IncrementAge(ctx context.Context, id string) error {
	_, err := d.svc.IncrementAge(ctx, id)
	return err
}

func New(opts Options) Deps {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Repos: el estado de sesión es in-memory; flags e historial pueden
	// persistir en Postgres si hay DSN.
	petRepo := mem.NewPetRepo()
	schedRepo := mem.NewScheduleRepo()

	var (
		histRepo  history.Repository
		flagStore settings.Store
	)
	if opts.DB != nil {
		histRepo = pg.NewHistoryRepo(opts.DB)
		flagStore = pg.NewSettingsRepo(opts.DB)
	} else {
		histRepo = mem.NewHistoryRepo()
		flagStore = mem.NewSettingsRepo()
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo, flagStore, clk)
	dir := petDirectory{svc: petsSvc}
	schedSvc := schedules.NewService(schedRepo, dir, clk)
	histSvc := history.NewService(histRepo)
	wf := schedules.NewWorkflow(schedRepo, schedSvc, dir, histSvc, clk, log)

	if opts.SeedDemo {
		seedDemo(context.Background(), log, clk, petRepo, schedRepo, histRepo)
	}

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, schedSvc, log)
	schedules.RegisterRoutes(r, schedSvc, wf, clk)
	history.RegisterRoutes(r, histSvc)

	return Deps{
		Handler:   r,
		Pets:      petsSvc,
		Schedules: schedSvc,
		Workflow:  wf,
		Clock:     clk,
	}
}

// NewRouter es la forma corta para quien solo necesita el handler.
func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}

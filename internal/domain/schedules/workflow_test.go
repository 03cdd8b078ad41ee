package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-reminder/internal/platform/logger"
)

type historyEntry struct {
	petID      string
	templateID string
	date       time.Time
}

type testHistory struct {
	entries []historyEntry
}

func (h *testHistory) Append(_ context.Context, petID, templateID string, date time.Time) error {
	h.entries = append(h.entries, historyEntry{petID: petID, templateID: templateID, date: date})
	return nil
}

type workflowFixture struct {
	repo    *testRepo
	dir     *testDirectory
	svc     *Service
	history *testHistory
	wf      *Workflow
}

func newWorkflowFixture(today string, pets ...Pet) *workflowFixture {
	clk := mustClock(today)
	repo := newTestRepo()
	dir := newTestDirectory(pets...)
	svc := NewService(repo, dir, clk)
	history := &testHistory{}
	wf := NewWorkflow(repo, svc, dir, history, clk, logger.Nop())
	return &workflowFixture{repo: repo, dir: dir, svc: svc, history: history, wf: wf}
}

func TestComplete_EarlyPrompt(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	// Creada 2024-01-01, recuerda 2024-02-01: 9 de 31 días transcurridos y
	// countdown 22 — califica para intercepción.
	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-02-01"), CreatedAt: mustDate(t, "2024-01-01")}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.wf.Complete(ctx, "p1", "t1", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Completed {
		t.Fatal("should be intercepted, not completed")
	}
	if res.Prompt == nil || res.Prompt.Kind != PromptEarlyCompletion {
		t.Fatalf("Prompt = %+v", res.Prompt)
	}
	if res.Prompt.DaysRemaining != 22 {
		t.Fatalf("DaysRemaining = %d, want 22", res.Prompt.DaysRemaining)
	}

	// La tarea sigue intacta mientras el aviso espera.
	if items, _ := f.svc.ListByPet(ctx, "p1"); len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
}

func TestComplete_EarlyOverride(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-02-01"), CreatedAt: mustDate(t, "2024-01-01")}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.wf.Complete(ctx, "p1", "t1", true)
	if err != nil {
		t.Fatalf("Complete override: %v", err)
	}
	if !res.Completed {
		t.Fatal("override should complete")
	}
}

func TestComplete_NoEarlyWhenClose(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	// Countdown 5 <= 7: no hay intercepción aunque la fracción sea baja.
	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-01-15"), CreatedAt: mustDate(t, "2024-01-09")}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.wf.Complete(ctx, "p1", "t1", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.Completed {
		t.Fatal("close task should complete without interception")
	}
}

func TestComplete_NoEarlyWhenMuted(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-02-01"), CreatedAt: mustDate(t, "2024-01-01"), Muted: true}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.wf.Complete(ctx, "p1", "t1", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.Completed {
		t.Fatal("muted task should complete without interception")
	}
}

func TestResolveEarly(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-02-01"), CreatedAt: mustDate(t, "2024-01-01")}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Declinar: tarea intacta, slot libre.
	if _, err := f.wf.Complete(ctx, "p1", "t1", false); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := f.wf.ResolveEarly(ctx, false); err != nil {
		t.Fatalf("ResolveEarly decline: %v", err)
	}
	if items, _ := f.svc.ListByPet(ctx, "p1"); len(items) != 1 {
		t.Fatal("decline should leave task intact")
	}

	// Aceptar: completa de verdad y encadena el aviso de próxima ocurrencia.
	if _, err := f.wf.Complete(ctx, "p1", "t1", false); err != nil {
		t.Fatalf("re-Complete: %v", err)
	}
	res, err := f.wf.ResolveEarly(ctx, true)
	if err != nil {
		t.Fatalf("ResolveEarly accept: %v", err)
	}
	if !res.Completed {
		t.Fatal("accept should complete")
	}
	if items, _ := f.svc.ListByPet(ctx, "p1"); len(items) != 0 {
		t.Fatal("accept should remove the task")
	}
	if len(f.history.entries) != 1 || f.history.entries[0].templateID != "bath" {
		t.Fatalf("history = %+v", f.history.entries)
	}

	// Sin aviso abierto del tipo correcto: ErrNoPrompt.
	f.wf.Dismiss()
	if _, err := f.wf.ResolveEarly(ctx, true); !errors.Is(err, ErrNoPrompt) {
		t.Fatalf("err = %v, want ErrNoPrompt", err)
	}
}

func TestComplete_Ordinary_NextPrompt(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	// Vencida: la fecha sugerida para la próxima se eleva a hoy.
	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-01-05"), CreatedAt: mustDate(t, "2024-01-01")}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.wf.Complete(ctx, "p1", "t1", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.Completed {
		t.Fatal("expected completion")
	}
	if res.Prompt == nil || res.Prompt.Kind != PromptNextOccurrence {
		t.Fatalf("Prompt = %+v", res.Prompt)
	}
	if res.Prompt.ActionText != "带测试1去洗澡" {
		t.Fatalf("ActionText = %q", res.Prompt.ActionText)
	}
	if !res.Prompt.SuggestedDate.Equal(mustDate(t, "2024-01-10")) {
		t.Fatalf("SuggestedDate = %v, want today", res.Prompt.SuggestedDate)
	}
	if len(f.history.entries) != 1 || !f.history.entries[0].date.Equal(mustDate(t, "2024-01-10")) {
		t.Fatalf("history = %+v", f.history.entries)
	}
}

func TestComplete_Ordinary_SuggestsOriginalFutureDate(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-01-12"), CreatedAt: mustDate(t, "2024-01-09")}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.wf.Complete(ctx, "p1", "t1", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Prompt == nil || !res.Prompt.SuggestedDate.Equal(mustDate(t, "2024-01-12")) {
		t.Fatalf("SuggestedDate = %+v, want original remind date", res.Prompt)
	}
}

func TestComplete_Birthday(t *testing.T) {
	bd := mustDate(t, "2021-03-15")
	f := newWorkflowFixture("2024-03-15", Pet{ID: "p1", Label: "测试1", Birthday: &bd})
	ctx := context.Background()

	it := Item{ID: "t1", PetID: "p1", Title: "测试1的生日提醒", TemplateID: BirthdayTemplateID, IconKey: "play",
		RemindDate: mustDate(t, "2024-03-15"), CreatedAt: mustDate(t, "2024-01-01")}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := f.wf.Complete(ctx, "p1", "t1", true)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.Completed {
		t.Fatal("expected completion")
	}
	if res.Notice != NoticeBirthdayScheduled {
		t.Fatalf("Notice = %q", res.Notice)
	}
	if res.Prompt != nil {
		t.Fatal("birthday completion should not chain a next prompt")
	}

	// La tarea no se borra: avanza al próximo cumpleaños.
	items, _ := f.svc.ListByPet(ctx, "p1")
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if !items[0].RemindDate.Equal(mustDate(t, "2025-03-15")) {
		t.Fatalf("RemindDate = %v, want 2025-03-15", items[0].RemindDate)
	}

	if f.dir.increments["p1"] != 1 {
		t.Fatalf("increments = %d, want 1", f.dir.increments["p1"])
	}
	if len(f.history.entries) != 1 || f.history.entries[0].templateID != BirthdayTemplateID {
		t.Fatalf("history = %+v", f.history.entries)
	}
}

func TestSurfaceOverdue(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	// La primera vencida está silenciada; avisa la segunda en orden de lista.
	muted := Item{ID: "m", PetID: "p1", Title: "muted", RemindDate: mustDate(t, "2024-01-02"), Muted: true}
	over := Item{ID: "o", PetID: "p1", Title: "带测试1去就诊", TemplateID: "clinic",
		RemindDate: mustDate(t, "2024-01-05"), CreatedAt: mustDate(t, "2024-01-01")}
	upcoming := Item{ID: "u", PetID: "p1", Title: "soon", RemindDate: mustDate(t, "2024-01-20")}
	for _, it := range []Item{muted, over, upcoming} {
		if err := f.repo.Create(ctx, it); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	p, err := f.wf.SurfaceOverdue(ctx, "p1")
	if err != nil {
		t.Fatalf("SurfaceOverdue: %v", err)
	}
	if p == nil || p.Kind != PromptOverdue || p.TaskID != "o" {
		t.Fatalf("Prompt = %+v", p)
	}
	if p.DaysRemaining != -5 {
		t.Fatalf("DaysRemaining = %d, want -5", p.DaysRemaining)
	}
	if !p.SuggestedDate.Equal(mustDate(t, "2024-01-10")) {
		t.Fatalf("SuggestedDate = %v, want today", p.SuggestedDate)
	}

	// Re-render con el slot ocupado devuelve el mismo aviso, sin abrir otro.
	again, err := f.wf.SurfaceOverdue(ctx, "p1")
	if err != nil {
		t.Fatalf("SurfaceOverdue again: %v", err)
	}
	if again == nil || again.TaskID != "o" {
		t.Fatalf("again = %+v", again)
	}
}

func TestSurfaceOverdue_NoneWhenAllMutedOrUpcoming(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	muted := Item{ID: "m", PetID: "p1", Title: "muted", RemindDate: mustDate(t, "2024-01-02"), Muted: true}
	upcoming := Item{ID: "u", PetID: "p1", Title: "soon", RemindDate: mustDate(t, "2024-01-20")}
	for _, it := range []Item{muted, upcoming} {
		if err := f.repo.Create(ctx, it); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	p, err := f.wf.SurfaceOverdue(ctx, "p1")
	if err != nil {
		t.Fatalf("SurfaceOverdue: %v", err)
	}
	if p != nil {
		t.Fatalf("Prompt = %+v, want nil", p)
	}
}

func TestPostponeOverdue(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	over := Item{ID: "o", PetID: "p1", Title: "带测试1去就诊", TemplateID: "clinic",
		RemindDate: mustDate(t, "2024-01-05"), CreatedAt: mustDate(t, "2024-01-01")}
	if err := f.repo.Create(ctx, over); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := f.wf.SurfaceOverdue(ctx, "p1"); err != nil {
		t.Fatalf("SurfaceOverdue: %v", err)
	}

	// Fecha vacía: el aviso sigue abierto.
	if _, err := f.wf.PostponeOverdue(ctx, time.Time{}); !errors.Is(err, ErrEmptyDate) {
		t.Fatalf("empty date err = %v, want ErrEmptyDate", err)
	}
	if f.wf.CurrentPrompt() == nil {
		t.Fatal("prompt should stay open after validation failure")
	}

	it, err := f.wf.PostponeOverdue(ctx, mustDate(t, "2024-01-20"))
	if err != nil {
		t.Fatalf("PostponeOverdue: %v", err)
	}
	if !it.RemindDate.Equal(mustDate(t, "2024-01-20")) {
		t.Fatalf("RemindDate = %v", it.RemindDate)
	}
	if !it.CreatedAt.Equal(mustDate(t, "2024-01-10")) {
		t.Fatalf("CreatedAt = %v, want today", it.CreatedAt)
	}
	if f.wf.CurrentPrompt() != nil {
		t.Fatal("prompt should be cleared after postpone")
	}
}

func TestMuteOverdue(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	over := Item{ID: "o", PetID: "p1", Title: "带测试1去就诊", TemplateID: "clinic",
		RemindDate: mustDate(t, "2024-01-05"), CreatedAt: mustDate(t, "2024-01-01")}
	if err := f.repo.Create(ctx, over); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := f.wf.SurfaceOverdue(ctx, "p1"); err != nil {
		t.Fatalf("SurfaceOverdue: %v", err)
	}

	it, err := f.wf.MuteOverdue(ctx)
	if err != nil {
		t.Fatalf("MuteOverdue: %v", err)
	}
	if !it.Muted {
		t.Fatal("expected muted")
	}
	if f.wf.CurrentPrompt() != nil {
		t.Fatal("prompt should be cleared after mute")
	}

	// La tarea silenciada no vuelve a avisar.
	p, err := f.wf.SurfaceOverdue(ctx, "p1")
	if err != nil {
		t.Fatalf("SurfaceOverdue tras mute: %v", err)
	}
	if p != nil {
		t.Fatalf("Prompt = %+v, want nil", p)
	}
}

func TestConfirmNext(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-01-05"), CreatedAt: mustDate(t, "2024-01-01")}
	if err := f.repo.Create(ctx, it); err != nil {
		t.Fatalf("seed: %v", err)
	}
	res, err := f.wf.Complete(ctx, "p1", "t1", false)
	if err != nil || res.Prompt == nil {
		t.Fatalf("Complete: res=%+v err=%v", res, err)
	}

	// Validaciones que dejan el aviso abierto.
	if _, err := f.wf.ConfirmNext(ctx, time.Time{}); !errors.Is(err, ErrEmptyDate) {
		t.Fatalf("empty err = %v", err)
	}
	if _, err := f.wf.ConfirmNext(ctx, mustDate(t, "2024-01-01")); !errors.Is(err, ErrPastDate) {
		t.Fatalf("past err = %v", err)
	}
	if f.wf.CurrentPrompt() == nil {
		t.Fatal("prompt should survive validation failures")
	}

	got, err := f.wf.ConfirmNext(ctx, mustDate(t, "2024-02-01"))
	if err != nil {
		t.Fatalf("ConfirmNext: %v", err)
	}
	if got.Title != "带测试1去洗澡" || got.TemplateID != "bath" {
		t.Fatalf("item = %+v", got)
	}
	if !got.CreatedAt.Equal(mustDate(t, "2024-01-10")) {
		t.Fatalf("CreatedAt = %v, want today", got.CreatedAt)
	}
	if f.wf.CurrentPrompt() != nil {
		t.Fatal("prompt should be cleared after confirm")
	}
}

func TestConfirmNext_DuplicateKeepsPrompt(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	it := Item{ID: "t1", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-01-05"), CreatedAt: mustDate(t, "2024-01-01")}
	other := Item{ID: "t2", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-02-01"), CreatedAt: mustDate(t, "2024-01-01")}
	for _, seed := range []Item{it, other} {
		if err := f.repo.Create(ctx, seed); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := f.wf.Complete(ctx, "p1", "t1", false); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if _, err := f.wf.ConfirmNext(ctx, mustDate(t, "2024-02-01")); !errors.Is(err, ErrDuplicateSchedule) {
		t.Fatalf("dup err = %v, want ErrDuplicateSchedule", err)
	}
	if f.wf.CurrentPrompt() == nil {
		t.Fatal("prompt should stay open on duplicate")
	}

	// Con otra fecha sí entra.
	if _, err := f.wf.ConfirmNext(ctx, mustDate(t, "2024-02-02")); err != nil {
		t.Fatalf("ConfirmNext: %v", err)
	}
}

func TestPromptSlot_SingleOccupancy(t *testing.T) {
	f := newWorkflowFixture("2024-01-10", Pet{ID: "p1", Label: "测试1"})
	ctx := context.Background()

	early := Item{ID: "e", PetID: "p1", Title: "带测试1去洗澡", TemplateID: "bath", IconKey: "bath",
		RemindDate: mustDate(t, "2024-02-01"), CreatedAt: mustDate(t, "2024-01-01")}
	over := Item{ID: "o", PetID: "p1", Title: "带测试1去就诊", TemplateID: "clinic",
		RemindDate: mustDate(t, "2024-01-05"), CreatedAt: mustDate(t, "2024-01-01")}
	for _, seed := range []Item{early, over} {
		if err := f.repo.Create(ctx, seed); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// El aviso anticipado ocupa el slot; el render no abre el de vencida.
	if _, err := f.wf.Complete(ctx, "p1", "e", false); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	p, err := f.wf.SurfaceOverdue(ctx, "p1")
	if err != nil {
		t.Fatalf("SurfaceOverdue: %v", err)
	}
	if p == nil || p.Kind != PromptEarlyCompletion {
		t.Fatalf("Prompt = %+v, want the open early prompt", p)
	}

	// Resolver un aviso de otro tipo: ErrNoPrompt, el slot no se toca.
	if _, err := f.wf.PostponeOverdue(ctx, mustDate(t, "2024-01-20")); !errors.Is(err, ErrNoPrompt) {
		t.Fatalf("err = %v, want ErrNoPrompt", err)
	}
	if f.wf.CurrentPrompt() == nil {
		t.Fatal("mismatched resolution should not clear the slot")
	}

	f.wf.Dismiss()
	if f.wf.CurrentPrompt() != nil {
		t.Fatal("dismiss should clear the slot")
	}
}

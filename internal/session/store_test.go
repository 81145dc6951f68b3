package session

import (
	"testing"

	"github.com/verte-zerg/codetutor/internal/model"
)

func TestNewStoreDefaults(t *testing.T) {
	st := New()
	snap := st.Snapshot()
	if snap.Difficulty != model.DifficultyNewbie || snap.Language != model.LanguagePython {
		t.Fatalf("unexpected defaults: %+v", snap)
	}
	if snap.TaskDescription != "" || snap.CurrentCode != "" || snap.Output != "" || snap.Error != "" {
		t.Fatalf("expected empty fields: %+v", snap)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	st := New()
	st.SetTaskDescription("Reverse a string")
	st.SetDifficulty(model.DifficultyExpert)
	st.SetLanguage(model.LanguageRust)
	st.SetCurrentCode("fn main() {}")
	st.SetOutput("ok")
	st.SetError("boom")

	st.Reset()
	if got := st.Snapshot(); got != (model.Session{Difficulty: DefaultDifficulty, Language: DefaultLanguage}) {
		t.Fatalf("unexpected state after reset: %+v", got)
	}
}

func TestResolveWithoutNavUsesStore(t *testing.T) {
	st := New()
	st.SetTaskDescription("Sum a list")
	st.SetLanguage(model.LanguageGo)

	ctx := Resolve(st, nil)
	if ctx.Task != "Sum a list" || ctx.Language != model.LanguageGo {
		t.Fatalf("unexpected context: %+v", ctx)
	}
	if ctx.WrongAnswers == nil || len(ctx.WrongAnswers) != 0 {
		t.Fatalf("expected empty wrong answers, got %#v", ctx.WrongAnswers)
	}
	if ctx.ConceptKeywords == nil || len(ctx.ConceptKeywords) != 0 {
		t.Fatalf("expected empty keywords, got %#v", ctx.ConceptKeywords)
	}
	if !ctx.Ready() {
		t.Fatalf("expected ready context")
	}
}

func TestResolveNavOverridesStore(t *testing.T) {
	st := New()
	st.SetTaskDescription("store task")
	st.SetLanguage(model.LanguageJava)

	ctx := Resolve(st, &NavState{
		Task:         "nav task",
		Language:     model.LanguageRuby,
		WrongAnswers: []model.WrongAnswer{{Question: "q"}},
		Score:        7,
	})
	if ctx.Task != "nav task" || ctx.Language != model.LanguageRuby {
		t.Fatalf("expected nav values to win: %+v", ctx)
	}
	if len(ctx.WrongAnswers) != 1 || ctx.Score != 7 {
		t.Fatalf("expected nav detail: %+v", ctx)
	}
}

func TestResolveBlankNavFieldsFallBack(t *testing.T) {
	st := New()
	st.SetTaskDescription("store task")

	ctx := Resolve(st, &NavState{Task: "  ", FromLearning: true})
	if ctx.Task != "store task" || ctx.Language != model.LanguagePython {
		t.Fatalf("expected store fallback: %+v", ctx)
	}
	if !ctx.FromLearning {
		t.Fatalf("expected flags from nav")
	}
}

func TestContextNotReadyWithoutTask(t *testing.T) {
	if (Context{Language: model.LanguageGo}).Ready() {
		t.Fatalf("expected not ready without task")
	}
}

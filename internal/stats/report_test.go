package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for _, a := range sampleAttempts() {
		if _, err := st.StartAttempt(ctx, a); err != nil {
			t.Fatalf("start attempt: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.HistoryFilter{Language: model.LanguageGo})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(report.Attempts))
	}
	if report.Attempts[0].Task != "Build a binary search tree with insert and delete" {
		t.Fatalf("expected oldest first: %+v", report.Attempts)
	}
	if report.Summary.Perfect != 1 || report.Summary.Learning != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/codetutor/internal/model"
)

func TestHistoryFilter(t *testing.T) {
	filter, err := historyFilter(" Go ", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.Language != model.LanguageGo || filter.Last != 5 {
		t.Fatalf("unexpected filter %+v", filter)
	}
	if _, err := historyFilter("", -1); err == nil {
		t.Fatalf("expected error for negative --last")
	}
	if _, err := historyFilter("cobol", 0); err == nil {
		t.Fatalf("expected error for unknown language")
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var url string
	var d time.Duration
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&url, "backend", "http://default", "")
	cmd.Flags().DurationVar(&d, "timeout", time.Second, "")

	fileURL := "http://file"
	fileTimeout := "5s"
	applyStringConfig(cmd, "backend", &url, &fileURL)
	if err := applyDurationConfig(cmd, "timeout", &d, &fileTimeout); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "http://file" || d != 5*time.Second {
		t.Fatalf("config values not applied: %q %v", url, d)
	}

	if err := cmd.Flags().Set("backend", "http://flag"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyStringConfig(cmd, "backend", &url, &fileURL)
	if url != "http://flag" {
		t.Fatalf("flag should win, got %q", url)
	}

	bad := "soon"
	if err := cmd.Flags().Set("timeout", "1s"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := applyDurationConfig(cmd, "timeout", &d, &bad); err != nil {
		t.Fatalf("changed flag should skip parsing, got %v", err)
	}
}

func TestWriteLangs(t *testing.T) {
	var buf bytes.Buffer
	if err := writeLangs(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(model.SupportedLanguages()) {
		t.Fatalf("expected %d lines, got %d", len(model.SupportedLanguages()), len(lines))
	}
	if !strings.HasPrefix(lines[0], string(model.SupportedLanguages()[0])) {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

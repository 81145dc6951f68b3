package tui

import (
	"github.com/verte-zerg/codetutor/internal/flow"
	"github.com/verte-zerg/codetutor/internal/model"
)

// History writes are best effort: failures are logged and never block the flow.

func (m *Model) startAttempt(snap model.Session) {
	m.attemptID = ""
	if m.deps.History == nil {
		return
	}
	attempt, err := m.deps.History.StartAttempt(m.ctx, model.Attempt{
		Task:       snap.TaskDescription,
		Difficulty: snap.Difficulty,
		Language:   snap.Language,
	})
	if err != nil {
		m.deps.Logger.Error().Err(err).Msg("failed to start attempt")
		return
	}
	m.attemptID = attempt.ID
}

func (m *Model) recordRoute(route flow.Route) {
	if m.deps.History == nil || m.attemptID == "" {
		return
	}
	if err := m.deps.History.RecordRoute(m.ctx, m.attemptID, route.String()); err != nil {
		m.deps.Logger.Error().Err(err).Str("route", route.String()).Msg("failed to record route")
	}
}

func (m *Model) recordQuiz(score, total int) {
	if m.deps.History == nil || m.attemptID == "" {
		return
	}
	if err := m.deps.History.RecordQuiz(m.ctx, m.attemptID, score, total); err != nil {
		m.deps.Logger.Error().Err(err).Msg("failed to record quiz")
	}
}

func (m *Model) recordRun() {
	if m.deps.History == nil || m.attemptID == "" {
		return
	}
	if err := m.deps.History.IncrementRuns(m.ctx, m.attemptID); err != nil {
		m.deps.Logger.Error().Err(err).Msg("failed to record run")
	}
}

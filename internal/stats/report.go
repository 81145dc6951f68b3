package stats

import (
	"context"

	"github.com/verte-zerg/codetutor/internal/model"
)

// AttemptLister reads attempts from the history store.
type AttemptLister interface {
	ListAttempts(ctx context.Context, filter model.HistoryFilter) ([]model.Attempt, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Attempts []model.Attempt
	Summary  Summary
}

// BuildReport loads attempts and summarizes them.
func BuildReport(ctx context.Context, st AttemptLister, filter model.HistoryFilter) (Report, error) {
	attempts, err := st.ListAttempts(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Attempts: attempts,
		Summary:  Summarize(attempts),
	}, nil
}

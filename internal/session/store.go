// Package session holds the user's working state and the payloads passed between screens.
package session

import (
	"sync"

	"github.com/verte-zerg/codetutor/internal/model"
)

// Defaults applied by New and Reset.
const (
	DefaultDifficulty = model.DifficultyNewbie
	DefaultLanguage   = model.LanguagePython
)

// Store is the session state store: one setter per field and a compound reset.
// It performs no validation. Commands running off the UI goroutine read it, hence the lock.
type Store struct {
	mu      sync.RWMutex
	session model.Session
}

// New returns a store populated with defaults.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// SetTaskDescription sets the task description.
func (s *Store) SetTaskDescription(task string) {
	s.mu.Lock()
	s.session.TaskDescription = task
	s.mu.Unlock()
}

// SetDifficulty sets the familiarity level.
func (s *Store) SetDifficulty(d model.Difficulty) {
	s.mu.Lock()
	s.session.Difficulty = d
	s.mu.Unlock()
}

// SetLanguage sets the target language.
func (s *Store) SetLanguage(lang model.Language) {
	s.mu.Lock()
	s.session.Language = lang
	s.mu.Unlock()
}

// SetCurrentCode sets the code buffer.
func (s *Store) SetCurrentCode(code string) {
	s.mu.Lock()
	s.session.CurrentCode = code
	s.mu.Unlock()
}

// SetOutput sets the last execution output.
func (s *Store) SetOutput(output string) {
	s.mu.Lock()
	s.session.Output = output
	s.mu.Unlock()
}

// SetError sets the last error message.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.session.Error = msg
	s.mu.Unlock()
}

// ClearError clears the last error message.
func (s *Store) ClearError() {
	s.SetError("")
}

// Reset restores every field to its default.
func (s *Store) Reset() {
	s.mu.Lock()
	s.session = model.Session{
		Difficulty: DefaultDifficulty,
		Language:   DefaultLanguage,
	}
	s.mu.Unlock()
}

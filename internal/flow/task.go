package flow

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/session"
)

// TaskForm is the task selection form.
type TaskForm struct {
	Task       string           `validate:"required"`
	Difficulty model.Difficulty `validate:"required,oneof=newbie expert"`
	Language   model.Language   `validate:"required,language"`
}

// FormError reports the first invalid field of a TaskForm.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return model.Language(fl.Field().String()).IsValid()
	})
	return v
}

// SubmitTask validates the form, persists it to the store and picks the next route:
// experts take the quiz, everyone else goes straight to the editor.
func SubmitTask(st *session.Store, form TaskForm) (Route, error) {
	form.Task = strings.TrimSpace(form.Task)
	if err := validate.Struct(form); err != nil {
		return RouteTask, formError(err)
	}

	st.SetTaskDescription(form.Task)
	st.SetDifficulty(form.Difficulty)
	st.SetLanguage(form.Language)

	if form.Difficulty == model.DifficultyExpert {
		return RouteQuiz, nil
	}
	return RouteEditor, nil
}

func formError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	field := verrs[0].Field()
	switch field {
	case "Task":
		return &FormError{Field: field, Message: "Describe the task you want to practice"}
	case "Difficulty":
		return &FormError{Field: field, Message: "Choose newbie or expert"}
	case "Language":
		return &FormError{Field: field, Message: "Choose a supported language"}
	default:
		return &FormError{Field: field, Message: verrs[0].Error()}
	}
}

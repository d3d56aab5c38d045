package question

import (
	"time"

	"github.com/tmalela/mafunzo/core"
)

// Question is one multiple-choice item of a course quiz. Answer indexes into
// Options.
type Question struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Text      string    `json:"text"`
	Options   []string  `json:"options"`
	Answer    int       `json:"answer"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type (
	NewQuestion struct {
		Text     string   `json:"text" validate:"required"`
		Options  []string `json:"options" validate:"required,min=2,dive,required"`
		Answer   int      `json:"answer" validate:"min=0"`
		Position int      `json:"position" validate:"min=0"`
	}

	UpdateQuestion struct {
		Text     string   `json:"text"`
		Options  []string `json:"options" validate:"omitempty,min=2,dive,required"`
		Answer   *int     `json:"answer" validate:"omitempty,min=0"`
		Position *int     `json:"position" validate:"omitempty,min=0"`
	}
)

func (nq *NewQuestion) Validate() error {
	nq.Text = core.CleanString(nq.Text)
	for i, opt := range nq.Options {
		nq.Options[i] = core.CleanString(opt)
	}
	if err := core.Validate.Struct(nq); err != nil {
		return err
	}
	if nq.Answer >= len(nq.Options) {
		return core.NewValidationError(ErrAnswerOutOfRange, core.FieldError{Field: "answer", Error: ErrAnswerOutOfRange.Error()})
	}
	return nil
}

func (uq *UpdateQuestion) Validate() error {
	uq.Text = core.CleanString(uq.Text)
	for i, opt := range uq.Options {
		uq.Options[i] = core.CleanString(opt)
	}
	if err := core.Validate.Struct(uq); err != nil {
		return err
	}
	if uq.Answer != nil && len(uq.Options) > 0 && *uq.Answer >= len(uq.Options) {
		return core.NewValidationError(ErrAnswerOutOfRange, core.FieldError{Field: "answer", Error: ErrAnswerOutOfRange.Error()})
	}
	return nil
}

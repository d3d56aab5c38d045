package procedure

import (
	"time"

	"github.com/tmalela/mafunzo/core"
)

// DefaultCategory groups procedures that were filed without one.
const DefaultCategory = "general"

// Procedure is a clinical reference document shown to trainees. Only the
// metadata lives here; unpublished procedures are hidden from listings
// filtered by PublishedOnly.
type Procedure struct {
	ID          string    `json:"id"` // slug, e.g. "hand_hygiene"
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Position    int       `json:"position"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type (
	NewProcedure struct {
		ID          string `json:"id" validate:"required,alphanum_"`
		Title       string `json:"title" validate:"required"`
		Description string `json:"description" validate:"required"`
		Category    string `json:"category"`
		Position    int    `json:"position" validate:"min=0"`
		Published   *bool  `json:"published"` // nil defaults to true
	}

	UpdateProcedure struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Position    *int   `json:"position" validate:"omitempty,min=0"`
		Published   *bool  `json:"published"`
	}
)

func (np *NewProcedure) Validate() error {
	np.ID = core.CleanString(np.ID, true /* lower */)
	np.Title = core.CleanString(np.Title)
	np.Description = core.CleanString(np.Description)
	np.Category = core.CleanString(np.Category, true /* lower */)
	return core.Validate.Struct(np)
}

func (up *UpdateProcedure) Validate() error {
	up.Title = core.CleanString(up.Title)
	up.Description = core.CleanString(up.Description)
	up.Category = core.CleanString(up.Category, true /* lower */)
	return core.Validate.Struct(up)
}

package attempt

import (
	"context"
	"fmt"
	"time"
)

type (
	// Attempt is one completed quiz submission. Records are written by the
	// quiz-taking flow and are immutable here.
	Attempt struct {
		ID          string    `json:"id"`
		FirstName   string    `json:"first_name"`
		LastName    string    `json:"last_name"`
		Institution string    `json:"institution"` // sub-audience label
		Service     string    `json:"service"`     // service/team within the institution
		Score       int       `json:"score"`
		Total       int       `json:"total"` // total possible questions
		CourseID    string    `json:"course_id"`
		CreatedAt   time.Time `json:"created_at"`
	}

	// Filter restricts attempt queries; a zero Institution means no filter.
	Filter struct {
		Institution string
	}

	// Repository reads the attempt records of a single course collection.
	Repository interface {
		FilterAttempts(ctx context.Context, filter Filter) ([]Attempt, error)
	}

	// Store hands out a read-only Repository per course collection reference.
	// Implementations cache repositories by reference.
	Store interface {
		ForCourse(scoreTable string) (Repository, error)
	}
)

// Identity is the participant key used for deduplication.
func (a Attempt) Identity() string {
	return fmt.Sprintf("%s-%s-%s", a.FirstName, a.LastName, a.Institution)
}

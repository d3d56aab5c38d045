package question

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotFound         = errors.New("question not found")
	ErrAnswerOutOfRange = errors.New("answer must index one of the options")
)

type (
	Repository interface {
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		// QueryQuestionsByCourseID returns a course's questions ordered by position.
		QueryQuestionsByCourseID(ctx context.Context, courseID string) ([]Question, error)
		GetQuestionByID(ctx context.Context, id string) (Question, error)
		UpdateQuestion(ctx context.Context, q Question) (Question, error)
		DeleteQuestionsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, courseID string, nq NewQuestion) (Question, error) {
	now := time.Now().UTC()
	q := Question{
		ID:        uuid.New().String(),
		CourseID:  courseID,
		Text:      nq.Text,
		Options:   nq.Options,
		Answer:    nq.Answer,
		Position:  nq.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateQuestion(ctx, q)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID string) ([]Question, error) {
	return svc.repo.QueryQuestionsByCourseID(ctx, courseID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Question, error) {
	return svc.repo.GetQuestionByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uq UpdateQuestion) (Question, error) {
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return Question{}, err
	}

	if uq.Text != "" {
		q.Text = uq.Text
	}
	if len(uq.Options) > 0 {
		q.Options = uq.Options
	}
	if uq.Answer != nil {
		q.Answer = *uq.Answer
	}
	if uq.Position != nil {
		q.Position = *uq.Position
	}
	q.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateQuestion(ctx, q)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteQuestionsByID(ctx, ids...)
}

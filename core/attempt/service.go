package attempt

import (
	"context"

	"github.com/pkg/errors"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// BestScores returns the deduplicated attempt records of a course, optionally
// restricted to one institution. An empty result is not an error; the caller
// decides whether empty is a failure.
func (svc *Service) BestScores(ctx context.Context, scoreTable, institution string) ([]Attempt, error) {
	repo, err := svc.store.ForCourse(scoreTable)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving attempt collection %q", scoreTable)
	}
	attempts, err := repo.FilterAttempts(ctx, Filter{Institution: institution})
	if err != nil {
		return nil, errors.Wrap(err, "fetching attempts")
	}
	return Dedupe(attempts), nil
}

// Dedupe keeps one attempt per participant identity: the one with the
// strictly higher score; ties keep the first encountered. The output
// preserves first-seen order.
func Dedupe(attempts []Attempt) []Attempt {
	out := make([]Attempt, 0, len(attempts))
	seen := make(map[string]int, len(attempts))

	for _, a := range attempts {
		key := a.Identity()
		if i, ok := seen[key]; ok {
			if a.Score > out[i].Score {
				out[i] = a
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, a)
	}
	return out
}

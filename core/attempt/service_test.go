package attempt

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	attempts []Attempt
}

func (r *fakeRepo) FilterAttempts(_ context.Context, filter Filter) ([]Attempt, error) {
	if filter.Institution == "" {
		return r.attempts, nil
	}
	out := make([]Attempt, 0, len(r.attempts))
	for _, a := range r.attempts {
		if a.Institution == filter.Institution {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeStore struct {
	repos map[string]Repository
}

func (s *fakeStore) ForCourse(scoreTable string) (Repository, error) {
	repo, ok := s.repos[scoreTable]
	if !ok {
		return nil, errors.Errorf("unknown collection %q", scoreTable)
	}
	return repo, nil
}

func newAttempt(first, last, institution string, score int) Attempt {
	return Attempt{
		ID:          first + "-" + last,
		FirstName:   first,
		LastName:    last,
		Institution: institution,
		Service:     "Pediatrics",
		Score:       score,
		Total:       20,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		attempts []Attempt
		want     []Attempt
	}{
		{name: "empty", attempts: nil, want: []Attempt{}},
		{
			name:     "no duplicates",
			attempts: []Attempt{newAttempt("Awa", "Kalala", "HGR", 10), newAttempt("Ben", "Ilunga", "HGR", 12)},
			want:     []Attempt{newAttempt("Awa", "Kalala", "HGR", 10), newAttempt("Ben", "Ilunga", "HGR", 12)},
		},
		{
			name:     "higher score replaces in place",
			attempts: []Attempt{newAttempt("Awa", "Kalala", "HGR", 10), newAttempt("Ben", "Ilunga", "HGR", 12), newAttempt("Awa", "Kalala", "HGR", 15)},
			want:     []Attempt{newAttempt("Awa", "Kalala", "HGR", 15), newAttempt("Ben", "Ilunga", "HGR", 12)},
		},
		{
			name:     "lower score ignored",
			attempts: []Attempt{newAttempt("Awa", "Kalala", "HGR", 15), newAttempt("Awa", "Kalala", "HGR", 10)},
			want:     []Attempt{newAttempt("Awa", "Kalala", "HGR", 15)},
		},
		{
			name:     "tie keeps first",
			attempts: []Attempt{newAttempt("Awa", "Kalala", "HGR", 10), newAttempt("Awa", "Kalala", "HGR", 10)},
			want:     []Attempt{newAttempt("Awa", "Kalala", "HGR", 10)},
		},
		{
			name: "same name at different institutions kept apart",
			attempts: []Attempt{
				newAttempt("Awa", "Kalala", "HGR", 10),
				newAttempt("Awa", "Kalala", "Clinique Ngaliema", 18),
			},
			want: []Attempt{
				newAttempt("Awa", "Kalala", "HGR", 10),
				newAttempt("Awa", "Kalala", "Clinique Ngaliema", 18),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.attempts)

			if len(got) != len(tt.want) {
				t.Fatalf("Dedupe() returned %d attempts, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Identity() != tt.want[i].Identity() || got[i].Score != tt.want[i].Score {
					t.Errorf("Dedupe()[%d] = %s (%d), want %s (%d)",
						i, got[i].Identity(), got[i].Score, tt.want[i].Identity(), tt.want[i].Score)
				}
			}
		})
	}
}

func TestService_BestScores(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{
		repos: map[string]Repository{
			"form_1": &fakeRepo{attempts: []Attempt{
				newAttempt("Awa", "Kalala", "HGR", 10),
				newAttempt("Ben", "Ilunga", "Clinique Ngaliema", 12),
				newAttempt("Awa", "Kalala", "HGR", 16),
			}},
		},
	}
	svc := NewService(store)

	t.Run("all institutions", func(t *testing.T) {
		got, err := svc.BestScores(ctx, "form_1", "")
		assert.NoError(t, err)
		if assert.Len(t, got, 2) {
			assert.Equal(t, 16, got[0].Score)
			assert.Equal(t, "Ben", got[1].FirstName)
		}
	})

	t.Run("institution filter", func(t *testing.T) {
		got, err := svc.BestScores(ctx, "form_1", "Clinique Ngaliema")
		assert.NoError(t, err)
		if assert.Len(t, got, 1) {
			assert.Equal(t, "Ben", got[0].FirstName)
		}
	})

	t.Run("unknown collection", func(t *testing.T) {
		_, err := svc.BestScores(ctx, "nope", "")
		assert.Error(t, err)
	})
}

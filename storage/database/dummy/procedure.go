package dummydb

import (
	"context"
	"sort"

	"github.com/tmalela/mafunzo/core/procedure"
)

type procedureRepository struct {
	db *procedureTable
}

var _ procedure.Repository = (*procedureRepository)(nil) // interface compliance check

func NewProcedureRepository(db *DB) procedure.Repository {
	return &procedureRepository{db: db.procedure}
}

func (repo *procedureRepository) CreateProcedure(_ context.Context, p procedure.Procedure) (procedure.Procedure, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; ok {
		return procedure.Procedure{}, procedure.ErrIDExists
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *procedureRepository) QueryProcedures(_ context.Context, filter procedure.Filter) ([]procedure.Procedure, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var procedures []procedure.Procedure
	for _, p := range repo.db.table {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.PublishedOnly && !p.Published {
			continue
		}
		procedures = append(procedures, *p)
	}
	sort.Slice(procedures, func(i, j int) bool {
		if procedures[i].Position != procedures[j].Position {
			return procedures[i].Position < procedures[j].Position
		}
		if !procedures[i].CreatedAt.Equal(procedures[j].CreatedAt) {
			return procedures[i].CreatedAt.After(procedures[j].CreatedAt)
		}
		return procedures[i].ID < procedures[j].ID
	})
	return procedures, nil
}

func (repo *procedureRepository) GetProcedureByID(_ context.Context, id string) (procedure.Procedure, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return procedure.Procedure{}, procedure.ErrNotFound
}

func (repo *procedureRepository) UpdateProcedure(_ context.Context, p procedure.Procedure) (procedure.Procedure, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return procedure.Procedure{}, procedure.ErrNotFound
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *procedureRepository) DeleteProceduresByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

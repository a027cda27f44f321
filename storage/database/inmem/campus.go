package inmemdb

import (
	"context"

	"github.com/makonzi/uwepo/core/campus"
)

type campusRepository struct {
	db *DB
}

func NewCampusRepository(db *DB) campus.Repository {
	return &campusRepository{db: db}
}

func (repo *campusRepository) CreateCampus(ctx context.Context, c campus.Campus) (campus.Campus, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c.ID = repo.db.nextID()
	repo.db.campuses[c.ID] = &c
	repo.db.campusOrder = append(repo.db.campusOrder, c.ID)
	return c, nil
}

func (repo *campusRepository) GetCampusByID(ctx context.Context, id string) (campus.Campus, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.campuses[id]; ok {
		return *c, nil
	}
	return campus.Campus{}, campus.ErrNotFound
}

func (repo *campusRepository) QueryAllCampuses(ctx context.Context) ([]campus.Campus, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	campuses := make([]campus.Campus, 0, len(repo.db.campusOrder))
	for _, id := range repo.db.campusOrder {
		if c, ok := repo.db.campuses[id]; ok {
			campuses = append(campuses, *c)
		}
	}
	return campuses, nil
}

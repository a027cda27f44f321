package campus

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound = errors.New("campus not found")
)

type (
	Repository interface {
		CreateCampus(ctx context.Context, c Campus) (Campus, error)
		GetCampusByID(ctx context.Context, id string) (Campus, error)
		// QueryAllCampuses returns campuses in registration order
		// (created_at, then id) so geofence matching stays deterministic.
		QueryAllCampuses(ctx context.Context) ([]Campus, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCampus) (Campus, error) {
	c := Campus{
		Name:      nc.Name,
		Boundary:  nc.Boundary,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateCampus(ctx, c)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Campus, error) {
	return svc.repo.GetCampusByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Campus, error) {
	return svc.repo.QueryAllCampuses(ctx)
}

// FindContaining locates the first registered campus containing the point.
func (svc *Service) FindContaining(ctx context.Context, lat, lon float64) (Campus, bool, error) {
	campuses, err := svc.repo.QueryAllCampuses(ctx)
	if err != nil {
		return Campus{}, false, err
	}
	c, ok := FindContaining(campuses, lat, lon)
	return c, ok, nil
}

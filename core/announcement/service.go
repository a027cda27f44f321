package announcement

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("announcement not found")

var nowFunc = time.Now // mockable

// Repository abstracts announcement persistence.
type Repository interface {
	CreateAnnouncement(ctx context.Context, ann *Announcement) error
	GetAnnouncementByID(ctx context.Context, id string) (Announcement, error)
	// QueryAnnouncements returns university-wide announcements plus those
	// scoped to campusID, newest first. A zero since disables the date filter.
	QueryAnnouncements(ctx context.Context, campusID string, since time.Time) ([]Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Post publishes an announcement. Campus-level posts take the poster's campus.
func (svc *Service) Post(ctx context.Context, na NewAnnouncement, postedBy, campusID string) (Announcement, error) {
	ann := Announcement{
		Title:    na.Title,
		Body:     na.Body,
		Level:    na.Level,
		PostedBy: postedBy,
		PostedAt: nowFunc().UTC(),
	}
	if na.Level == LevelCampus {
		ann.CampusID = campusID
	}
	if err := svc.repo.CreateAnnouncement(ctx, &ann); err != nil {
		return Announcement{}, errors.Wrap(err, "creating announcement")
	}
	return ann, nil
}

// Feed returns announcements visible to a member of campusID.
func (svc *Service) Feed(ctx context.Context, campusID string, since time.Time) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, campusID, since)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Announcement, error) {
	return svc.repo.GetAnnouncementByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetAnnouncementByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteAnnouncement(ctx, id)
}

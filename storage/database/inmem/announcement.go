package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/makonzi/uwepo/core/announcement"
)

type announcementRepository struct {
	db *DB
}

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, ann *announcement.Announcement) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ann.ID = repo.db.nextID()
	clone := *ann
	repo.db.announcements[ann.ID] = &clone
	return nil
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id string) (announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ann, ok := repo.db.announcements[id]; ok {
		return *ann, nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) QueryAnnouncements(ctx context.Context, campusID string, since time.Time) ([]announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	announcements := make([]announcement.Announcement, 0)
	for _, ann := range repo.db.announcements {
		if ann.Level == announcement.LevelCampus && ann.CampusID != campusID {
			continue
		}
		if !since.IsZero() && ann.PostedAt.Before(since) {
			continue
		}
		announcements = append(announcements, *ann)
	}
	sort.Slice(announcements, func(i, j int) bool {
		return announcements[i].PostedAt.After(announcements[j].PostedAt)
	})
	return announcements, nil
}

func (repo *announcementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.announcements[id]; !ok {
		return announcement.ErrNotFound
	}
	delete(repo.db.announcements, id)
	return nil
}

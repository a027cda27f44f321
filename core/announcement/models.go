package announcement

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/makonzi/uwepo/core"
)

// Level scopes who sees an announcement.
type Level string

const (
	LevelUniversity Level = "university"
	LevelCampus     Level = "campus"
)

type Announcement struct {
	ID       string    `json:"announcement_id" bson:"_id,omitempty"`
	Title    string    `json:"title" bson:"title"`
	Body     string    `json:"body" bson:"body"`
	Level    Level     `json:"level" bson:"level"`
	CampusID string    `json:"campus_id,omitempty" bson:"campus_id,omitempty"`
	PostedBy string    `json:"posted_by" bson:"posted_by"`
	PostedAt time.Time `json:"posted_at" bson:"posted_at"` // UTC
}

// NewAnnouncement contains information needed to post an announcement.
type NewAnnouncement struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
	Level Level  `json:"level" validate:"required,oneof=university campus"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	return validate.Struct(na)
}

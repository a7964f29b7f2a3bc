package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// MaxReviewImages is the number of optional image slots a review carries.
const MaxReviewImages = 5

// Images holds up to MaxReviewImages optional URLs, stored as a jsonb array.
type Images []*string

func (i Images) Value() (driver.Value, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(i)
}

func (i *Images) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = nil
		return nil
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	default:
		return errors.New("images: unsupported column type")
	}
}

type Review struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	SurveyID  *int      `db:"survey_id" json:"survey_id,omitempty"`
	Content   string    `db:"content" json:"content"`
	Images    Images    `db:"images" json:"images"`
	IsDelete  bool      `db:"is_delete" json:"-"`
	LikeCount int       `db:"like_count" json:"like_count"`
	ViewCount int       `db:"view_count" json:"view_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FeedRow is one review joined with its author and survey, the unit the feed filters and pages over.
type FeedRow struct {
	Review
	Nickname            string  `db:"nickname" json:"nickname"`
	CharacterImage      string  `db:"character_image" json:"character_image"`
	AuthorGender        string  `db:"gender" json:"-"`
	AuthorBirthYear     int     `db:"birth_year" json:"-"`
	AuthorActive        bool    `db:"is_active" json:"-"`
	VaccineType         *string `db:"vaccine_type" json:"vaccine_type,omitempty"`
	VaccineRound        *string `db:"vaccine_round" json:"vaccine_round,omitempty"`
	IsCrossed           *bool   `db:"is_crossed" json:"is_crossed,omitempty"`
	IsPregnant          *bool   `db:"is_pregnant" json:"is_pregnant,omitempty"`
	IsUnderlyingDisease *bool   `db:"is_underlying_disease" json:"is_underlying_disease,omitempty"`
	CommentCount        int     `db:"comment_count" json:"comment_count"`
}

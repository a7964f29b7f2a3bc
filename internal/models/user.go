package models

import "time"

const (
	GenderETC    = "ETC"
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"

	JoinSurveyNone = "NONE"
)

type User struct {
	ID             int       `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Nickname       string    `db:"nickname" json:"nickname"`
	Gender         string    `db:"gender" json:"gender"`
	BirthYear      int       `db:"birth_year" json:"birth_year"`
	IsSuper        bool      `db:"is_super" json:"is_super"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	JoinSurveyCode string    `db:"join_survey_code" json:"join_survey_code"`
	CharacterImage string    `db:"character_image" json:"character_image"`
	FCMToken       *string   `db:"fcm_token" json:"-"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// HasJoinSurvey reports whether the one-time onboarding survey was already taken.
func (u *User) HasJoinSurvey() bool {
	return u.JoinSurveyCode != "" && u.JoinSurveyCode != JoinSurveyNone
}

// ActivityCounts are the profile counters of one user. Deleted content is not counted.
type ActivityCounts struct {
	Reviews      int `db:"reviews" json:"reviews"`
	Comments     int `db:"comments" json:"comments"`
	ReviewLikes  int `db:"review_likes" json:"review_likes"`
	CommentLikes int `db:"comment_likes" json:"comment_likes"`
}

// KeywordRecipient is a device to notify and the keyword it was matched on.
type KeywordRecipient struct {
	Token   string `db:"fcm_token"`
	Keyword string `db:"keyword"`
}

package models

import "time"

type Comment struct {
	ID        int       `db:"id" json:"id"`
	ReviewID  int       `db:"review_id" json:"review_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	ParentID  *int      `db:"parent_id" json:"parent_id"`
	Depth     int       `db:"depth" json:"depth"`
	Content   string    `db:"content" json:"content"`
	IsDelete  bool      `db:"is_delete" json:"-"`
	LikeCount int       `db:"like_count" json:"like_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ThreadComment is a comment joined with the author columns the thread view needs.
type ThreadComment struct {
	Comment
	Nickname     string `db:"nickname"`
	AuthorActive bool   `db:"is_active"`
}

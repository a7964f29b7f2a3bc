package models

import "time"

// Inquiry is a question sent to the operators.
type Inquiry struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	UserEmail string    `db:"user_email" json:"user_email"`
	UserPhone string    `db:"user_phone" json:"user_phone"`
	IsSolved  bool      `db:"is_solved" json:"is_solved"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

const (
	usersEmailKey    = "users_email_key"
	usersNicknameKey = "users_nickname_key"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               SERIAL PRIMARY KEY,
		email            TEXT NOT NULL,
		nickname         TEXT NOT NULL,
		gender           TEXT NOT NULL CHECK (gender IN ('ETC', 'MALE', 'FEMALE')),
		birth_year       INTEGER NOT NULL,
		is_super         BOOLEAN NOT NULL DEFAULT FALSE,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		join_survey_code TEXT NOT NULL DEFAULT 'NONE' CHECK (join_survey_code IN ('NONE', 'A', 'B', 'C')),
		character_image  TEXT NOT NULL DEFAULT '',
		fcm_token        TEXT,
		password_hash    TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT ` + usersEmailKey + ` UNIQUE (email),
		CONSTRAINT ` + usersNicknameKey + ` UNIQUE (nickname)
	)`,
	`CREATE TABLE IF NOT EXISTS surveys (
		id                    SERIAL PRIMARY KEY,
		user_id               INTEGER NOT NULL REFERENCES users (id),
		survey_type           TEXT NOT NULL CHECK (survey_type IN ('A', 'B', 'C')),
		vaccine_type          TEXT,
		vaccine_round         TEXT,
		is_crossed            BOOLEAN,
		is_pregnant           BOOLEAN,
		is_underlying_disease BOOLEAN,
		date_from             TEXT,
		data                  JSONB NOT NULL,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         SERIAL PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users (id),
		survey_id  INTEGER REFERENCES surveys (id),
		content    TEXT NOT NULL DEFAULT '',
		images     JSONB NOT NULL DEFAULT '[]',
		is_delete  BOOLEAN NOT NULL DEFAULT FALSE,
		like_count INTEGER NOT NULL DEFAULT 0,
		view_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS review_keywords (
		review_id INTEGER NOT NULL REFERENCES reviews (id),
		keyword   TEXT NOT NULL,
		PRIMARY KEY (review_id, keyword)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         SERIAL PRIMARY KEY,
		review_id  INTEGER NOT NULL REFERENCES reviews (id),
		user_id    INTEGER NOT NULL REFERENCES users (id),
		parent_id  INTEGER REFERENCES comments (id),
		depth      SMALLINT NOT NULL DEFAULT 0 CHECK (depth IN (0, 1)),
		content    TEXT NOT NULL,
		is_delete  BOOLEAN NOT NULL DEFAULT FALSE,
		like_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_review_id_idx ON comments (review_id, id)`,
	`CREATE TABLE IF NOT EXISTS user_likes (
		user_id   INTEGER NOT NULL REFERENCES users (id),
		review_id INTEGER NOT NULL REFERENCES reviews (id),
		PRIMARY KEY (user_id, review_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_comment_likes (
		user_id    INTEGER NOT NULL REFERENCES users (id),
		comment_id INTEGER NOT NULL REFERENCES comments (id),
		PRIMARY KEY (user_id, comment_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_keywords (
		user_id INTEGER NOT NULL REFERENCES users (id),
		keyword TEXT NOT NULL,
		PRIMARY KEY (user_id, keyword)
	)`,
	`CREATE INDEX IF NOT EXISTS user_keywords_keyword_idx ON user_keywords (keyword)`,
	`CREATE TABLE IF NOT EXISTS inquiries (
		id         SERIAL PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users (id),
		content    TEXT NOT NULL,
		user_email TEXT NOT NULL DEFAULT '',
		user_phone TEXT NOT NULL DEFAULT '',
		is_solved  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS nickname_counter (
		id      INTEGER PRIMARY KEY CHECK (id = 1),
		counter INTEGER NOT NULL
	)`,
}

// Migrate creates missing tables. It never alters existing ones.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	log.Printf("Schema ready (%d statements)", len(schema))
	return nil
}

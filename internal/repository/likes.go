package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/paulexconde/vaxreview/internal/pkg/store"
)

// likeTable describes a like join table and the counter it keeps.
type likeTable struct {
	table   string
	column  string
	counted string
}

var (
	reviewLikes  = likeTable{table: "user_likes", column: "review_id", counted: "reviews"}
	commentLikes = likeTable{table: "user_comment_likes", column: "comment_id", counted: "comments"}
)

type LikeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) ToggleReviewLike(ctx context.Context, userID, reviewID int) (bool, error) {
	return r.toggle(ctx, reviewLikes, userID, reviewID)
}

func (r *LikeRepository) ToggleCommentLike(ctx context.Context, userID, commentID int) (bool, error) {
	return r.toggle(ctx, commentLikes, userID, commentID)
}

func (r *LikeRepository) ReviewLiked(ctx context.Context, userID, reviewID int) (bool, error) {
	var liked bool
	err := r.db.GetContext(ctx, &liked, "SELECT EXISTS (SELECT 1 FROM user_likes WHERE user_id = $1 AND review_id = $2)", userID, reviewID)
	return liked, err
}

// toggle removes an existing like or adds a missing one and moves the counter
// the same way, in one transaction.
func (r *LikeRepository) toggle(ctx context.Context, t likeTable, userID, targetID int) (liked bool, err error) {
	err = store.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id = $1 AND %s = $2", t.table, t.column), userID, targetID)
		if err != nil {
			return err
		}

		delta := -1
		if n, _ := res.RowsAffected(); n == 0 {
			insert := fmt.Sprintf("INSERT INTO %s (user_id, %s) VALUES ($1, $2)", t.table, t.column)
			if _, err := tx.ExecContext(ctx, insert, userID, targetID); err != nil {
				return err
			}
			delta = 1
		}
		liked = delta > 0

		update := fmt.Sprintf("UPDATE %s SET like_count = GREATEST(like_count + $1, 0) WHERE id = $2", t.counted)
		_, err = tx.ExecContext(ctx, update, delta, targetID)
		return err
	})
	return liked, err
}

package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/pkg/store"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

const commentColumns = "id, review_id, user_id, parent_id, depth, content, is_delete, like_count, created_at"

type commentDTO struct {
	ReviewID int    `db:"review_id"`
	UserID   int    `db:"user_id"`
	ParentID *int   `db:"parent_id"`
	Depth    int    `db:"depth"`
	Content  string `db:"content"`
}

func (d *commentDTO) ToModel(id int) any {
	return &models.Comment{
		ID:       id,
		ReviewID: d.ReviewID,
		UserID:   d.UserID,
		ParentID: d.ParentID,
		Depth:    d.Depth,
		Content:  d.Content,
	}
}

type commentContentDTO struct {
	Content *string `db:"content"`
}

func (d *commentContentDTO) ToModel(id int) any {
	return &models.Comment{ID: id, Content: *d.Content}
}

type CommentRepository struct {
	store  store.Datastorer[models.Comment]
	thread store.Datastorer[models.ThreadComment]
}

func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{
		store:  store.NewDataStore[models.Comment](db, "comments"),
		thread: store.NewDataStore[models.ThreadComment](db, "comments"),
	}
}

func (r *CommentRepository) Get(ctx context.Context, id int) (*models.Comment, error) {
	return r.store.Get(ctx, "SELECT "+commentColumns+" FROM comments WHERE id = $1", id)
}

func (r *CommentRepository) Create(ctx context.Context, c models.Comment) (*models.Comment, error) {
	model, err := r.store.Create(ctx, &commentDTO{
		ReviewID: c.ReviewID,
		UserID:   c.UserID,
		ParentID: c.ParentID,
		Depth:    c.Depth,
		Content:  c.Content,
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, model.(*models.Comment).ID)
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id int, content string) (*models.Comment, error) {
	updated, err := r.store.Update(ctx, id, &commentContentDTO{Content: &content})
	if err != nil {
		return nil, err
	}
	return updated.(*models.Comment), nil
}

func (r *CommentRepository) SoftDelete(ctx context.Context, id int) error {
	res, err := r.store.Base().ExecContext(ctx, "UPDATE comments SET is_delete = TRUE WHERE id = $1 AND is_delete = FALSE", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fault.ErrAlreadyDeleted
	}
	return nil
}

func (r *CommentRepository) ListByReview(ctx context.Context, reviewID int) ([]models.ThreadComment, error) {
	return r.thread.Select(ctx, `SELECT c.id, c.review_id, c.user_id, c.parent_id, c.depth, c.content,
			c.is_delete, c.like_count, c.created_at, u.nickname, u.is_active
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.review_id = $1
		ORDER BY c.created_at, c.id`, reviewID)
}

func (r *CommentRepository) LikedIDs(ctx context.Context, userID, reviewID int) (map[int]bool, error) {
	var ids []int
	err := r.store.Base().SelectContext(ctx, &ids, `SELECT l.comment_id
		FROM user_comment_likes l
		JOIN comments c ON c.id = l.comment_id
		WHERE l.user_id = $1 AND c.review_id = $2`, userID, reviewID)
	if err != nil {
		return nil, err
	}

	liked := make(map[int]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

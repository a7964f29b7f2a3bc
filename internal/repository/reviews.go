package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/pkg/paginator"
	"github.com/paulexconde/vaxreview/internal/pkg/store"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

// feedSelect joins every review with its author and survey under the aliases
// r, u and s that feed filters refer to. Queries close it with feedGroup.
const feedSelect = `SELECT r.id, r.user_id, r.survey_id, r.content, r.images, r.is_delete,
		r.like_count, r.view_count, r.created_at,
		u.nickname, u.character_image, u.gender, u.birth_year, u.is_active,
		s.vaccine_type, s.vaccine_round, s.is_crossed, s.is_pregnant, s.is_underlying_disease,
		(SELECT COUNT(*) FROM comments c WHERE c.review_id = r.id AND c.is_delete = FALSE) AS comment_count
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	LEFT JOIN surveys s ON s.id = r.survey_id`

// feedGroup keeps one row per review whatever the filters join in.
const feedGroup = " GROUP BY r.id, u.id, s.id"

type ReviewRepository struct {
	store store.Datastorer[models.FeedRow]
	pages paginator.Paginator[models.FeedRow]
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	ds := store.NewDataStore[models.FeedRow](db, "reviews")
	return &ReviewRepository{store: ds, pages: paginator.NewPaginator[models.FeedRow](ds)}
}

// Feed expects where in postgres bind form, numbered from $1.
func (r *ReviewRepository) Feed(ctx context.Context, where string, args []any, req paginator.PageRequest) (*paginator.Page[models.FeedRow], error) {
	query := feedSelect + " WHERE " + where + feedGroup + " ORDER BY r.id DESC"
	return r.pages.PaginateQuery(ctx, query, args, req)
}

func (r *ReviewRepository) Get(ctx context.Context, id int) (*models.FeedRow, error) {
	return r.store.Get(ctx, feedSelect+" WHERE r.id = $1"+feedGroup, id)
}

func (r *ReviewRepository) Keywords(ctx context.Context, reviewID int) ([]string, error) {
	keywords := []string{}
	err := r.store.Base().SelectContext(ctx, &keywords, "SELECT keyword FROM review_keywords WHERE review_id = $1 ORDER BY keyword", reviewID)
	return keywords, err
}

func (r *ReviewRepository) IncrementViewCount(ctx context.Context, id int) error {
	return r.store.BulkUpdate(ctx, "UPDATE reviews SET view_count = view_count + 1 WHERE id = $1", id)
}

func (r *ReviewRepository) SoftDelete(ctx context.Context, id int) error {
	res, err := r.store.Base().ExecContext(ctx, "UPDATE reviews SET is_delete = TRUE WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fault.ErrNotFound
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/pkg/paginator"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

type ReviewDetail struct {
	Review       models.FeedRow `json:"review"`
	Keywords     []string       `json:"keywords"`
	UserIsLike   bool           `json:"user_is_like"`
	UserIsWriter bool           `json:"user_is_writer"`
	Comments     []CommentNode  `json:"comments"`
}

type FeedService interface {
	// List compiles the filter and pages the matching reviews.
	List(ctx context.Context, filter FeedFilter, req paginator.PageRequest) (*paginator.Page[models.FeedRow], error)
	// Detail returns a visible review with its thread and counts the view.
	Detail(ctx context.Context, reviewID, viewerID int, ph Placeholders) (*ReviewDetail, error)
	// DeleteReview soft deletes a review of the actor, or any review for a superuser.
	DeleteReview(ctx context.Context, actorID, reviewID int) error
}

type feedServiceImpl struct {
	reviews  ReviewRepository
	comments CommentRepository
	likes    LikeRepository
	users    UserRepository
	pageSize int
	now      func() time.Time
}

func NewFeedService(reviews ReviewRepository, comments CommentRepository, likes LikeRepository, users UserRepository, pageSize int) FeedService {
	if pageSize < 1 {
		pageSize = paginator.DefaultSize
	}
	return &feedServiceImpl{
		reviews:  reviews,
		comments: comments,
		likes:    likes,
		users:    users,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *feedServiceImpl) List(ctx context.Context, filter FeedFilter, req paginator.PageRequest) (*paginator.Page[models.FeedRow], error) {
	if req.Size < 1 {
		req.Size = s.pageSize
	}

	where, args := CompileFeedFilter(filter, s.now()).Where()

	page, err := s.reviews.Feed(ctx, sqlx.Rebind(sqlx.DOLLAR, where), args, req)
	if err != nil {
		return nil, fault.NewInternalError("list feed", err)
	}
	return page, nil
}

func (s *feedServiceImpl) Detail(ctx context.Context, reviewID, viewerID int, ph Placeholders) (*ReviewDetail, error) {
	row, err := s.visibleReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if err := s.reviews.IncrementViewCount(ctx, reviewID); err != nil {
		return nil, fault.NewInternalError("count view", err)
	}
	row.ViewCount++

	keywords, err := s.reviews.Keywords(ctx, reviewID)
	if err != nil {
		return nil, fault.NewInternalError("load keywords", err)
	}

	comments, err := s.comments.ListByReview(ctx, reviewID)
	if err != nil {
		return nil, fault.NewInternalError("load comments", err)
	}

	detail := &ReviewDetail{
		Review:       *row,
		Keywords:     keywords,
		UserIsWriter: viewerID != AnonymousViewerID && row.UserID == viewerID,
	}

	liked := map[int]bool{}
	if viewerID != AnonymousViewerID {
		if detail.UserIsLike, err = s.likes.ReviewLiked(ctx, viewerID, reviewID); err != nil {
			return nil, fault.NewInternalError("load review like", err)
		}
		if liked, err = s.comments.LikedIDs(ctx, viewerID, reviewID); err != nil {
			return nil, fault.NewInternalError("load comment likes", err)
		}
	}

	detail.Comments = AssembleThread(comments, liked, viewerID, ph)
	return detail, nil
}

func (s *feedServiceImpl) DeleteReview(ctx context.Context, actorID, reviewID int) error {
	row, err := s.visibleReview(ctx, reviewID)
	if err != nil {
		return err
	}

	if err := authorize(ctx, s.users, actorID, row.UserID); err != nil {
		return err
	}

	if err := s.reviews.SoftDelete(ctx, reviewID); err != nil {
		return fault.NewInternalError("delete review", err)
	}
	return nil
}

// visibleReview hides deleted reviews and reviews of withdrawn authors.
func (s *feedServiceImpl) visibleReview(ctx context.Context, reviewID int) (*models.FeedRow, error) {
	row, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fault.NotFound("review")
		}
		return nil, fault.NewInternalError("load review", err)
	}
	if row.IsDelete || !row.AuthorActive {
		return nil, fault.NotFound("review")
	}
	return row, nil
}

// authorize lets authors and superusers act on content.
func authorize(ctx context.Context, users UserRepository, actorID, authorID int) error {
	actor, err := activeUser(ctx, users, actorID)
	if err != nil {
		return err
	}
	if actor.ID != authorID && !actor.IsSuper {
		return fault.NotAuthorized("only the writer can change this")
	}
	return nil
}

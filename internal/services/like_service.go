package services

import (
	"context"

	"github.com/paulexconde/vaxreview/pkg/fault"
)

type LikeStatus struct {
	Liked bool `json:"is_like"`
}

// LikeService toggles likes. Two concurrent toggles of the same pair may leave
// the denormalized counter off by one; the like rows stay correct.
type LikeService interface {
	ToggleReview(ctx context.Context, userID, reviewID int) (*LikeStatus, error)
	ToggleComment(ctx context.Context, userID, commentID int) (*LikeStatus, error)
}

type likeServiceImpl struct {
	likes    LikeRepository
	reviews  ReviewRepository
	comments CommentRepository
	users    UserRepository
}

func NewLikeService(likes LikeRepository, reviews ReviewRepository, comments CommentRepository, users UserRepository) LikeService {
	return &likeServiceImpl{
		likes:    likes,
		reviews:  reviews,
		comments: comments,
		users:    users,
	}
}

func (s *likeServiceImpl) ToggleReview(ctx context.Context, userID, reviewID int) (*LikeStatus, error) {
	if _, err := activeUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	row, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, notFoundOr(err, "review")
	}
	if row.IsDelete || !row.AuthorActive {
		return nil, fault.NotFound("review")
	}

	liked, err := s.likes.ToggleReviewLike(ctx, userID, reviewID)
	if err != nil {
		return nil, fault.NewInternalError("toggle review like", err)
	}
	return &LikeStatus{Liked: liked}, nil
}

func (s *likeServiceImpl) ToggleComment(ctx context.Context, userID, commentID int) (*LikeStatus, error) {
	if _, err := activeUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "comment")
	}
	if comment.IsDelete {
		return nil, fault.NotFound("comment")
	}

	liked, err := s.likes.ToggleCommentLike(ctx, userID, commentID)
	if err != nil {
		return nil, fault.NewInternalError("toggle comment like", err)
	}
	return &LikeStatus{Liked: liked}, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

const MaxCommentContent = 1000

type CommentService interface {
	Create(ctx context.Context, actorID, reviewID int, content string) (*models.Comment, error)
	// Reply answers a top-level comment. Replies cannot be answered.
	Reply(ctx context.Context, actorID, parentID int, content string) (*models.Comment, error)
	Edit(ctx context.Context, actorID, commentID int, content string) (*models.Comment, error)
	Delete(ctx context.Context, actorID, commentID int) error
}

type commentServiceImpl struct {
	comments CommentRepository
	reviews  ReviewRepository
	users    UserRepository
}

func NewCommentService(comments CommentRepository, reviews ReviewRepository, users UserRepository) CommentService {
	return &commentServiceImpl{
		comments: comments,
		reviews:  reviews,
		users:    users,
	}
}

func (s *commentServiceImpl) Create(ctx context.Context, actorID, reviewID int, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}
	if _, err := activeUser(ctx, s.users, actorID); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, reviewID); err != nil {
		return nil, err
	}

	created, err := s.comments.Create(ctx, models.Comment{
		ReviewID: reviewID,
		UserID:   actorID,
		Depth:    0,
		Content:  content,
	})
	if err != nil {
		return nil, fault.NewInternalError("create comment", err)
	}
	return created, nil
}

func (s *commentServiceImpl) Reply(ctx context.Context, actorID, parentID int, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}
	if _, err := activeUser(ctx, s.users, actorID); err != nil {
		return nil, err
	}

	parent, err := s.liveComment(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Depth != 0 || parent.ParentID != nil {
		return nil, fault.NestingTooDeep(parentID)
	}
	if err := s.requireReview(ctx, parent.ReviewID); err != nil {
		return nil, err
	}

	created, err := s.comments.Create(ctx, models.Comment{
		ReviewID: parent.ReviewID,
		UserID:   actorID,
		ParentID: &parent.ID,
		Depth:    1,
		Content:  content,
	})
	if err != nil {
		return nil, fault.NewInternalError("create reply", err)
	}
	return created, nil
}

func (s *commentServiceImpl) Edit(ctx context.Context, actorID, commentID int, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	comment, err := s.liveComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.users, actorID, comment.UserID); err != nil {
		return nil, err
	}

	updated, err := s.comments.UpdateContent(ctx, commentID, content)
	if err != nil {
		return nil, fault.NewInternalError("update comment", err)
	}
	return updated, nil
}

func (s *commentServiceImpl) Delete(ctx context.Context, actorID, commentID int) error {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return notFoundOr(err, "comment")
	}
	if err := authorize(ctx, s.users, actorID, comment.UserID); err != nil {
		return err
	}
	if comment.IsDelete {
		return fault.Conflict("delete comment", fault.ErrAlreadyDeleted)
	}

	if err := s.comments.SoftDelete(ctx, commentID); err != nil {
		return fault.NewInternalError("delete comment", err)
	}
	return nil
}

func (s *commentServiceImpl) liveComment(ctx context.Context, id int) (*models.Comment, error) {
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "comment")
	}
	if comment.IsDelete {
		return nil, fault.NotFound("comment")
	}
	return comment, nil
}

func (s *commentServiceImpl) requireReview(ctx context.Context, reviewID int) error {
	row, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return notFoundOr(err, "review")
	}
	if row.IsDelete || !row.AuthorActive {
		return fault.NotFound("review")
	}
	return nil
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fault.NewValidationError("content", content, "comment is empty")
	}
	if n := utf8.RuneCountInString(content); n > MaxCommentContent {
		return fault.NewValidationError("content", n, "too long")
	}
	return nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, fault.ErrNotFound) {
		return fault.NotFound(what)
	}
	return fault.NewInternalError("load "+what, err)
}

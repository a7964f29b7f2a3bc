package services

import (
	"context"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/notify"
	"github.com/paulexconde/vaxreview/internal/pkg/paginator"
)

// Every lookup below returns fault.ErrNotFound (possibly wrapped) for a missing row.

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create stores u with the nickname slot taken from the persisted counter.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	// NextNicknameIndex increments and returns the persisted nickname counter.
	NextNicknameIndex(ctx context.Context) (int, error)
	Deactivate(ctx context.Context, id int) error
	ReplaceKeywords(ctx context.Context, userID int, keywords []string) error
	Keywords(ctx context.Context, userID int) ([]string, error)
	// KeywordRecipients returns one device token per active user subscribed to
	// any of keywords, except excludeUserID, paired with the first of keywords
	// that user follows.
	KeywordRecipients(ctx context.Context, keywords []string, excludeUserID int) ([]models.KeywordRecipient, error)
	ActivityCounts(ctx context.Context, userID int) (*models.ActivityCounts, error)
}

// SurveyRecord is what one submission writes, all in one transaction.
type SurveyRecord struct {
	Survey   models.Survey
	Review   *models.Review
	Keywords []string
	// MarkJoin records the survey type as the user's join survey.
	MarkJoin bool
}

type SurveyRepository interface {
	Save(ctx context.Context, rec SurveyRecord) (*models.Survey, *models.Review, error)
}

type ReviewRepository interface {
	// Feed pages the feed rows matching where, newest first.
	Feed(ctx context.Context, where string, args []any, req paginator.PageRequest) (*paginator.Page[models.FeedRow], error)
	// Get returns the row even when it is deleted or its author withdrew.
	Get(ctx context.Context, id int) (*models.FeedRow, error)
	Keywords(ctx context.Context, reviewID int) ([]string, error)
	IncrementViewCount(ctx context.Context, id int) error
	SoftDelete(ctx context.Context, id int) error
}

type CommentRepository interface {
	Get(ctx context.Context, id int) (*models.Comment, error)
	Create(ctx context.Context, c models.Comment) (*models.Comment, error)
	UpdateContent(ctx context.Context, id int, content string) (*models.Comment, error)
	SoftDelete(ctx context.Context, id int) error
	// ListByReview returns every comment of the review in creation order.
	ListByReview(ctx context.Context, reviewID int) ([]models.ThreadComment, error)
	LikedIDs(ctx context.Context, userID, reviewID int) (map[int]bool, error)
}

type LikeRepository interface {
	// Toggle* flip the like and adjust the counter, returning the new state.
	ToggleReviewLike(ctx context.Context, userID, reviewID int) (bool, error)
	ToggleCommentLike(ctx context.Context, userID, commentID int) (bool, error)
	ReviewLiked(ctx context.Context, userID, reviewID int) (bool, error)
}

// Dispatcher runs side effects off the request path.
type Dispatcher interface {
	Go(name string, task func(ctx context.Context) error) bool
	SendMail(mail notify.Mail) bool
	SendPush(n notify.Notification) bool
}

type InquiryRepository interface {
	Create(ctx context.Context, q models.Inquiry) (*models.Inquiry, error)
	// MarkSolved returns fault.ErrAlreadySolved when the inquiry was solved before.
	MarkSolved(ctx context.Context, id int) (*models.Inquiry, error)
	List(ctx context.Context, req paginator.PageRequest) (*paginator.Page[models.Inquiry], error)
	Delete(ctx context.Context, id int) error
}

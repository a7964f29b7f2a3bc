package services

import (
	"context"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/notify"
	"github.com/paulexconde/vaxreview/internal/pkg/paginator"
	"github.com/stretchr/testify/mock"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByID(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	args := m.Called(ctx, u)
	created, _ := args.Get(0).(*models.User)
	return created, args.Error(1)
}

func (m *mockUsers) NextNicknameIndex(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockUsers) Deactivate(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUsers) ReplaceKeywords(ctx context.Context, userID int, keywords []string) error {
	return m.Called(ctx, userID, keywords).Error(0)
}

func (m *mockUsers) Keywords(ctx context.Context, userID int) ([]string, error) {
	args := m.Called(ctx, userID)
	k, _ := args.Get(0).([]string)
	return k, args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) KeywordRecipients(ctx context.Context, keywords []string, excludeUserID int) ([]models.KeywordRecipient, error) {
	args := m.Called(ctx, keywords, excludeUserID)
	r, _ := args.Get(0).([]models.KeywordRecipient)
	return r, args.Error(1)
}

func (m *mockUsers) ActivityCounts(ctx context.Context, userID int) (*models.ActivityCounts, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*models.ActivityCounts)
	return c, args.Error(1)
}

type mockSurveys struct {
	mock.Mock
}

func (m *mockSurveys) Save(ctx context.Context, rec SurveyRecord) (*models.Survey, *models.Review, error) {
	args := m.Called(ctx, rec)
	s, _ := args.Get(0).(*models.Survey)
	r, _ := args.Get(1).(*models.Review)
	return s, r, args.Error(2)
}

type mockReviews struct {
	mock.Mock
}

func (m *mockReviews) Feed(ctx context.Context, where string, args []any, req paginator.PageRequest) (*paginator.Page[models.FeedRow], error) {
	ret := m.Called(ctx, where, args, req)
	p, _ := ret.Get(0).(*paginator.Page[models.FeedRow])
	return p, ret.Error(1)
}

func (m *mockReviews) Get(ctx context.Context, id int) (*models.FeedRow, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.FeedRow)
	return r, args.Error(1)
}

func (m *mockReviews) Keywords(ctx context.Context, reviewID int) ([]string, error) {
	args := m.Called(ctx, reviewID)
	k, _ := args.Get(0).([]string)
	return k, args.Error(1)
}

func (m *mockReviews) IncrementViewCount(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviews) SoftDelete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type mockComments struct {
	mock.Mock
}

func (m *mockComments) Get(ctx context.Context, id int) (*models.Comment, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockComments) Create(ctx context.Context, c models.Comment) (*models.Comment, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(*models.Comment)
	return created, args.Error(1)
}

func (m *mockComments) UpdateContent(ctx context.Context, id int, content string) (*models.Comment, error) {
	args := m.Called(ctx, id, content)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockComments) SoftDelete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockComments) ListByReview(ctx context.Context, reviewID int) ([]models.ThreadComment, error) {
	args := m.Called(ctx, reviewID)
	c, _ := args.Get(0).([]models.ThreadComment)
	return c, args.Error(1)
}

func (m *mockComments) LikedIDs(ctx context.Context, userID, reviewID int) (map[int]bool, error) {
	args := m.Called(ctx, userID, reviewID)
	ids, _ := args.Get(0).(map[int]bool)
	return ids, args.Error(1)
}

type mockLikes struct {
	mock.Mock
}

func (m *mockLikes) ToggleReviewLike(ctx context.Context, userID, reviewID int) (bool, error) {
	args := m.Called(ctx, userID, reviewID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikes) ToggleCommentLike(ctx context.Context, userID, commentID int) (bool, error) {
	args := m.Called(ctx, userID, commentID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikes) ReviewLiked(ctx context.Context, userID, reviewID int) (bool, error) {
	args := m.Called(ctx, userID, reviewID)
	return args.Bool(0), args.Error(1)
}

// syncDispatcher runs tasks inline so tests can observe them.
type syncDispatcher struct {
	mails  []notify.Mail
	pushes []notify.Notification
	errs   []error
	reject bool
}

func (d *syncDispatcher) Go(name string, task func(ctx context.Context) error) bool {
	if d.reject {
		return false
	}
	if err := task(context.Background()); err != nil {
		d.errs = append(d.errs, err)
	}
	return true
}

func (d *syncDispatcher) SendMail(mail notify.Mail) bool {
	if d.reject {
		return false
	}
	d.mails = append(d.mails, mail)
	return true
}

func (d *syncDispatcher) SendPush(n notify.Notification) bool {
	if d.reject {
		return false
	}
	d.pushes = append(d.pushes, n)
	return true
}

type mockInquiries struct {
	mock.Mock
}

func (m *mockInquiries) Create(ctx context.Context, q models.Inquiry) (*models.Inquiry, error) {
	args := m.Called(ctx, q)
	created, _ := args.Get(0).(*models.Inquiry)
	return created, args.Error(1)
}

func (m *mockInquiries) MarkSolved(ctx context.Context, id int) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(*models.Inquiry)
	return q, args.Error(1)
}

func (m *mockInquiries) List(ctx context.Context, req paginator.PageRequest) (*paginator.Page[models.Inquiry], error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*paginator.Page[models.Inquiry])
	return p, args.Error(1)
}

func (m *mockInquiries) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func activeUserFixture(id int) *models.User {
	return &models.User{ID: id, Nickname: "행복한 판다", IsActive: true, JoinSurveyCode: models.JoinSurveyNone}
}

func ptr[T any](v T) *T {
	return &v
}

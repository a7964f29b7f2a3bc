package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/paulexconde/vaxreview/internal/locales"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func koreanLocalizer(t *testing.T) *locales.Localizer {
	t.Helper()
	b, err := locales.New("ko")
	require.NoError(t, err)
	return b.Localizer()
}

func TestReportService_ReportReview(t *testing.T) {
	ctx := context.Background()

	t.Run("mails the moderators", func(t *testing.T) {
		reviews, users := new(mockReviews), new(mockUsers)
		dispatcher := &syncDispatcher{}
		row := feedRow(10, func(r *models.FeedRow) { r.UserID = 3; r.Content = "광고 문구" })
		users.On("GetByID", ctx, 5).Return(activeUserFixture(5), nil)
		reviews.On("Get", ctx, 10).Return(&row, nil)

		svc := NewReportService(reviews, new(mockComments), users, dispatcher, koreanLocalizer(t), "mod@example.com")
		ticket, err := svc.ReportReview(ctx, 5, 10, 2)
		require.NoError(t, err)

		assert.True(t, ticket.Queued)
		_, err = uuid.Parse(ticket.Ticket)
		assert.NoError(t, err)

		require.Len(t, dispatcher.mails, 1)
		mail := dispatcher.mails[0]
		assert.Equal(t, "mod@example.com", mail.To)
		assert.Equal(t, "[신고] 후기 10 신고가 접수되었습니다", mail.Subject)
		assert.Contains(t, mail.Body, ticket.Ticket)
		assert.Contains(t, mail.Body, "욕설, 반말, 부적절한 언어 사용")
		assert.Contains(t, mail.Body, "광고 문구")
	})

	t.Run("queue full still answers", func(t *testing.T) {
		reviews, users := new(mockReviews), new(mockUsers)
		row := feedRow(10)
		users.On("GetByID", ctx, 5).Return(activeUserFixture(5), nil)
		reviews.On("Get", ctx, 10).Return(&row, nil)

		svc := NewReportService(reviews, new(mockComments), users, &syncDispatcher{reject: true}, koreanLocalizer(t), "mod@example.com")
		ticket, err := svc.ReportReview(ctx, 5, 10, 1)
		require.NoError(t, err)
		assert.False(t, ticket.Queued)
	})

	t.Run("deleted review", func(t *testing.T) {
		reviews, users := new(mockReviews), new(mockUsers)
		dispatcher := &syncDispatcher{}
		row := feedRow(10, func(r *models.FeedRow) { r.IsDelete = true })
		users.On("GetByID", ctx, 5).Return(activeUserFixture(5), nil)
		reviews.On("Get", ctx, 10).Return(&row, nil)

		svc := NewReportService(reviews, new(mockComments), users, dispatcher, koreanLocalizer(t), "mod@example.com")
		_, err := svc.ReportReview(ctx, 5, 10, 1)
		assertStatus(t, 404, err)
		assert.Empty(t, dispatcher.mails)
	})

	t.Run("reason out of range", func(t *testing.T) {
		svc := NewReportService(new(mockReviews), new(mockComments), new(mockUsers), &syncDispatcher{}, koreanLocalizer(t), "mod@example.com")
		for _, reason := range []int{0, 5, -1} {
			_, err := svc.ReportReview(ctx, 5, 10, reason)
			assert.Equal(t, []string{"reason"}, fieldsOf(t, err))
		}
	})
}

func TestReportService_ReportComment(t *testing.T) {
	ctx := context.Background()
	comments, users := new(mockComments), new(mockUsers)
	dispatcher := &syncDispatcher{}
	users.On("GetByID", ctx, 5).Return(activeUserFixture(5), nil)
	comments.On("Get", ctx, 2).Return(&models.Comment{ID: 2, UserID: 3, Content: "도배"}, nil)
	comments.On("Get", ctx, 4).Return(&models.Comment{ID: 4, IsDelete: true}, nil)

	b, err := locales.New("ko")
	require.NoError(t, err)
	svc := NewReportService(new(mockReviews), comments, users, dispatcher, b.Localizer("en"), "mod@example.com")

	ticket, err := svc.ReportComment(ctx, 5, 2, 3)
	require.NoError(t, err)
	assert.True(t, ticket.Queued)
	require.Len(t, dispatcher.mails, 1)
	assert.Equal(t, "[Report] Comment 2 was reported", dispatcher.mails[0].Subject)
	assert.Contains(t, dispatcher.mails[0].Body, "Flooding or spam")

	_, err = svc.ReportComment(ctx, 5, 4, 3)
	assertStatus(t, 404, err)
	assert.Len(t, dispatcher.mails, 1)
}

func TestKeywordNotifier_ReviewCreated(t *testing.T) {
	review := models.Review{ID: 12, UserID: 7}

	t.Run("pushes to subscribers except the writer", func(t *testing.T) {
		users := new(mockUsers)
		dispatcher := &syncDispatcher{}
		users.On("KeywordRecipients", mock.Anything, []string{"미열", "두통"}, 7).Return([]models.KeywordRecipient{
			{Token: "tok-1", Keyword: "미열"},
			{Token: "tok-2", Keyword: "미열"},
		}, nil)

		n := NewKeywordNotifier(users, dispatcher, koreanLocalizer(t))
		assert.True(t, n.ReviewCreated(review, []string{"미열", "두통"}))

		require.Len(t, dispatcher.pushes, 1)
		push := dispatcher.pushes[0]
		assert.Equal(t, "관심 키워드 '미열' 새 후기", push.Title)
		assert.Equal(t, []string{"tok-1", "tok-2"}, push.Tokens)
		assert.Equal(t, map[string]string{"review_id": "12"}, push.Data)
	})

	t.Run("each recipient hears about their own keyword", func(t *testing.T) {
		users := new(mockUsers)
		dispatcher := &syncDispatcher{}
		users.On("KeywordRecipients", mock.Anything, []string{"미열", "두통"}, 7).Return([]models.KeywordRecipient{
			{Token: "tok-1", Keyword: "두통"},
			{Token: "tok-2", Keyword: "미열"},
			{Token: "tok-3", Keyword: "두통"},
		}, nil)

		n := NewKeywordNotifier(users, dispatcher, koreanLocalizer(t))
		assert.True(t, n.ReviewCreated(review, []string{"미열", "두통"}))

		require.Len(t, dispatcher.pushes, 2)
		assert.Equal(t, "관심 키워드 '미열' 새 후기", dispatcher.pushes[0].Title)
		assert.Equal(t, []string{"tok-2"}, dispatcher.pushes[0].Tokens)
		assert.Equal(t, "관심 키워드 '두통' 새 후기", dispatcher.pushes[1].Title)
		assert.Equal(t, []string{"tok-1", "tok-3"}, dispatcher.pushes[1].Tokens)
	})

	t.Run("no keywords", func(t *testing.T) {
		users := new(mockUsers)
		dispatcher := &syncDispatcher{}

		n := NewKeywordNotifier(users, dispatcher, koreanLocalizer(t))
		assert.False(t, n.ReviewCreated(review, nil))
		users.AssertNotCalled(t, "KeywordRecipients", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no subscribers", func(t *testing.T) {
		users := new(mockUsers)
		dispatcher := &syncDispatcher{}
		users.On("KeywordRecipients", mock.Anything, []string{"미열"}, 7).Return([]models.KeywordRecipient{}, nil)

		n := NewKeywordNotifier(users, dispatcher, koreanLocalizer(t))
		assert.True(t, n.ReviewCreated(review, []string{"미열"}))
		assert.Empty(t, dispatcher.pushes)
	})

	t.Run("lookup failure is left to the retry policy", func(t *testing.T) {
		users := new(mockUsers)
		dispatcher := &syncDispatcher{}
		users.On("KeywordRecipients", mock.Anything, []string{"미열"}, 7).Return(nil, errors.New("db down"))

		n := NewKeywordNotifier(users, dispatcher, koreanLocalizer(t))
		n.ReviewCreated(review, []string{"미열"})
		assert.Len(t, dispatcher.errs, 1)
		assert.Equal(t, []notify.Notification(nil), dispatcher.pushes)
	})
}

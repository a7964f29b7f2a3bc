package services

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/paulexconde/vaxreview/internal/locales"
	"github.com/paulexconde/vaxreview/internal/notify"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

const (
	MinReportReason = 1
	MaxReportReason = 4
)

type ReportTicket struct {
	Ticket string `json:"ticket"`
	Queued bool   `json:"queued"`
}

// ReportService mails abuse reports to the moderators. Delivery happens off
// the request; a failed delivery never fails the report.
type ReportService interface {
	ReportReview(ctx context.Context, reporterID, reviewID, reason int) (*ReportTicket, error)
	ReportComment(ctx context.Context, reporterID, commentID, reason int) (*ReportTicket, error)
}

type reportServiceImpl struct {
	reviews    ReviewRepository
	comments   CommentRepository
	users      UserRepository
	dispatcher Dispatcher
	localizer  *locales.Localizer
	reportTo   string
}

func NewReportService(reviews ReviewRepository, comments CommentRepository, users UserRepository, dispatcher Dispatcher, localizer *locales.Localizer, reportTo string) ReportService {
	return &reportServiceImpl{
		reviews:    reviews,
		comments:   comments,
		users:      users,
		dispatcher: dispatcher,
		localizer:  localizer,
		reportTo:   reportTo,
	}
}

func (s *reportServiceImpl) ReportReview(ctx context.Context, reporterID, reviewID, reason int) (*ReportTicket, error) {
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	if _, err := activeUser(ctx, s.users, reporterID); err != nil {
		return nil, err
	}

	row, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, notFoundOr(err, "review")
	}
	if row.IsDelete || !row.AuthorActive {
		return nil, fault.NotFound("review")
	}

	return s.send(locales.MsgReportReviewSubject, "review", reporterID, reviewID, row.UserID, reason, row.Content), nil
}

func (s *reportServiceImpl) ReportComment(ctx context.Context, reporterID, commentID, reason int) (*ReportTicket, error) {
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	if _, err := activeUser(ctx, s.users, reporterID); err != nil {
		return nil, err
	}

	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "comment")
	}
	if comment.IsDelete {
		return nil, fault.NotFound("comment")
	}

	return s.send(locales.MsgReportCommentSubject, "comment", reporterID, commentID, comment.UserID, reason, comment.Content), nil
}

func (s *reportServiceImpl) send(subjectID, target string, reporterID, targetID, authorID, reason int, content string) *ReportTicket {
	ticket := uuid.NewString()

	data := map[string]any{
		"Ticket":     ticket,
		"ReporterID": reporterID,
		"Target":     target,
		"TargetID":   strconv.Itoa(targetID),
		"AuthorID":   authorID,
		"Reason":     s.localizer.Get(locales.ReportReasonID(reason), nil),
		"Content":    content,
	}

	queued := s.dispatcher.SendMail(notify.Mail{
		To:      s.reportTo,
		Subject: s.localizer.Get(subjectID, data),
		Body:    s.localizer.Get(locales.MsgReportBody, data),
	})

	return &ReportTicket{Ticket: ticket, Queued: queued}
}

func validateReason(reason int) error {
	if reason < MinReportReason || reason > MaxReportReason {
		return fault.NewValidationError("reason", reason, "report reason must be between 1 and 4")
	}
	return nil
}

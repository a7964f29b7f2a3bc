package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/pkg/paginator"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

const (
	MaxInquiryLength      = 3000
	MaxInquiryEmailLength = 300
	MaxInquiryPhoneLength = 30

	// InquiryPageSize is used when a list request names no size.
	InquiryPageSize = 20
)

type InquiryInput struct {
	Content   string `json:"content"`
	UserEmail string `json:"user_email"`
	UserPhone string `json:"user_phone"`
}

// InquiryService is the QnA desk. Users ask, superusers list and resolve.
type InquiryService interface {
	Create(ctx context.Context, userID int, in InquiryInput) (*models.Inquiry, error)
	List(ctx context.Context, actorID int, req paginator.PageRequest) (*paginator.Page[models.Inquiry], error)
	// Solve marks an inquiry answered. Solving it twice is a conflict.
	Solve(ctx context.Context, actorID, inquiryID int) (*models.Inquiry, error)
	Delete(ctx context.Context, actorID, inquiryID int) error
}

type inquiryServiceImpl struct {
	inquiries InquiryRepository
	users     UserRepository
}

func NewInquiryService(inquiries InquiryRepository, users UserRepository) InquiryService {
	return &inquiryServiceImpl{inquiries: inquiries, users: users}
}

func (s *inquiryServiceImpl) Create(ctx context.Context, userID int, in InquiryInput) (*models.Inquiry, error) {
	in.Content = strings.TrimSpace(in.Content)

	var errs fault.ValidationErrors
	if n := utf8.RuneCountInString(in.Content); n == 0 || n > MaxInquiryLength {
		errs = append(errs, fault.NewValidationError("content", n, "content must be 1 to 3000 characters"))
	}
	if utf8.RuneCountInString(in.UserEmail) > MaxInquiryEmailLength {
		errs = append(errs, fault.NewValidationError("user_email", in.UserEmail, "too long"))
	}
	if utf8.RuneCountInString(in.UserPhone) > MaxInquiryPhoneLength {
		errs = append(errs, fault.NewValidationError("user_phone", in.UserPhone, "too long"))
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if _, err := activeUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	q, err := s.inquiries.Create(ctx, models.Inquiry{
		UserID:    userID,
		Content:   in.Content,
		UserEmail: in.UserEmail,
		UserPhone: in.UserPhone,
	})
	if err != nil {
		return nil, fault.NewInternalError("create inquiry", err)
	}
	return q, nil
}

func (s *inquiryServiceImpl) List(ctx context.Context, actorID int, req paginator.PageRequest) (*paginator.Page[models.Inquiry], error) {
	if err := s.requireSuper(ctx, actorID); err != nil {
		return nil, err
	}
	if req.Size < 1 {
		req.Size = InquiryPageSize
	}

	page, err := s.inquiries.List(ctx, req)
	if err != nil {
		return nil, fault.NewInternalError("list inquiries", err)
	}
	return page, nil
}

func (s *inquiryServiceImpl) Solve(ctx context.Context, actorID, inquiryID int) (*models.Inquiry, error) {
	if err := s.requireSuper(ctx, actorID); err != nil {
		return nil, err
	}

	q, err := s.inquiries.MarkSolved(ctx, inquiryID)
	switch {
	case err == nil:
		return q, nil
	case errors.Is(err, fault.ErrNotFound):
		return nil, fault.NotFound("inquiry")
	case errors.Is(err, fault.ErrAlreadySolved):
		return nil, fault.Conflict("solve inquiry", err)
	default:
		return nil, fault.NewInternalError("solve inquiry", err)
	}
}

func (s *inquiryServiceImpl) Delete(ctx context.Context, actorID, inquiryID int) error {
	if err := s.requireSuper(ctx, actorID); err != nil {
		return err
	}

	err := s.inquiries.Delete(ctx, inquiryID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fault.ErrNotFound):
		return fault.NotFound("inquiry")
	default:
		return fault.NewInternalError("delete inquiry", err)
	}
}

func (s *inquiryServiceImpl) requireSuper(ctx context.Context, actorID int) error {
	actor, err := activeUser(ctx, s.users, actorID)
	if err != nil {
		return err
	}
	if !actor.IsSuper {
		return fault.NotAuthorized("superuser only")
	}
	return nil
}

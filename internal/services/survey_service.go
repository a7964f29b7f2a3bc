package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

type SurveyResult struct {
	Survey *models.Survey `json:"survey"`
	Review *models.Review `json:"review,omitempty"`
}

// Handles survey submissions.
type SurveyService interface {
	// SubmitJoinSurvey stores the one-time onboarding survey of any type.
	SubmitJoinSurvey(ctx context.Context, userID int, sub Submission) (*SurveyResult, error)
	// SubmitReview stores a type A survey with its review.
	SubmitReview(ctx context.Context, userID int, sub Submission) (*SurveyResult, error)
}

type surveyServiceImpl struct {
	normalizer SurveyNormalizer
	users      UserRepository
	surveys    SurveyRepository
}

// Instantiate the SurveyService.
func NewSurveyService(normalizer SurveyNormalizer, users UserRepository, surveys SurveyRepository) SurveyService {
	return &surveyServiceImpl{
		normalizer: normalizer,
		users:      users,
		surveys:    surveys,
	}
}

func (s *surveyServiceImpl) SubmitJoinSurvey(ctx context.Context, userID int, sub Submission) (*SurveyResult, error) {
	user, err := activeUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	if user.HasJoinSurvey() {
		return nil, fault.Conflict("join survey", fault.ErrAlreadySurveyed)
	}

	normalized, err := s.normalizer.Normalize(userID, sub)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, normalized, true)
}

func (s *surveyServiceImpl) SubmitReview(ctx context.Context, userID int, sub Submission) (*SurveyResult, error) {
	if sub.SurveyType != SurveyTypeA {
		return nil, fault.NewValidationError("survey_type", sub.SurveyType, "reviews carry a type A survey")
	}

	if _, err := activeUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	normalized, err := s.normalizer.Normalize(userID, sub)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, normalized, false)
}

func (s *surveyServiceImpl) save(ctx context.Context, n *NormalizedSurvey, join bool) (*SurveyResult, error) {
	rec, err := recordFromSurvey(n)
	if err != nil {
		return nil, err
	}
	rec.MarkJoin = join

	survey, review, err := s.surveys.Save(ctx, rec)
	if err != nil {
		if errors.Is(err, fault.ErrAlreadySurveyed) {
			return nil, fault.Conflict("join survey", err)
		}
		return nil, fault.NewInternalError("save survey", err)
	}

	return &SurveyResult{Survey: survey, Review: review}, nil
}

func recordFromSurvey(n *NormalizedSurvey) (SurveyRecord, error) {
	data, err := json.Marshal(n.Answers)
	if err != nil {
		return SurveyRecord{}, fault.NewInternalError("encode answers", err)
	}

	rec := SurveyRecord{
		Survey: models.Survey{
			UserID:     n.UserID,
			SurveyType: string(n.SurveyType),
			Data:       data,
		},
	}

	if v := n.Vaccination; v != nil {
		rec.Survey.VaccineType = &v.VaccineType
		rec.Survey.VaccineRound = &v.Round
		rec.Survey.DateFrom = &v.DateFrom
		rec.Survey.IsCrossed = &v.IsCrossed
		rec.Survey.IsPregnant = &v.IsPregnant
		rec.Survey.IsUnderlyingDisease = &v.IsUnderlyingDisease
	}

	if r := n.Review; r != nil {
		rec.Review = &models.Review{
			UserID:  n.UserID,
			Content: r.Content,
			Images:  r.Images,
		}
		rec.Keywords = dedupe(r.Keywords)
	}

	return rec, nil
}

// activeUser loads the acting user. Withdrawn accounts cannot act.
func activeUser(ctx context.Context, users UserRepository, userID int) (*models.User, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fault.NotFound("user")
		}
		return nil, fault.NewInternalError("load user", err)
	}
	if !user.IsActive {
		return nil, fault.NotAuthorized("account withdrawn")
	}
	return user, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

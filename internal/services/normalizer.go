package services

import (
	"net/url"
	"slices"
	"unicode/utf8"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

const (
	MaxReviewContent  = 3000
	MaxReviewKeywords = 10
	MaxKeywordLength  = 30
)

var (
	vaccineTypes   = []string{"PFIZER", "MODERNA", "AZ", "JANSSEN", "ETC"}
	vaccineRounds  = []string{"FIRST", "SECOND", "THIRD"}
	dateFromValues = []string{"0", "2", "3", "over5", "over1week", "over1month"}
)

// Vaccination details that come with every type A survey.
type Vaccination struct {
	VaccineType         string `json:"vaccine_type"`
	Round               string `json:"round"`
	DateFrom            string `json:"date_from"`
	IsCrossed           bool   `json:"is_crossed"`
	IsPregnant          bool   `json:"is_pregnant"`
	IsUnderlyingDisease bool   `json:"is_underlying_disease"`
}

type ReviewInput struct {
	Content  string        `json:"content"`
	Images   models.Images `json:"images"`
	Keywords []string      `json:"keywords"`
}

// Submission is a survey as posted by a client.
type Submission struct {
	SurveyType    SurveyType   `json:"survey_type"`
	SurveyDetails RawAnswers   `json:"survey_details"`
	Vaccination   *Vaccination `json:"vaccination,omitempty"`
	Review        *ReviewInput `json:"review,omitempty"`
}

// NormalizedSurvey is a validated submission ready to be stored. Review is
// always set for type A and never for the other types.
type NormalizedSurvey struct {
	UserID      int
	SurveyType  SurveyType
	Answers     AnswerSet
	Vaccination *Vaccination
	Review      *ReviewInput
}

// Dispatches submissions to the validator by survey type.
type SurveyNormalizer interface {
	Normalize(userID int, sub Submission) (*NormalizedSurvey, error)
}

type normalizerImpl struct {
	validator AnswerValidator
}

func NewSurveyNormalizer(validator AnswerValidator) SurveyNormalizer {
	return &normalizerImpl{validator: validator}
}

func (n *normalizerImpl) Normalize(userID int, sub Submission) (*NormalizedSurvey, error) {
	if !n.validator.Supports(sub.SurveyType) {
		return nil, fault.UnsupportedSurveyType(string(sub.SurveyType))
	}

	answers, err := n.validator.Validate(sub.SurveyType, sub.SurveyDetails)
	if err != nil {
		return nil, err
	}

	out := &NormalizedSurvey{
		UserID:     userID,
		SurveyType: sub.SurveyType,
		Answers:    answers,
	}

	var errs fault.ValidationErrors

	if sub.SurveyType == SurveyTypeA {
		if sub.Vaccination == nil {
			errs = append(errs, fault.NewValidationError("vaccination", nil, "required for survey A"))
		} else {
			errs = append(errs, validateVaccination(sub.Vaccination)...)
			out.Vaccination = sub.Vaccination
		}

		review := sub.Review
		if review == nil {
			review = &ReviewInput{}
		}
		errs = append(errs, validateReview(review)...)
		out.Review = review
	} else {
		if sub.Vaccination != nil {
			errs = append(errs, fault.NewValidationError("vaccination", sub.Vaccination, "only survey A carries vaccination details"))
		}
		if sub.Review != nil {
			errs = append(errs, fault.NewValidationError("review", sub.Review.Content, "only survey A is paired with a review"))
		}
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func validateVaccination(v *Vaccination) fault.ValidationErrors {
	var errs fault.ValidationErrors
	if !slices.Contains(vaccineTypes, v.VaccineType) {
		errs = append(errs, fault.NewValidationError("vaccine_type", v.VaccineType, "unknown vaccine type"))
	}
	if !slices.Contains(vaccineRounds, v.Round) {
		errs = append(errs, fault.NewValidationError("round", v.Round, "unknown round"))
	}
	if !slices.Contains(dateFromValues, v.DateFrom) {
		errs = append(errs, fault.NewValidationError("date_from", v.DateFrom, "unknown elapsed period"))
	}
	return errs
}

func validateReview(r *ReviewInput) fault.ValidationErrors {
	var errs fault.ValidationErrors

	if utf8.RuneCountInString(r.Content) > MaxReviewContent {
		errs = append(errs, fault.NewValidationError("content", utf8.RuneCountInString(r.Content), "too long"))
	}

	if len(r.Images) > models.MaxReviewImages {
		errs = append(errs, fault.NewValidationError("images", len(r.Images), "too many images"))
	}
	for _, img := range r.Images {
		if img == nil || *img == "" {
			continue
		}
		if u, err := url.Parse(*img); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fault.NewValidationError("images", *img, "not an http(s) url"))
		}
	}

	if len(r.Keywords) > MaxReviewKeywords {
		errs = append(errs, fault.NewValidationError("keywords", len(r.Keywords), "too many keywords"))
	}
	for _, k := range r.Keywords {
		if k == "" || utf8.RuneCountInString(k) > MaxKeywordLength {
			errs = append(errs, fault.NewValidationError("keywords", k, "keyword must be 1 to 30 characters"))
		}
	}

	return errs
}

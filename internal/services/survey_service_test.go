package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/pkg/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type surveyFixture struct {
	users   *mockUsers
	surveys *mockSurveys
	svc     SurveyService
}

func newSurveyFixture(t *testing.T) *surveyFixture {
	f := &surveyFixture{users: new(mockUsers), surveys: new(mockSurveys)}
	f.svc = NewSurveyService(newNormalizer(t), f.users, f.surveys)
	return f
}

func typeASubmission() Submission {
	return Submission{
		SurveyType:    SurveyTypeA,
		SurveyDetails: validSurveyA(),
		Vaccination:   validVaccination(),
		Review:        &ReviewInput{Content: "이틀 동안 미열", Keywords: []string{"미열", "두통", "미열"}},
	}
}

func TestSubmitJoinSurvey_StoresRecord(t *testing.T) {
	ctx := context.Background()
	f := newSurveyFixture(t)
	f.users.On("GetByID", ctx, 7).Return(activeUserFixture(7), nil)

	var saved SurveyRecord
	f.surveys.On("Save", ctx, mock.AnythingOfType("services.SurveyRecord")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(SurveyRecord) }).
		Return(&models.Survey{ID: 1, UserID: 7, SurveyType: "A"}, &models.Review{ID: 3, UserID: 7}, nil)

	res, err := f.svc.SubmitJoinSurvey(ctx, 7, typeASubmission())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Survey.ID)
	assert.Equal(t, 3, res.Review.ID)

	assert.True(t, saved.MarkJoin)
	assert.Equal(t, "A", saved.Survey.SurveyType)
	assert.Equal(t, 7, saved.Survey.UserID)
	require.NotNil(t, saved.Survey.VaccineType)
	assert.Equal(t, "PFIZER", *saved.Survey.VaccineType)
	require.NotNil(t, saved.Review)
	assert.Equal(t, "이틀 동안 미열", saved.Review.Content)
	assert.Equal(t, []string{"미열", "두통"}, saved.Keywords)

	var stored AnswerSet
	require.NoError(t, json.Unmarshal(saved.Survey.Data, &stored))
	assert.Equal(t, []int{1, 3}, stored["q1"].Choices)
}

func TestSubmitJoinSurvey_TypeBHasNoReview(t *testing.T) {
	ctx := context.Background()
	f := newSurveyFixture(t)
	f.users.On("GetByID", ctx, 7).Return(activeUserFixture(7), nil)

	var saved SurveyRecord
	f.surveys.On("Save", ctx, mock.AnythingOfType("services.SurveyRecord")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(SurveyRecord) }).
		Return(&models.Survey{ID: 2, SurveyType: "B"}, nil, nil)

	res, err := f.svc.SubmitJoinSurvey(ctx, 7, Submission{
		SurveyType:    SurveyTypeB,
		SurveyDetails: RawAnswers{"q1": []any{3}, "q2": []any{1}, "q3": []any{5}},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Review)
	assert.Nil(t, saved.Review)
	assert.Nil(t, saved.Survey.VaccineType)
	assert.Empty(t, saved.Keywords)
}

func TestSubmitJoinSurvey_Twice(t *testing.T) {
	ctx := context.Background()
	f := newSurveyFixture(t)
	surveyed := activeUserFixture(7)
	surveyed.JoinSurveyCode = "A"
	f.users.On("GetByID", ctx, 7).Return(surveyed, nil)

	_, err := f.svc.SubmitJoinSurvey(ctx, 7, typeASubmission())
	assert.ErrorIs(t, err, fault.ErrAlreadySurveyed)
	assertStatus(t, 409, err)
	f.surveys.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitJoinSurvey_LosesRace(t *testing.T) {
	ctx := context.Background()
	f := newSurveyFixture(t)
	f.users.On("GetByID", ctx, 7).Return(activeUserFixture(7), nil)
	f.surveys.On("Save", ctx, mock.Anything).Return(nil, nil, fault.ErrAlreadySurveyed)

	_, err := f.svc.SubmitJoinSurvey(ctx, 7, typeASubmission())
	assertStatus(t, 409, err)
}

func TestSubmitJoinSurvey_InvalidAnswersNotStored(t *testing.T) {
	ctx := context.Background()
	f := newSurveyFixture(t)
	f.users.On("GetByID", ctx, 7).Return(activeUserFixture(7), nil)

	sub := typeASubmission()
	sub.SurveyDetails["q5"] = []any{9}

	_, err := f.svc.SubmitJoinSurvey(ctx, 7, sub)
	assert.Equal(t, []string{"q5"}, fieldsOf(t, err))
	f.surveys.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitJoinSurvey_WithdrawnUser(t *testing.T) {
	ctx := context.Background()
	f := newSurveyFixture(t)
	f.users.On("GetByID", ctx, 7).Return(&models.User{ID: 7, IsActive: false, JoinSurveyCode: models.JoinSurveyNone}, nil)

	_, err := f.svc.SubmitJoinSurvey(ctx, 7, typeASubmission())
	assertStatus(t, 403, err)
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()

	t.Run("does not mark the join survey", func(t *testing.T) {
		f := newSurveyFixture(t)
		surveyed := activeUserFixture(7)
		surveyed.JoinSurveyCode = "B"
		f.users.On("GetByID", ctx, 7).Return(surveyed, nil)

		var saved SurveyRecord
		f.surveys.On("Save", ctx, mock.AnythingOfType("services.SurveyRecord")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(SurveyRecord) }).
			Return(&models.Survey{ID: 4}, &models.Review{ID: 9}, nil)

		res, err := f.svc.SubmitReview(ctx, 7, typeASubmission())
		require.NoError(t, err)
		assert.Equal(t, 9, res.Review.ID)
		assert.False(t, saved.MarkJoin)
	})

	t.Run("only type A", func(t *testing.T) {
		f := newSurveyFixture(t)
		_, err := f.svc.SubmitReview(ctx, 7, Submission{SurveyType: SurveyTypeB, SurveyDetails: RawAnswers{"q1": 1}})
		assert.Equal(t, []string{"survey_type"}, fieldsOf(t, err))
		f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newSurveyFixture(t)
		f.users.On("GetByID", ctx, 7).Return(activeUserFixture(7), nil)
		f.surveys.On("Save", ctx, mock.Anything).Return(nil, nil, errors.New("deadlock detected"))

		_, err := f.svc.SubmitReview(ctx, 7, typeASubmission())
		assertStatus(t, 500, err)
	})
}

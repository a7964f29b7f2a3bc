package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/pkg/store"
	"github.com/paulexconde/vaxreview/internal/services"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

// surveyDTO is one survey row. The fields without a column ride along to the
// hooks, which write the review and the join mark in the same transaction.
type surveyDTO struct {
	UserID              int            `db:"user_id"`
	SurveyType          string         `db:"survey_type"`
	VaccineType         *string        `db:"vaccine_type"`
	VaccineRound        *string        `db:"vaccine_round"`
	IsCrossed           *bool          `db:"is_crossed"`
	IsPregnant          *bool          `db:"is_pregnant"`
	IsUnderlyingDisease *bool          `db:"is_underlying_disease"`
	DateFrom            *string        `db:"date_from"`
	Data                types.JSONText `db:"data"`

	Review   *models.Review `db:"-"`
	Keywords []string       `db:"-"`
	MarkJoin bool           `db:"-"`
}

func (d *surveyDTO) ToModel(id int) any {
	return &models.Survey{
		ID:                  id,
		UserID:              d.UserID,
		SurveyType:          d.SurveyType,
		VaccineType:         d.VaccineType,
		VaccineRound:        d.VaccineRound,
		IsCrossed:           d.IsCrossed,
		IsPregnant:          d.IsPregnant,
		IsUnderlyingDisease: d.IsUnderlyingDisease,
		DateFrom:            d.DateFrom,
		Data:                d.Data,
	}
}

// ReviewCreatedFunc runs after a review has been committed.
type ReviewCreatedFunc func(review models.Review, keywords []string)

type SurveyRepository struct {
	store    store.Datastorer[models.Survey]
	onReview ReviewCreatedFunc
}

func NewSurveyRepository(db *sqlx.DB) *SurveyRepository {
	r := &SurveyRepository{store: store.NewDataStore[models.Survey](db, "surveys")}
	r.store.SetHooks(store.Hooks{
		PreSave:         []func(ctx context.Context, tx *sqlx.Tx, data store.DTO, isNew bool) error{markJoinSurvey},
		PostSave:        []func(ctx context.Context, tx *sqlx.Tx, data store.DTO, model any, isNew bool) error{insertReview},
		AfterSaveCommit: []func(ctx context.Context, data store.DTO, model any, isNew bool) store.AfterSaveCommitHook{r.reviewCommitted},
	})
	return r
}

// OnReviewCreated registers fn for committed reviews. Call it before serving.
func (r *SurveyRepository) OnReviewCreated(fn ReviewCreatedFunc) {
	r.onReview = fn
}

func (r *SurveyRepository) Save(ctx context.Context, rec services.SurveyRecord) (*models.Survey, *models.Review, error) {
	s := rec.Survey
	dto := &surveyDTO{
		UserID:              s.UserID,
		SurveyType:          s.SurveyType,
		VaccineType:         s.VaccineType,
		VaccineRound:        s.VaccineRound,
		IsCrossed:           s.IsCrossed,
		IsPregnant:          s.IsPregnant,
		IsUnderlyingDisease: s.IsUnderlyingDisease,
		DateFrom:            s.DateFrom,
		Data:                s.Data,
		Keywords:            rec.Keywords,
		MarkJoin:            rec.MarkJoin,
	}
	if rec.Review != nil {
		review := *rec.Review
		dto.Review = &review
	}

	model, err := r.store.Create(ctx, dto)
	if err != nil {
		return nil, nil, err
	}
	return model.(*models.Survey), dto.Review, nil
}

// markJoinSurvey claims the user's one join survey. The guarded update makes a
// concurrent second submission fail instead of storing two.
func markJoinSurvey(ctx context.Context, tx *sqlx.Tx, data store.DTO, isNew bool) error {
	d, ok := data.(*surveyDTO)
	if !ok || !isNew || !d.MarkJoin {
		return nil
	}

	res, err := tx.ExecContext(ctx, "UPDATE users SET join_survey_code = $1 WHERE id = $2 AND join_survey_code = $3",
		d.SurveyType, d.UserID, models.JoinSurveyNone)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fault.ErrAlreadySurveyed
	}
	return nil
}

func insertReview(ctx context.Context, tx *sqlx.Tx, data store.DTO, model any, isNew bool) error {
	d, ok := data.(*surveyDTO)
	if !ok || !isNew || d.Review == nil {
		return nil
	}
	survey := model.(*models.Survey)

	d.Review.SurveyID = &survey.ID
	err := tx.QueryRowxContext(ctx, `INSERT INTO reviews (user_id, survey_id, content, images)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		d.Review.UserID, survey.ID, d.Review.Content, d.Review.Images,
	).Scan(&d.Review.ID, &d.Review.CreatedAt)
	if err != nil {
		return store.MapError(err)
	}

	for _, k := range d.Keywords {
		if _, err := tx.ExecContext(ctx, "INSERT INTO review_keywords (review_id, keyword) VALUES ($1, $2) ON CONFLICT DO NOTHING", d.Review.ID, k); err != nil {
			return store.MapError(err)
		}
	}
	return nil
}

func (r *SurveyRepository) reviewCommitted(ctx context.Context, data store.DTO, model any, isNew bool) store.AfterSaveCommitHook {
	d, ok := data.(*surveyDTO)
	if !ok || !isNew || d.Review == nil || r.onReview == nil {
		return nil
	}
	review, keywords := *d.Review, d.Keywords
	return func() { r.onReview(review, keywords) }
}

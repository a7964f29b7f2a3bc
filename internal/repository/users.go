package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/pkg/store"
	"github.com/paulexconde/vaxreview/internal/services"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

const userColumns = `id, email, nickname, gender, birth_year, is_super, is_active, join_survey_code,
	character_image, fcm_token, password_hash, created_at`

type userDTO struct {
	Email          string  `db:"email"`
	Nickname       string  `db:"nickname"`
	Gender         string  `db:"gender"`
	BirthYear      int     `db:"birth_year"`
	IsActive       bool    `db:"is_active"`
	JoinSurveyCode string  `db:"join_survey_code"`
	CharacterImage string  `db:"character_image"`
	FCMToken       *string `db:"fcm_token"`
	PasswordHash   string  `db:"password_hash"`
}

func (d *userDTO) ToModel(id int) any {
	return &models.User{
		ID:             id,
		Email:          d.Email,
		Nickname:       d.Nickname,
		Gender:         d.Gender,
		BirthYear:      d.BirthYear,
		IsActive:       d.IsActive,
		JoinSurveyCode: d.JoinSurveyCode,
		CharacterImage: d.CharacterImage,
		FCMToken:       d.FCMToken,
		PasswordHash:   d.PasswordHash,
	}
}

type UserRepository struct {
	store store.Datastorer[models.User]
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{store: store.NewDataStore[models.User](db, "users")}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.store.Get(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.store.Get(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

// Create returns services.ErrEmailTaken for a registered email. Any other
// unique violation is a nickname collision.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	model, err := r.store.Create(ctx, &userDTO{
		Email:          u.Email,
		Nickname:       u.Nickname,
		Gender:         u.Gender,
		BirthYear:      u.BirthYear,
		IsActive:       u.IsActive,
		JoinSurveyCode: u.JoinSurveyCode,
		CharacterImage: u.CharacterImage,
		FCMToken:       u.FCMToken,
		PasswordHash:   u.PasswordHash,
	})
	if err != nil {
		if errors.Is(err, fault.ErrUniqueViolation) && store.Constraint(err) == usersEmailKey {
			return nil, fmt.Errorf("%w: %w", services.ErrEmailTaken, err)
		}
		return nil, err
	}

	created := model.(*models.User)
	return r.GetByID(ctx, created.ID)
}

func (r *UserRepository) NextNicknameIndex(ctx context.Context) (int, error) {
	raw, err := r.store.QueryRow(ctx, `INSERT INTO nickname_counter (id, counter) VALUES (1, 0)
		ON CONFLICT (id) DO UPDATE SET counter = nickname_counter.counter + 1
		RETURNING counter`)
	if err != nil {
		return 0, err
	}

	switch v := raw.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("nickname counter: unexpected %T", raw)
	}
}

func (r *UserRepository) Deactivate(ctx context.Context, id int) error {
	return r.store.BulkUpdate(ctx, "UPDATE users SET is_active = FALSE, fcm_token = NULL WHERE id = $1", id)
}

// ReplaceKeywords only touches the keywords that changed.
func (r *UserRepository) ReplaceKeywords(ctx context.Context, userID int, keywords []string) error {
	return store.WithTx(ctx, r.store.Base(), func(tx *sqlx.Tx) error {
		var current []string
		if err := tx.SelectContext(ctx, &current, "SELECT keyword FROM user_keywords WHERE user_id = $1", userID); err != nil {
			return err
		}

		var removed []string
		for _, k := range current {
			if !slices.Contains(keywords, k) {
				removed = append(removed, k)
			}
		}
		if len(removed) > 0 {
			if _, err := tx.ExecContext(ctx, "DELETE FROM user_keywords WHERE user_id = $1 AND keyword = ANY($2)", userID, pq.Array(removed)); err != nil {
				return err
			}
		}

		for _, k := range keywords {
			if slices.Contains(current, k) {
				continue
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO user_keywords (user_id, keyword) VALUES ($1, $2) ON CONFLICT DO NOTHING", userID, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) Keywords(ctx context.Context, userID int) ([]string, error) {
	keywords := []string{}
	err := r.store.Base().SelectContext(ctx, &keywords, "SELECT keyword FROM user_keywords WHERE user_id = $1 ORDER BY keyword", userID)
	return keywords, err
}

// KeywordRecipients picks, per user, the earliest of keywords they follow.
func (r *UserRepository) KeywordRecipients(ctx context.Context, keywords []string, excludeUserID int) ([]models.KeywordRecipient, error) {
	recipients := []models.KeywordRecipient{}
	err := r.store.Base().SelectContext(ctx, &recipients, `SELECT DISTINCT ON (u.id) u.fcm_token, k.keyword
		FROM users u
		JOIN user_keywords k ON k.user_id = u.id
		WHERE k.keyword = ANY($1::text[])
			AND u.id <> $2
			AND u.is_active = TRUE
			AND u.fcm_token IS NOT NULL AND u.fcm_token <> ''
		ORDER BY u.id, array_position($1::text[], k.keyword)`, pq.Array(keywords), excludeUserID)
	return recipients, err
}

func (r *UserRepository) ActivityCounts(ctx context.Context, userID int) (*models.ActivityCounts, error) {
	var counts models.ActivityCounts
	err := r.store.Base().GetContext(ctx, &counts, `SELECT
		(SELECT COUNT(*) FROM reviews WHERE user_id = $1 AND is_delete = FALSE) AS reviews,
		(SELECT COUNT(*) FROM comments WHERE user_id = $1 AND is_delete = FALSE) AS comments,
		(SELECT COUNT(*) FROM user_likes WHERE user_id = $1) AS review_likes,
		(SELECT COUNT(*) FROM user_comment_likes WHERE user_id = $1) AS comment_likes`, userID)
	if err != nil {
		return nil, store.MapError(err)
	}
	return &counts, nil
}

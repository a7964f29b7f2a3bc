package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"unicode/utf8"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/pkg/fault"
	"golang.org/x/crypto/bcrypt"
)

// nicknameSeed fixes the pool order so a persisted counter keeps pointing at
// the same nickname across restarts.
const nicknameSeed = 192021

var (
	defaultAdjectives      = []string{"행복한", "용감한", "씩씩한", "든든한", "느긋한", "반짝이는", "수줍은", "다정한"}
	defaultNouns           = []string{"코알라", "판다", "사자", "호랑이", "여우", "토끼", "곰", "강아지", "고양이", "원숭이"}
	defaultCharacterImages = []string{"koala", "panda", "lion", "tiger", "fox", "rabbit", "bear", "dog", "cat", "monkey"}
)

// NicknamePool is the immutable list of generated nicknames, shared by every
// request. Uniqueness comes from the persisted counter that indexes it.
type NicknamePool struct {
	names  []string
	images []string
}

// NewNicknamePool builds every "adjective noun" pair and shuffles them with a
// fixed seed. Empty lists fall back to the built-in words.
func NewNicknamePool(adjectives, nouns, images []string) *NicknamePool {
	if len(adjectives) == 0 {
		adjectives = defaultAdjectives
	}
	if len(nouns) == 0 {
		nouns = defaultNouns
	}
	if len(images) == 0 {
		images = defaultCharacterImages
	}

	names := make([]string, 0, len(adjectives)*len(nouns))
	for _, a := range adjectives {
		for _, n := range nouns {
			names = append(names, a+" "+n)
		}
	}

	r := rand.New(rand.NewPCG(nicknameSeed, nicknameSeed))
	r.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	return &NicknamePool{names: names, images: slices.Clone(images)}
}

func (p *NicknamePool) Size() int {
	return len(p.names)
}

// At returns the nickname for a counter value, wrapping around the pool.
func (p *NicknamePool) At(counter int) string {
	i := counter % len(p.names)
	if i < 0 {
		i += len(p.names)
	}
	return p.names[i]
}

func (p *NicknamePool) CharacterImage() string {
	return p.images[rand.IntN(len(p.images))]
}

// Password bounds in bytes. bcrypt ignores anything past 72.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

type RegisterInput struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Gender    string  `json:"gender"`
	BirthYear int     `json:"birth_year"`
	FCMToken  *string `json:"fcm_token,omitempty"`
}

// Profile is what a user sees about their own account.
type Profile struct {
	User     *models.User          `json:"user"`
	Activity models.ActivityCounts `json:"activity"`
	Keywords []string              `json:"keywords"`
}

type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	// Login checks a local password and returns the account to issue a token for.
	Login(ctx context.Context, email, password string) (*models.User, error)
	Profile(ctx context.Context, userID int) (*Profile, error)
	Withdraw(ctx context.Context, userID int) error
	// ReplaceKeywords sets the keywords the user gets pushes for.
	ReplaceKeywords(ctx context.Context, userID int, keywords []string) ([]string, error)
}

type accountServiceImpl struct {
	users UserRepository
	pool  *NicknamePool
}

func NewAccountService(users UserRepository, pool *NicknamePool) AccountService {
	return &accountServiceImpl{users: users, pool: pool}
}

// ErrEmailTaken is returned by UserRepository.Create, wrapping
// fault.ErrUniqueViolation, when the email already has an account.
var ErrEmailTaken = errors.New("email already registered")

// maxNicknameAttempts bounds retries once the counter has wrapped the pool.
const maxNicknameAttempts = 3

func (s *accountServiceImpl) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var errs fault.ValidationErrors
	if in.Email == "" {
		errs = append(errs, fault.NewValidationError("email", in.Email, "required"))
	}
	if len(in.Password) < MinPasswordLength || len(in.Password) > MaxPasswordLength {
		errs = append(errs, fault.NewValidationError("password", len(in.Password), "password must be 8 to 72 bytes"))
	}
	if !slices.Contains([]string{models.GenderETC, models.GenderMale, models.GenderFemale}, in.Gender) {
		errs = append(errs, fault.NewValidationError("gender", in.Gender, "unknown gender"))
	}
	if in.BirthYear < 1900 {
		errs = append(errs, fault.NewValidationError("birth_year", in.BirthYear, "out of range"))
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fault.NewInternalError("hash password", err)
	}

	for range maxNicknameAttempts {
		index, err := s.users.NextNicknameIndex(ctx)
		if err != nil {
			return nil, fault.NewInternalError("next nickname", err)
		}

		user, err := s.users.Create(ctx, &models.User{
			Email:          in.Email,
			Nickname:       s.pool.At(index),
			Gender:         in.Gender,
			BirthYear:      in.BirthYear,
			IsActive:       true,
			JoinSurveyCode: models.JoinSurveyNone,
			CharacterImage: s.pool.CharacterImage(),
			FCMToken:       in.FCMToken,
			PasswordHash:   string(hash),
		})
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, ErrEmailTaken):
			return nil, fault.Conflict("register", err)
		case !errors.Is(err, fault.ErrUniqueViolation):
			return nil, fault.NewInternalError("create user", err)
		}
		// nickname taken after the counter wrapped; take the next one
	}

	return nil, fault.Conflict("register", errors.New("no free nickname"))
}

func (s *accountServiceImpl) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return nil, fault.NewClientError("login", fault.ErrInvalidCredentials)
		}
		return nil, fault.NewInternalError("load user", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fault.NewClientError("login", fault.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, fault.NotAuthorized("account withdrawn")
	}
	return user, nil
}

func (s *accountServiceImpl) Profile(ctx context.Context, userID int) (*Profile, error) {
	user, err := activeUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.users.ActivityCounts(ctx, userID)
	if err != nil {
		return nil, fault.NewInternalError("activity counts", err)
	}
	keywords, err := s.users.Keywords(ctx, userID)
	if err != nil {
		return nil, fault.NewInternalError("load keywords", err)
	}
	return &Profile{User: user, Activity: *counts, Keywords: keywords}, nil
}

func (s *accountServiceImpl) Withdraw(ctx context.Context, userID int) error {
	if _, err := activeUser(ctx, s.users, userID); err != nil {
		return err
	}
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return fault.NewInternalError("withdraw", err)
	}
	return nil
}

func (s *accountServiceImpl) ReplaceKeywords(ctx context.Context, userID int, keywords []string) ([]string, error) {
	keywords = dedupe(keywords)

	var errs fault.ValidationErrors
	if len(keywords) > MaxReviewKeywords {
		errs = append(errs, fault.NewValidationError("keywords", len(keywords), "too many keywords"))
	}
	for _, k := range keywords {
		if k == "" || utf8.RuneCountInString(k) > MaxKeywordLength {
			errs = append(errs, fault.NewValidationError("keywords", k, "keyword must be 1 to 30 characters"))
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	if _, err := activeUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if err := s.users.ReplaceKeywords(ctx, userID, keywords); err != nil {
		return nil, fault.NewInternalError("replace keywords", err)
	}

	current, err := s.users.Keywords(ctx, userID)
	if err != nil {
		return nil, fault.NewInternalError("load keywords", err)
	}
	return current, nil
}

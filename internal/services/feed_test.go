package services

import (
	"context"
	"testing"
	"time"

	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/pkg/paginator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func feedRow(id int, mutate ...func(*models.FeedRow)) models.FeedRow {
	row := models.FeedRow{
		Review:          models.Review{ID: id, Content: "2차 접종 후 미열"},
		AuthorGender:    models.GenderFemale,
		AuthorBirthYear: BirthYearForAge(35, fixedNow),
		AuthorActive:    true,
		VaccineType:     ptr("MODERNA"),
		VaccineRound:    ptr("SECOND"),
		IsCrossed:       ptr(false),
		IsPregnant:      ptr(false),
	}
	for _, m := range mutate {
		m(&row)
	}
	return row
}

func TestCompileFeedFilter_FixedShape(t *testing.T) {
	empty := CompileFeedFilter(FeedFilter{}, fixedNow)
	full := CompileFeedFilter(FeedFilter{
		Q: ptr("열"), MinAge: ptr(20), MaxAge: ptr(29), Gender: ptr("MALE"), VaccineType: ptr("AZ"),
		IsCrossed: ptr(true), Round: ptr("FIRST"), IsPregnant: ptr(false), IsUnderlyingDisease: ptr(true),
	}, fixedNow)

	names := func(ps Predicates) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	expected := []string{"eligibility", "q", "age", "gender", "vaccine_type", "is_crossed", "round", "is_pregnant", "is_underlying_disease"}
	assert.Equal(t, expected, names(empty))
	assert.Equal(t, expected, names(full))

	for _, p := range empty[1:] {
		assert.False(t, p.Active(), p.Name)
		assert.Equal(t, "TRUE", p.Clause)
	}
	for _, p := range full {
		assert.True(t, p.Active(), p.Name)
	}
}

func TestCompileFeedFilter_Where(t *testing.T) {
	where, args := CompileFeedFilter(FeedFilter{}, fixedNow).Where()
	assert.Equal(t, "r.is_delete = FALSE AND u.is_active = TRUE", where)
	assert.Empty(t, args)

	where, args = CompileFeedFilter(FeedFilter{Q: ptr("열"), IsPregnant: ptr(false), MinAge: ptr(30), MaxAge: ptr(39)}, fixedNow).Where()
	assert.Equal(t, "r.is_delete = FALSE AND u.is_active = TRUE AND strpos(r.content, ?) > 0 AND u.birth_year BETWEEN ? AND ? AND s.is_pregnant = ?", where)
	assert.Equal(t, []any{"열", 1988, 1997, false}, args)
}

func TestCompileFeedFilter_AgeRange(t *testing.T) {
	ps := CompileFeedFilter(FeedFilter{MinAge: ptr(30), MaxAge: ptr(39)}, fixedNow)

	age := func(a int) func(*models.FeedRow) {
		return func(r *models.FeedRow) { r.AuthorBirthYear = BirthYearForAge(a, fixedNow) }
	}

	assert.True(t, ps.Match(feedRow(1, age(35))))
	assert.True(t, ps.Match(feedRow(1, age(30))))
	assert.True(t, ps.Match(feedRow(1, age(39))))
	assert.False(t, ps.Match(feedRow(1, age(29))))
	assert.False(t, ps.Match(feedRow(1, age(40))))

	// either bound alone is not a constraint
	for _, f := range []FeedFilter{{MinAge: ptr(30)}, {MaxAge: ptr(39)}} {
		ps := CompileFeedFilter(f, fixedNow)
		assert.False(t, ps[2].Active())
		assert.True(t, ps.Match(feedRow(1, age(29))))
	}
}

func TestCompileFeedFilter_TriStateBooleans(t *testing.T) {
	crossed := feedRow(1, func(r *models.FeedRow) { r.IsCrossed = ptr(true) })
	notCrossed := feedRow(2)
	unknown := feedRow(3, func(r *models.FeedRow) { r.IsCrossed = nil })

	absent := CompileFeedFilter(FeedFilter{}, fixedNow)
	yes := CompileFeedFilter(FeedFilter{IsCrossed: ptr(true)}, fixedNow)
	no := CompileFeedFilter(FeedFilter{IsCrossed: ptr(false)}, fixedNow)

	assert.True(t, absent.Match(crossed))
	assert.True(t, absent.Match(notCrossed))
	assert.True(t, absent.Match(unknown))

	assert.True(t, yes.Match(crossed))
	assert.False(t, yes.Match(notCrossed))

	assert.False(t, no.Match(crossed))
	assert.True(t, no.Match(notCrossed))
	assert.False(t, no.Match(unknown))
}

func TestCompileFeedFilter_Eligibility(t *testing.T) {
	ps := CompileFeedFilter(FeedFilter{}, fixedNow)

	assert.True(t, ps.Match(feedRow(1)))
	assert.False(t, ps.Match(feedRow(2, func(r *models.FeedRow) { r.IsDelete = true })))
	assert.False(t, ps.Match(feedRow(3, func(r *models.FeedRow) { r.AuthorActive = false })))
}

func TestCompileFeedFilter_SubstringIsCaseSensitive(t *testing.T) {
	row := feedRow(1, func(r *models.FeedRow) { r.Content = "Pfizer 2nd dose" })

	assert.True(t, CompileFeedFilter(FeedFilter{Q: ptr("Pfizer")}, fixedNow).Match(row))
	assert.True(t, CompileFeedFilter(FeedFilter{Q: ptr("2nd do")}, fixedNow).Match(row))
	assert.False(t, CompileFeedFilter(FeedFilter{Q: ptr("pfizer")}, fixedNow).Match(row))
	assert.True(t, CompileFeedFilter(FeedFilter{Q: ptr("")}, fixedNow).Match(row))
}

func TestCompileFeedFilter_Conjunction(t *testing.T) {
	rows := []models.FeedRow{
		feedRow(1),
		feedRow(2, func(r *models.FeedRow) { r.AuthorGender = models.GenderMale }),
		feedRow(3, func(r *models.FeedRow) { r.VaccineType = ptr("AZ") }),
		feedRow(4, func(r *models.FeedRow) { r.VaccineRound = ptr("FIRST") }),
		feedRow(5, func(r *models.FeedRow) { r.VaccineType = nil }),
	}

	ps := CompileFeedFilter(FeedFilter{Gender: ptr(models.GenderFemale), VaccineType: ptr("MODERNA"), Round: ptr("SECOND")}, fixedNow)
	got := ps.Filter(rows)

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestCompileFeedFilter_Idempotent(t *testing.T) {
	filter := FeedFilter{Q: ptr("열"), MinAge: ptr(30), MaxAge: ptr(39), IsCrossed: ptr(false), Gender: ptr(models.GenderFemale)}
	rows := []models.FeedRow{
		feedRow(1),
		feedRow(2, func(r *models.FeedRow) { r.Content = "괜찮아요" }),
		feedRow(3, func(r *models.FeedRow) { r.AuthorBirthYear = 1950 }),
		feedRow(4, func(r *models.FeedRow) { r.IsCrossed = ptr(true) }),
		feedRow(5, func(r *models.FeedRow) { r.IsDelete = true }),
		feedRow(6),
	}

	first := CompileFeedFilter(filter, fixedNow)
	second := CompileFeedFilter(filter, fixedNow)

	w1, a1 := first.Where()
	w2, a2 := second.Where()
	assert.Equal(t, w1, w2)
	assert.Equal(t, a1, a2)
	assert.Equal(t, first.Filter(rows), second.Filter(rows))
	assert.Len(t, first.Filter(rows), 2)
}

func TestFeedService_List(t *testing.T) {
	ctx := context.Background()
	reviews := new(mockReviews)

	page := &paginator.Page[models.FeedRow]{PageMeta: paginator.PageMeta{Total: 0, Page: 3, Size: 20}}
	reviews.On("Feed", ctx,
		"r.is_delete = FALSE AND u.is_active = TRUE AND u.gender = $1",
		[]any{"MALE"},
		paginator.PageRequest{Page: 3, Size: 20},
	).Return(page, nil)

	svc := NewFeedService(reviews, new(mockComments), new(mockLikes), new(mockUsers), 20)

	got, err := svc.List(ctx, FeedFilter{Gender: ptr("MALE")}, paginator.PageRequest{Page: 3})
	require.NoError(t, err)
	assert.Same(t, page, got)
	reviews.AssertExpectations(t)
}

func TestFeedService_Detail(t *testing.T) {
	ctx := context.Background()
	ph := Placeholders{DeletedContent: "deleted", WithdrawnNickname: "gone", WithdrawnContent: "gone content"}

	t.Run("visible review with thread", func(t *testing.T) {
		reviews, comments, likes := new(mockReviews), new(mockComments), new(mockLikes)
		row := feedRow(10, func(r *models.FeedRow) { r.UserID = 5; r.ViewCount = 3 })

		reviews.On("Get", ctx, 10).Return(&row, nil)
		reviews.On("IncrementViewCount", ctx, 10).Return(nil)
		reviews.On("Keywords", ctx, 10).Return([]string{"미열"}, nil)
		comments.On("ListByReview", ctx, 10).Return([]models.ThreadComment{
			threadComment(1, nil, 5),
			threadComment(2, ptr(1), 6),
		}, nil)
		likes.On("ReviewLiked", ctx, 5, 10).Return(true, nil)
		comments.On("LikedIDs", ctx, 5, 10).Return(map[int]bool{2: true}, nil)

		svc := NewFeedService(reviews, comments, likes, new(mockUsers), 10)
		detail, err := svc.Detail(ctx, 10, 5, ph)
		require.NoError(t, err)

		assert.Equal(t, 4, detail.Review.ViewCount)
		assert.True(t, detail.UserIsLike)
		assert.True(t, detail.UserIsWriter)
		assert.Equal(t, []string{"미열"}, detail.Keywords)
		require.Len(t, detail.Comments, 1)
		assert.True(t, detail.Comments[0].Replies[0].UserIsLike)
	})

	t.Run("anonymous viewer skips like lookups", func(t *testing.T) {
		reviews, comments, likes := new(mockReviews), new(mockComments), new(mockLikes)
		row := feedRow(10, func(r *models.FeedRow) { r.UserID = 5 })

		reviews.On("Get", ctx, 10).Return(&row, nil)
		reviews.On("IncrementViewCount", ctx, 10).Return(nil)
		reviews.On("Keywords", ctx, 10).Return([]string{}, nil)
		comments.On("ListByReview", ctx, 10).Return([]models.ThreadComment{}, nil)

		svc := NewFeedService(reviews, comments, likes, new(mockUsers), 10)
		detail, err := svc.Detail(ctx, 10, AnonymousViewerID, ph)
		require.NoError(t, err)

		assert.False(t, detail.UserIsWriter)
		assert.Empty(t, detail.Comments)
		likes.AssertNotCalled(t, "ReviewLiked", mock.Anything, mock.Anything, mock.Anything)
	})

	for name, mutate := range map[string]func(*models.FeedRow){
		"deleted review":   func(r *models.FeedRow) { r.IsDelete = true },
		"withdrawn author": func(r *models.FeedRow) { r.AuthorActive = false },
	} {
		t.Run(name+" is not found", func(t *testing.T) {
			reviews := new(mockReviews)
			row := feedRow(10, mutate)
			reviews.On("Get", ctx, 10).Return(&row, nil)

			svc := NewFeedService(reviews, new(mockComments), new(mockLikes), new(mockUsers), 10)
			_, err := svc.Detail(ctx, 10, 5, ph)
			assertStatus(t, 404, err)
			reviews.AssertNotCalled(t, "IncrementViewCount", mock.Anything, mock.Anything)
		})
	}
}

func TestFeedService_DeleteReview(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		actor    *models.User
		expected int
	}{
		{"author", &models.User{ID: 5, IsActive: true}, 0},
		{"superuser", &models.User{ID: 9, IsActive: true, IsSuper: true}, 0},
		{"stranger", &models.User{ID: 8, IsActive: true}, 403},
		{"withdrawn author", &models.User{ID: 5, IsActive: false}, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews, users := new(mockReviews), new(mockUsers)
			row := feedRow(10, func(r *models.FeedRow) { r.UserID = 5 })
			reviews.On("Get", ctx, 10).Return(&row, nil)
			reviews.On("SoftDelete", ctx, 10).Return(nil)
			users.On("GetByID", ctx, tt.actor.ID).Return(tt.actor, nil)

			svc := NewFeedService(reviews, new(mockComments), new(mockLikes), users, 10)
			err := svc.DeleteReview(ctx, tt.actor.ID, 10)

			if tt.expected == 0 {
				require.NoError(t, err)
				reviews.AssertCalled(t, "SoftDelete", ctx, 10)
				return
			}
			assertStatus(t, tt.expected, err)
			reviews.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
		})
	}
}

package services

import (
	"testing"
	"time"

	"github.com/paulexconde/vaxreview/internal/locales"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/pkg/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPlaceholders = Placeholders{
	DeletedContent:    "삭제된 댓글입니다.",
	WithdrawnNickname: "탈퇴한 회원",
	WithdrawnContent:  "탈퇴한 작성자의 댓글입니다.",
}

func threadComment(id int, parent *int, userID int) models.ThreadComment {
	depth := 0
	if parent != nil {
		depth = 1
	}
	return models.ThreadComment{
		Comment: models.Comment{
			ID:        id,
			ReviewID:  10,
			UserID:    userID,
			ParentID:  parent,
			Depth:     depth,
			Content:   "comment",
			CreatedAt: time.Date(2026, 1, 1, 0, 0, id, 0, time.UTC),
		},
		Nickname:     "용감한 여우",
		AuthorActive: true,
	}
}

func assertStatus(t *testing.T, expected int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, expected, fault.HTTPStatus(err), err.Error())
}

func TestAssembleThread_Shape(t *testing.T) {
	comments := []models.ThreadComment{
		threadComment(1, nil, 1),
		threadComment(2, ptr(1), 1),
		threadComment(3, nil, 1),
	}

	tree := AssembleThread(comments, nil, AnonymousViewerID, testPlaceholders)

	require.Len(t, tree, 2)
	assert.Equal(t, 1, tree[0].ID)
	assert.Equal(t, 3, tree[1].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, 2, tree[0].Replies[0].ID)
	assert.Empty(t, tree[1].Replies)
}

func TestAssembleThread_KeepsOrder(t *testing.T) {
	comments := []models.ThreadComment{
		threadComment(1, nil, 1),
		threadComment(2, nil, 1),
		threadComment(3, ptr(1), 1),
		threadComment(4, ptr(2), 1),
		threadComment(5, ptr(1), 1),
		threadComment(6, ptr(1), 1),
		threadComment(7, ptr(99), 1),
	}

	tree := AssembleThread(comments, nil, AnonymousViewerID, testPlaceholders)

	require.Len(t, tree, 2)
	ids := func(nodes []CommentNode) []int {
		out := []int{}
		for _, n := range nodes {
			out = append(out, n.ID)
		}
		return out
	}
	assert.Equal(t, []int{3, 5, 6}, ids(tree[0].Replies))
	assert.Equal(t, []int{4}, ids(tree[1].Replies))
}

func TestAssembleThread_ViewerAnnotations(t *testing.T) {
	comments := []models.ThreadComment{
		threadComment(1, nil, 3),
		threadComment(2, ptr(1), 5),
	}

	tree := AssembleThread(comments, map[int]bool{2: true}, 5, testPlaceholders)

	reply := tree[0].Replies[0]
	assert.Equal(t, 2, reply.ID)
	assert.True(t, reply.UserIsLike)
	assert.True(t, reply.UserIsWriter)

	assert.False(t, tree[0].UserIsLike)
	assert.False(t, tree[0].UserIsWriter)
}

func TestAssembleThread_AnonymousViewerNeverWrites(t *testing.T) {
	comments := []models.ThreadComment{threadComment(1, nil, AnonymousViewerID)}

	tree := AssembleThread(comments, map[int]bool{}, AnonymousViewerID, testPlaceholders)
	assert.False(t, tree[0].UserIsWriter)
	assert.False(t, tree[0].UserIsLike)
}

func TestAssembleThread_Redaction(t *testing.T) {
	deleted := threadComment(2, ptr(1), 4)
	deleted.Content = "foo"
	deleted.IsDelete = true

	withdrawn := threadComment(3, nil, 6)
	withdrawn.Content = "bar"
	withdrawn.AuthorActive = false

	both := threadComment(4, nil, 6)
	both.Content = "baz"
	both.IsDelete = true
	both.AuthorActive = false

	tree := AssembleThread([]models.ThreadComment{threadComment(1, nil, 1), deleted, withdrawn, both}, nil, 4, testPlaceholders)
	require.Len(t, tree, 3)

	node2 := tree[0].Replies[0]
	assert.Equal(t, testPlaceholders.DeletedContent, node2.Content)
	assert.Equal(t, "용감한 여우", node2.Nickname)
	assert.True(t, node2.UserIsWriter)

	assert.Equal(t, testPlaceholders.WithdrawnNickname, tree[1].Nickname)
	assert.Equal(t, testPlaceholders.WithdrawnContent, tree[1].Content)

	assert.Equal(t, testPlaceholders.WithdrawnNickname, tree[2].Nickname)
	assert.Equal(t, testPlaceholders.WithdrawnContent, tree[2].Content)
	assert.True(t, tree[2].IsDelete)

	for _, n := range []CommentNode{node2, tree[1], tree[2]} {
		assert.NotContains(t, []string{"foo", "bar", "baz"}, n.Content)
	}
}

func TestLocalizedPlaceholders(t *testing.T) {
	b, err := locales.New("ko")
	require.NoError(t, err)

	assert.Equal(t, testPlaceholders, LocalizedPlaceholders(b.Localizer()))
	assert.Equal(t, "This comment has been deleted.", LocalizedPlaceholders(b.Localizer("en")).DeletedContent)
}

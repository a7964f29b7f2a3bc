package services

import (
	"time"

	"github.com/paulexconde/vaxreview/internal/locales"
	"github.com/paulexconde/vaxreview/internal/models"
)

// AnonymousViewerID stands in for a viewer without an account. No author has it.
const AnonymousViewerID = -1

// Placeholders replace redacted comment text.
type Placeholders struct {
	DeletedContent    string
	WithdrawnNickname string
	WithdrawnContent  string
}

// LocalizedPlaceholders reads the placeholder strings from the message bundle.
func LocalizedPlaceholders(l *locales.Localizer) Placeholders {
	return Placeholders{
		DeletedContent:    l.Get(locales.MsgCommentDeleted, nil),
		WithdrawnNickname: l.Get(locales.MsgAuthorWithdrawnNickname, nil),
		WithdrawnContent:  l.Get(locales.MsgAuthorWithdrawnComment, nil),
	}
}

type CommentNode struct {
	ID           int           `json:"id"`
	UserID       int           `json:"user_id"`
	Nickname     string        `json:"nickname"`
	Content      string        `json:"content"`
	IsDelete     bool          `json:"is_delete"`
	LikeCount    int           `json:"like_count"`
	UserIsLike   bool          `json:"user_is_like"`
	UserIsWriter bool          `json:"user_is_writer"`
	CreatedAt    time.Time     `json:"created_at"`
	Replies      []CommentNode `json:"replies,omitempty"`
}

// AssembleThread nests replies under their top-level comment. Input order is
// kept at both levels, so callers pass comments sorted by creation.
// Replies whose parent is not in the list are dropped.
func AssembleThread(comments []models.ThreadComment, likedIDs map[int]bool, viewerID int, ph Placeholders) []CommentNode {
	replies := make(map[int][]models.ThreadComment)
	for _, c := range comments {
		if c.ParentID != nil {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}

	roots := make([]CommentNode, 0, len(comments)-countReplies(replies))
	for _, c := range comments {
		if c.ParentID != nil {
			continue
		}
		node := annotate(c, likedIDs, viewerID, ph)
		for _, r := range replies[c.ID] {
			node.Replies = append(node.Replies, annotate(r, likedIDs, viewerID, ph))
		}
		roots = append(roots, node)
	}
	return roots
}

func countReplies(replies map[int][]models.ThreadComment) int {
	n := 0
	for _, r := range replies {
		n += len(r)
	}
	return n
}

func annotate(c models.ThreadComment, likedIDs map[int]bool, viewerID int, ph Placeholders) CommentNode {
	node := CommentNode{
		ID:           c.ID,
		UserID:       c.UserID,
		Nickname:     c.Nickname,
		Content:      c.Content,
		IsDelete:     c.IsDelete,
		LikeCount:    c.LikeCount,
		UserIsLike:   likedIDs[c.ID],
		UserIsWriter: viewerID != AnonymousViewerID && c.UserID == viewerID,
		CreatedAt:    c.CreatedAt,
	}

	if c.IsDelete {
		node.Content = ph.DeletedContent
	}
	if !c.AuthorActive {
		node.Nickname = ph.WithdrawnNickname
		node.Content = ph.WithdrawnContent
	}
	return node
}

package locales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestBundle_Languages(t *testing.T) {
	b, err := New("ko")
	require.NoError(t, err)
	assert.Equal(t, language.Korean, b.DefaultLanguage())

	tests := []struct {
		name     string
		prefs    []string
		msgID    string
		expected string
	}{
		{"korean default", nil, MsgCommentDeleted, "삭제된 댓글입니다."},
		{"english tag", []string{"en"}, MsgAuthorWithdrawnNickname, "Withdrawn member"},
		{"accept-language header", []string{"en-US,en;q=0.9"}, MsgCommentDeleted, "This comment has been deleted."},
		{"unknown language falls back", []string{"fr"}, MsgAuthorWithdrawnComment, "탈퇴한 작성자의 댓글입니다."},
		{"unknown id returns id", []string{"en"}, "NoSuchMessage", "NoSuchMessage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, b.Localizer(tt.prefs...).Get(tt.msgID, nil))
		})
	}
}

func TestLocalizer_TemplateData(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)

	got := b.Localizer().Get(MsgKeywordPushTitle, map[string]any{"Keyword": "fever"})
	assert.Equal(t, "New review for 'fever'", got)

	for n := 1; n <= 4; n++ {
		assert.NotEqual(t, ReportReasonID(n), b.Localizer("ko").Get(ReportReasonID(n), nil))
	}
}

func TestNew_BadDefaultFallsBackToKorean(t *testing.T) {
	b, err := New("not a tag!")
	require.NoError(t, err)
	assert.Equal(t, language.Korean, b.DefaultLanguage())
}

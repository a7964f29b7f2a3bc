package locales

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

// Message ids shared by the services.
const (
	MsgCommentDeleted          = "CommentDeleted"
	MsgAuthorWithdrawnNickname = "AuthorWithdrawnNickname"
	MsgAuthorWithdrawnComment  = "AuthorWithdrawnComment"
	MsgReportCommentSubject    = "ReportCommentSubject"
	MsgReportReviewSubject     = "ReportReviewSubject"
	MsgReportBody              = "ReportBody"
	MsgKeywordPushTitle        = "KeywordPushTitle"
	MsgKeywordPushBody         = "KeywordPushBody"
)

// ReportReasonID returns the message id for report reason n (1..4).
func ReportReasonID(n int) string {
	return fmt.Sprintf("ReportReason%d", n)
}

type Bundle struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// New loads every embedded message file. An unparsable default falls back to Korean.
func New(defaultLangCode string) (*Bundle, error) {
	defaultLanguage, err := language.Parse(defaultLangCode)
	if err != nil {
		log.Printf("WARN: Failed to parse default language code '%s': %v. Falling back to Korean.", defaultLangCode, err)
		defaultLanguage = language.Korean
	}

	bundle := i18n.NewBundle(defaultLanguage)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := localeFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}

	loadedFiles := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, file.Name()); err != nil {
			return nil, fmt.Errorf("load message file %s: %w", file.Name(), err)
		}
		loadedFiles++
	}
	if loadedFiles == 0 {
		return nil, fmt.Errorf("no message files loaded from locales/")
	}

	log.Printf("i18n bundle initialized with %d file(s). Default language: %s", loadedFiles, defaultLanguage)
	return &Bundle{bundle: bundle, defaultLanguage: defaultLanguage}, nil
}

func (b *Bundle) DefaultLanguage() language.Tag {
	return b.defaultLanguage
}

// Localizer resolves messages for the given language preferences, which may be
// tags ("en") or raw Accept-Language header values.
func (b *Bundle) Localizer(langPrefs ...string) *Localizer {
	prefs := append(append([]string{}, langPrefs...), b.defaultLanguage.String())
	return &Localizer{bundle: b, localizer: i18n.NewLocalizer(b.bundle, prefs...)}
}

type Localizer struct {
	bundle    *Bundle
	localizer *i18n.Localizer
}

// Get retrieves and formats a message by id. Failures fall back to the default
// language and then to the id itself.
func (l *Localizer) Get(msgID string, templateData map[string]any) string {
	config := &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: templateData,
	}

	msg, err := l.localizer.Localize(config)
	if err == nil {
		return msg
	}
	log.Printf("ERROR: Failed to localize message ID '%s': %v", msgID, err)

	fallback := i18n.NewLocalizer(l.bundle.bundle, l.bundle.defaultLanguage.String())
	if msg, err := fallback.Localize(config); err == nil {
		return msg
	}
	return msgID
}

package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/paulexconde/vaxreview/internal/locales"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/notify"
)

// KeywordNotifier pushes new reviews to users subscribed to their keywords.
type KeywordNotifier struct {
	users      UserRepository
	dispatcher Dispatcher
	localizer  *locales.Localizer
}

func NewKeywordNotifier(users UserRepository, dispatcher Dispatcher, localizer *locales.Localizer) *KeywordNotifier {
	return &KeywordNotifier{users: users, dispatcher: dispatcher, localizer: localizer}
}

// ReviewCreated queues the push and returns immediately. Subscribers are
// looked up on the worker, not on the request. Each recipient is told about
// the keyword they follow, one notification per keyword.
func (n *KeywordNotifier) ReviewCreated(review models.Review, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}

	name := fmt.Sprintf("keyword-push(review %d)", review.ID)
	return n.dispatcher.Go(name, func(ctx context.Context) error {
		recipients, err := n.users.KeywordRecipients(ctx, keywords, review.UserID)
		if err != nil {
			return err
		}
		if len(recipients) == 0 {
			return nil
		}

		tokens := make(map[string][]string, len(keywords))
		for _, r := range recipients {
			tokens[r.Keyword] = append(tokens[r.Keyword], r.Token)
		}
		log.Printf("Keyword push for review %d: keywords=%v recipients=%d", review.ID, keywords, len(recipients))

		reviewData := map[string]string{"review_id": strconv.Itoa(review.ID)}
		for _, keyword := range keywords {
			if len(tokens[keyword]) == 0 {
				continue
			}
			data := map[string]any{"Keyword": keyword}
			n.dispatcher.SendPush(notify.Notification{
				Title:  n.localizer.Get(locales.MsgKeywordPushTitle, data),
				Body:   n.localizer.Get(locales.MsgKeywordPushBody, data),
				Tokens: tokens[keyword],
				Data:   reviewData,
			})
		}
		return nil
	})
}

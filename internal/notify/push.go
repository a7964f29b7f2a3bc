package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulexconde/vaxreview/pkg/fault"
	"go.uber.org/ratelimit"
)

// maxTokensPerRequest is the FCM legacy limit for registration_ids.
const maxTokensPerRequest = 1000

type Notification struct {
	Title  string
	Body   string
	Tokens []string
	Data   map[string]string
}

type Pusher interface {
	Push(ctx context.Context, n Notification) error
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmRequest struct {
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data"`
	RegistrationIDs []string          `json:"registration_ids"`
}

// FCMPusher posts notifications to the FCM HTTP endpoint, one request per
// batch of device tokens, throttled by a shared limiter. Each batch is retried
// on its own so a late failure never resends the batches before it.
type FCMPusher struct {
	endpoint   string
	serverKey  string
	client     *http.Client
	limiter    ratelimit.Limiter
	retries    int
	retryDelay time.Duration
}

func NewFCMPusher(endpoint, serverKey string, perSecond, retries int, retryDelay time.Duration, client *http.Client) *FCMPusher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	limiter := ratelimit.NewUnlimited()
	if perSecond > 0 {
		limiter = ratelimit.New(perSecond)
	}

	if retries < 1 {
		retries = 1
	}

	return &FCMPusher{
		endpoint:   endpoint,
		serverKey:  serverKey,
		client:     client,
		limiter:    limiter,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

func (p *FCMPusher) Push(ctx context.Context, n Notification) error {
	if len(n.Tokens) == 0 {
		return nil
	}

	data := n.Data
	if data == nil {
		data = map[string]string{}
	}

	for start := 0; start < len(n.Tokens); start += maxTokensPerRequest {
		end := min(start+maxTokensPerRequest, len(n.Tokens))

		req := fcmRequest{
			Notification:    fcmNotification{Title: n.Title, Body: n.Body},
			Data:            data,
			RegistrationIDs: n.Tokens[start:end],
		}
		if err := p.sendWithRetry(ctx, req); err != nil {
			return fmt.Errorf("batch %d-%d of %d: %w", start, end, len(n.Tokens), err)
		}
	}
	return nil
}

func (p *FCMPusher) sendWithRetry(ctx context.Context, payload fcmRequest) error {
	var err error
	for i := range p.retries {
		if err = p.send(ctx, payload); err == nil || fault.IsClientError(err) {
			return err
		}
		if i == p.retries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}
	return err
}

func (p *FCMPusher) send(ctx context.Context, payload fcmRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.limiter.Take()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key="+p.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("push: unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
		// 4xx other than throttling will fail the same way again
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return fault.NewClientError("push rejected", err)
		}
		return err
	}
	return nil
}

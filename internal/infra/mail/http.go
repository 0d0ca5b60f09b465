package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pratyek/grocery-app/internal/notification"
)

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// HTTPTransport posts each message as JSON to a mail API.
type HTTPTransport struct {
	client *resty.Client
	url    string
	apiKey string
	from   string
}

func NewHTTPTransport(url, apiKey, from string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		// retries belong to the notification queue
		client: resty.New().SetTimeout(timeout).SetRetryCount(0),
		url:    url,
		apiKey: apiKey,
		from:   from,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, msg notification.Message) error {
	from := msg.From
	if from == "" {
		from = t.from
	}

	req := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendRequest{From: from, To: msg.To, Subject: msg.Subject, HTML: msg.HTML})
	if t.apiKey != "" {
		req.SetAuthToken(t.apiKey)
	}

	resp, err := req.Post(t.url)
	if err != nil {
		return fmt.Errorf("mail api: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail api returned status %d", resp.StatusCode())
	}
	return nil
}

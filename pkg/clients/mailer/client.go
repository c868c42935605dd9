package mailer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dairyops/milkledger/internal/config"
)

// Client exposes the transactional mail operations used by the application.
type Client interface {
	SendHTML(ctx context.Context, msg Message) error
}

// Message is one outbound mail.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// APIClient is a resty-backed implementation of Client against a MailerSend
// style HTTP API.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a mail API client using the provided configuration values.
func NewClient(cfg config.MailerConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// apiError represents a mail API error payload.
type apiError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// SendHTML posts one HTML mail to the API.
func (c *APIClient) SendHTML(ctx context.Context, msg Message) error {
	payload := map[string]any{
		"from":    map[string]any{"email": msg.From},
		"to":      []map[string]any{{"email": msg.To}},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}

	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetError(apiErr).
		Post("/v1/email")
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		if apiErr != nil {
			message = apiErr.Message
		}
		return fmt.Errorf("mail api error: status=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}

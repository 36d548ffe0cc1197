// Package mailrelay sends shop suggestions through an EmailJS-compatible
// HTTP endpoint. The relay exposes one method and reports nothing but
// success or failure; delivery details stay on the provider side.
package mailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theodesde/retrohunt-app/internal/services"
)

// ErrRelayRejected indicates the provider answered with a non-success
// status.
var ErrRelayRejected = errors.New("mailrelay: provider rejected send")

const defaultTimeout = 10 * time.Second

// Credentials identify the provider-side sending configuration.
type Credentials struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
}

// Client posts suggestion messages to the relay endpoint.
type Client struct {
	endpoint   string
	creds      Credentials
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient validates the endpoint and credentials and builds a relay client.
func NewClient(endpoint string, creds Credentials, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("mailrelay: endpoint is required")
	}
	if creds.ServiceID == "" || creds.TemplateID == "" || creds.PublicKey == "" {
		return nil, errors.New("mailrelay: service id, template id, and public key are required")
	}
	c := &Client{
		endpoint:   endpoint,
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type sendPayload struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts one suggestion to the provider. Any non-2xx answer is reported
// as ErrRelayRejected with the status and a truncated body for diagnostics.
func (c *Client) Send(ctx context.Context, msg services.SuggestionMessage) error {
	payload := sendPayload{
		ServiceID:  c.creds.ServiceID,
		TemplateID: c.creds.TemplateID,
		UserID:     c.creds.PublicKey,
		TemplateParams: map[string]string{
			"shop_name":    msg.Name,
			"shop_city":    msg.City,
			"shop_address": msg.Address,
			"shop_tags":    msg.Tags,
			"shop_note":    msg.Note,
			"shop_country": msg.Country,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailrelay: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailrelay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailrelay: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRelayRejected, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

package publish

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/amoebajs/builder-sub000/internal/ctxlog"
)

// EventHeader carries the configured event name on webhook requests.
const EventHeader = "X-Amoeba-Event"

// Webhook is a Publisher that POSTs every document as JSON.
type Webhook struct {
	url    string
	event  string
	client *http.Client
}

// NewWebhook validates cfg and returns a webhook publisher. No request is
// made until the first Publish.
func NewWebhook(cfg Config) (*Webhook, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publish URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("webhook URL %q must be an absolute http(s) URL", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	event := cfg.Event
	if event == "" {
		event = DefaultEvent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Webhook{
		url:    parsed.String(),
		event:  event,
		client: &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

// Publish sends doc. Any non-2xx answer is an error.
func (w *Webhook) Publish(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, w.event)

	ctxlog.FromContext(ctx).Debug("Posting document", "url", w.url, "page", doc.Page, "bytes", len(doc.Source))
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s answered %s", w.url, resp.Status)
	}
	return nil
}

// Close releases idle connections.
func (w *Webhook) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

// Transports selectable through Open.
const (
	TransportSocketIO = "socketio"
	TransportWebhook  = "webhook"
)

// Open returns the publisher for transport: a connected socket.io client or
// a webhook.
func Open(ctx context.Context, transport string, cfg Config) (Publisher, error) {
	switch transport {
	case "", TransportSocketIO:
		s, err := Dial(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case TransportWebhook:
		w, err := NewWebhook(cfg)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown publish transport %q", transport)
	}
}

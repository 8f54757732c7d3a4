// Package publish pushes compiled documents to a live-reload dev server,
// either over socket.io or as JSON webhook requests.
package publish

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/amoebajs/builder-sub000/internal/ctxlog"
)

const (
	DefaultEvent          = "amoeba:document"
	defaultConnectTimeout = 15 * time.Second
)

// Document is the payload emitted for a single compiled page.
type Document struct {
	Page     string `json:"page"`
	Provider string `json:"provider"`
	Path     string `json:"path,omitempty"`
	Source   string `json:"source"`
}

// Map converts the document into the generic shape emitted on the wire.
func (d Document) Map() map[string]any {
	m := map[string]any{
		"page":     d.Page,
		"provider": d.Provider,
		"source":   d.Source,
	}
	if d.Path != "" {
		m["path"] = d.Path
	}
	return m
}

// Publisher delivers compiled documents to some consumer.
type Publisher interface {
	Publish(ctx context.Context, doc Document) error
	Close() error
}

// Func adapts a function to the Publisher interface.
type Func func(ctx context.Context, doc Document) error

func (f Func) Publish(ctx context.Context, doc Document) error { return f(ctx, doc) }
func (f Func) Close() error                                    { return nil }

// Config describes the socket.io endpoint.
type Config struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SocketIO is a Publisher backed by a persistent socket.io client.
type SocketIO struct {
	event  string
	mu     sync.Mutex
	client *socket.Socket
	closed bool
}

// Dial connects to the dev server and waits for the connect handshake.
func Dial(ctx context.Context, cfg Config) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("publisher", "socketio", "url", cfg.URL)

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publish URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("publish URL %q must be absolute", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	event := cfg.Event
	if event == "" {
		event = DefaultEvent
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}

	opts := socket.DefaultOptions()
	if parsed.Path != "" && parsed.Path != "/" {
		opts.SetPath(parsed.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), opts)
	io := manager.Socket(namespace, opts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Publisher connected", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})

	logger.Debug("Connecting publisher...")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{event: event, client: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Publish emits the document on the configured event.
func (s *SocketIO) Publish(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("publisher is closed")
	}
	ctxlog.FromContext(ctx).Debug("Publishing document", "event", s.event, "page", doc.Page, "bytes", len(doc.Source))
	s.client.Emit(s.event, doc.Map())
	return nil
}

// Close disconnects the client. It is safe to call more than once.
func (s *SocketIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.Disconnect()
	return nil
}

package stream

import (
	"context"
	"io"
	"mime"
	"net/http"
	"sync"

	"github.com/tmaxmax/go-sse"
	errgo "gopkg.in/errgo.v1"
)

// SSEDialer connects to a server-sent events stream
// (text/event-stream). Only unnamed events and events named
// "message" are delivered.
type SSEDialer struct {
	// URL holds the URL of the event stream.
	URL string
	// Client is used to make the request.
	// If it's nil, http.DefaultClient is used.
	Client *http.Client
}

// Dial implements Dialer.Dial.
func (d *SSEDialer) Dial(ctx context.Context) (Conn, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	// The request lives as long as the connection, not
	// just the dial, so it gets its own context.
	connCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	req, err := http.NewRequestWithContext(connCtx, "GET", d.URL, nil)
	if err != nil {
		cancel()
		return nil, errgo.Mask(err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, errgo.Notef(err, "cannot connect to event stream")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, errgo.Newf("unexpected status %q from event stream", resp.Status)
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "text/event-stream" {
		resp.Body.Close()
		cancel()
		return nil, errgo.Newf("unexpected content type %q from event stream", resp.Header.Get("Content-Type"))
	}
	return newSSEConn(resp.Body, cancel), nil
}

// sseItem holds one result from the event stream parser.
type sseItem struct {
	ev  sse.Event
	err error
}

type sseConn struct {
	body   io.ReadCloser
	cancel func()
	items  chan sseItem
	done   chan struct{}
	once   sync.Once
}

// newSSEConn returns a connection that parses events from body.
// The parser runs in its own goroutine until the body is exhausted
// or the connection is closed.
func newSSEConn(body io.ReadCloser, cancel func()) *sseConn {
	c := &sseConn{
		body:   body,
		cancel: cancel,
		items:  make(chan sseItem),
		done:   make(chan struct{}),
	}
	go c.read()
	return c
}

func (c *sseConn) read() {
	defer close(c.items)
	sse.Read(c.body, nil)(func(ev sse.Event, err error) bool {
		select {
		case c.items <- sseItem{ev, err}:
			return err == nil
		case <-c.done:
			return false
		}
	})
}

// Next implements Conn.Next.
func (c *sseConn) Next(ctx context.Context) ([]byte, error) {
	for {
		select {
		case item, ok := <-c.items:
			if !ok {
				return nil, io.EOF
			}
			if item.err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, errgo.Notef(item.err, "cannot read event stream")
			}
			if item.ev.Type != "" && item.ev.Type != "message" {
				continue
			}
			return []byte(item.ev.Data), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close implements Conn.Close.
func (c *sseConn) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.cancel()
	})
	return c.body.Close()
}

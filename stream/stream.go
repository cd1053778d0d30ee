// Package stream connects to the push channel that delivers readings
// and turns it into a sequence of events, reconnecting when the
// connection fails.
package stream

import (
	"context"
	"io"
	"time"

	"github.com/juju/loggo"
	errgo "gopkg.in/errgo.v1"
	"gopkg.in/retry.v1"
)

var logger = loggo.GetLogger("ehz.stream")

// Kind holds the kind of an Event.
type Kind int

const (
	// Connecting is sent before each attempt to connect.
	Connecting Kind = iota
	// Open is sent when a connection has been made.
	Open
	// Message is sent for each message received.
	Message
	// Closed is sent when a connection attempt fails
	// or a connection ends.
	Closed
)

var kindNames = []string{
	Connecting: "connecting",
	Open:       "open",
	Message:    "message",
	Closed:     "closed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Event represents something that happened on the push channel.
type Event struct {
	Kind Kind
	// Data holds the message payload when Kind is Message.
	Data []byte
	// Err holds the reason for closing when Kind is Closed.
	// It's nil if the server ended the stream cleanly.
	Err error
}

// Conn represents a single connection to the push channel.
type Conn interface {
	// Next returns the payload of the next message. It returns
	// io.EOF when the server ends the stream cleanly.
	Next(ctx context.Context) ([]byte, error)
	// Close closes the connection.
	Close() error
}

// Dialer makes connections to the push channel.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// DefaultRetryStrategy holds the strategy used to pace reconnection
// attempts. It's reset after each successful connection.
var DefaultRetryStrategy = retry.Exponential{
	Initial:  500 * time.Millisecond,
	Factor:   1.5,
	MaxDelay: 30 * time.Second,
	Jitter:   true,
}

type Params struct {
	// Dialer is used to connect to the push channel.
	Dialer Dialer
	// Handle is called for every event, in order, from the
	// goroutine that called Run.
	Handle func(Event)
	// RetryStrategy is used to pace reconnection attempts.
	// If it's nil, DefaultRetryStrategy is used.
	RetryStrategy retry.Strategy
	// Clock is used for retry timing and for the reconnect
	// delay. If it's nil, the system clock is used.
	Clock retry.Clock
	// ReconnectDelay holds the time to wait before reconnecting
	// after an established connection has ended. If it's zero,
	// DefaultReconnectDelay is used.
	ReconnectDelay time.Duration
}

// DefaultReconnectDelay holds the default value of
// Params.ReconnectDelay.
const DefaultReconnectDelay = time.Second

// Run connects to the push channel and passes events to p.Handle
// until the context is cancelled, reconnecting whenever the connection
// is lost. It returns the context's error, or an error if the retry
// strategy gives up.
func Run(ctx context.Context, p Params) error {
	if p.RetryStrategy == nil {
		p.RetryStrategy = DefaultRetryStrategy
	}
	if p.ReconnectDelay == 0 {
		p.ReconnectDelay = DefaultReconnectDelay
	}
	after := time.After
	if p.Clock != nil {
		after = p.Clock.After
	}
	for {
		a := retry.StartWithCancel(p.RetryStrategy, p.Clock, ctx.Done())
		connected := false
		for a.Next() {
			if connected = session(ctx, p); connected {
				break
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !connected {
			return errgo.Newf("gave up connecting after %d attempts", a.Count())
		}
		select {
		case <-after(p.ReconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// session makes a single connection and reads from it until
// it fails. It reports whether the connection was made.
func session(ctx context.Context, p Params) bool {
	p.Handle(Event{Kind: Connecting})
	conn, err := p.Dialer.Dial(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warningf("cannot connect: %v", err)
		}
		p.Handle(Event{
			Kind: Closed,
			Err:  err,
		})
		return false
	}
	defer conn.Close()
	p.Handle(Event{Kind: Open})
	for {
		data, err := conn.Next(ctx)
		if err == nil {
			p.Handle(Event{
				Kind: Message,
				Data: data,
			})
			continue
		}
		if errgo.Cause(err) == io.EOF {
			logger.Infof("stream closed by server")
			err = nil
		} else if ctx.Err() == nil {
			logger.Warningf("stream failed: %v", err)
		}
		p.Handle(Event{
			Kind: Closed,
			Err:  err,
		})
		return true
	}
}

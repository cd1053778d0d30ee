// Package ingest turns events from the push channel into
// updates of the reading series and the view.
package ingest

import (
	"github.com/juju/loggo"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/reading"
	"github.com/rogpeppe/ehz/series"
	"github.com/rogpeppe/ehz/stream"
	"github.com/rogpeppe/ehz/view"
)

var logger = loggo.GetLogger("ehz.ingest")

// State holds the state of the push channel connection.
type State int

const (
	Connecting State = iota
	Open
	Receiving
	ClosedByServer
	ClosedByError
)

var stateNames = []string{
	Connecting:     "connecting",
	Open:           "open",
	Receiving:      "receiving",
	ClosedByServer: "closed-by-server",
	ClosedByError:  "closed-by-error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Projector is used to show each new reading.
// It's implemented by *view.Projector.
type Projector interface {
	Apply(view.Update)
}

type Params struct {
	// Projector is used to show readings.
	Projector Projector
	// Buffer holds the buffer to add points to.
	// If it's nil, a buffer of series.Capacity points is used.
	Buffer *series.Buffer
	// Metrics is updated as events are handled, if it's non-nil.
	Metrics *Metrics
}

// Controller handles push channel events. It is not safe for
// concurrent use; events must be handled one at a time in the
// order they were received.
type Controller struct {
	p     Params
	state State
}

// New returns a new Controller in the Connecting state.
func New(p Params) *Controller {
	if p.Buffer == nil {
		p.Buffer = series.NewBuffer(series.Capacity)
	}
	c := &Controller{
		p: p,
	}
	c.setState(Connecting)
	return c
}

// State returns the current connection state.
func (c *Controller) State() State {
	return c.state
}

// Points returns a copy of the points in the series, oldest first.
func (c *Controller) Points() []series.Point {
	return c.p.Buffer.Snapshot()
}

// HandleEvent handles a single event. For a message, the reading
// is parsed and, if it's valid, added to the series and shown by the
// projector before HandleEvent returns. An invalid message is logged
// and otherwise ignored; the returned error has reading.ErrMalformed
// as its cause.
func (c *Controller) HandleEvent(ev stream.Event) error {
	switch ev.Kind {
	case stream.Connecting:
		c.setState(Connecting)
	case stream.Open:
		c.setState(Open)
	case stream.Closed:
		if ev.Err == nil {
			c.setState(ClosedByServer)
		} else {
			c.setState(ClosedByError)
		}
	case stream.Message:
		c.setState(Receiving)
		if err := c.handleMessage(ev.Data); err != nil {
			logger.Warningf("discarding message %q: %v", ev.Data, err)
			c.p.Metrics.rejected()
			return errgo.Mask(err, errgo.Is(reading.ErrMalformed))
		}
		c.p.Metrics.accepted()
	default:
		return errgo.Newf("unknown event kind %d", int(ev.Kind))
	}
	return nil
}

func (c *Controller) handleMessage(data []byte) error {
	r, err := reading.Parse(data)
	if err != nil {
		return errgo.Mask(err, errgo.Is(reading.ErrMalformed))
	}
	diff := c.p.Buffer.Push(series.Point{
		Label:       r.Time,
		Power:       r.Power,
		Consumption: r.Consumption,
	})
	c.p.Projector.Apply(view.Update{
		Reading: r,
		FeedIn:  r.FeedIn(),
		Diff:    diff,
	})
	return nil
}

func (c *Controller) setState(s State) {
	if s != c.state {
		logger.Debugf("stream state %v -> %v", c.state, s)
	}
	c.state = s
	c.p.Metrics.setState(s)
}

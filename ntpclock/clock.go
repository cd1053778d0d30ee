// Package ntpclock provides an NTP-backed source of time values
// for use when the system clock can't be relied upon to produce
// synchronized timestamps, as on small boards without a
// real-time clock.
package ntpclock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/juju/loggo"
	errgo "gopkg.in/errgo.v1"
)

var logger = loggo.GetLogger("ehz.ntpclock")

const (
	DefaultHost           = "pool.ntp.org"
	DefaultTimeout        = 30 * time.Second
	DefaultUpdateInterval = 30 * time.Minute
)

// ntpQuery is used to query the current NTP time.
// It's overridden for tests.
var ntpQuery = ntp.QueryWithOptions

// systemNow is used to read the system clock.
// It's overridden for tests.
var systemNow = time.Now

type Params struct {
	// Host holds the NTP host to use.
	// If it's empty, DefaultHost is used.
	Host string
	// Timeout holds the timeout on making the initial Clock instance.
	// If it's zero, DefaultTimeout is used.
	Timeout time.Duration
	// UpdateInterval holds the interval between NTP queries after
	// the first. If it's zero, DefaultUpdateInterval is used.
	UpdateInterval time.Duration
	// Location holds the time zone location to use for the returned time.
	// If it's empty, UTC is used.
	Location string
}

// Clock provides the current time as reported by an NTP server.
type Clock struct {
	p        Params
	closed   chan struct{}
	location *time.Location
	// mu guards the fields below it.
	mu sync.Mutex
	// t0 holds the system clock time
	t0 time.Time
	// absT0 holds the absolute time corresponding to t0.
	absT0 time.Time
	// prevTime holds the previous time reading returned from Now.
	prevTime time.Time
}

// New returns a Clock that queries an NTP host for time.
// New might block for up to p.Timeout while it tries to
// find out the time. The Clock should be closed after use.
func New(p Params) (*Clock, error) {
	if p.Host == "" {
		p.Host = DefaultHost
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultTimeout
	}
	if p.UpdateInterval == 0 {
		p.UpdateInterval = DefaultUpdateInterval
	}
	c := &Clock{
		p:        p,
		closed:   make(chan struct{}),
		location: time.UTC,
	}
	if p.Location != "" {
		loc, err := time.LoadLocation(p.Location)
		if err != nil {
			return nil, errgo.Notef(err, "cannot load timezone %q", p.Location)
		}
		c.location = loc
	}
	if err := c.update(p.Timeout); err != nil {
		return nil, errgo.Mask(err)
	}
	go c.updater()
	return c, nil
}

// Now returns a best-effort representation of the absolute time.
// Successive calls never go backwards. The returned time does not
// contain a monotonic clock reading.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.absT0.Add(systemNow().Sub(c.t0)).Round(0)
	if t.Before(c.prevTime) {
		return c.prevTime
	}
	t = t.In(c.location)
	c.prevTime = t
	return t
}

// Close stops the clock updating itself.
func (c *Clock) Close() {
	close(c.closed)
}

func (c *Clock) updater() {
	for {
		select {
		case <-c.closed:
			return
		case <-time.After(c.p.UpdateInterval):
		}
		if err := c.update(20 * time.Second); err != nil {
			logger.Warningf("cannot update time from NTP: %v", err)
		}
	}
}

func (c *Clock) update(timeout time.Duration) error {
	resp, err := ntpQuery(c.p.Host, ntp.QueryOptions{
		Timeout: timeout,
	})
	if err != nil {
		return errgo.Notef(err, "cannot query NTP host %q", c.p.Host)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t0 = systemNow()
	c.absT0 = c.t0.Add(resp.ClockOffset).Round(0)
	logger.Debugf("NTP clock offset %v", resp.ClockOffset)
	return nil
}

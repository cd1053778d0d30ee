// Package monitor ties together the live reading components. All
// mutable state is owned by a single goroutine which handles stream
// events, locale switches and timer callbacks one at a time, each to
// completion before the next.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/juju/loggo"
	errgo "gopkg.in/errgo.v1"
	"gopkg.in/retry.v1"

	"github.com/rogpeppe/ehz/assetrefresh"
	"github.com/rogpeppe/ehz/ingest"
	"github.com/rogpeppe/ehz/internal/notifier"
	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/prefs"
	"github.com/rogpeppe/ehz/series"
	"github.com/rogpeppe/ehz/stream"
	"github.com/rogpeppe/ehz/view"
)

var logger = loggo.GetLogger("ehz.monitor")

// ErrClosed is returned when a request is made
// on a monitor that has been closed.
var ErrClosed = errgo.New("monitor closed")

type Params struct {
	// Dialer is used to connect to the push channel.
	Dialer stream.Dialer
	// Catalog holds the available locales.
	// If it's nil, locale.Default is used.
	Catalog *locale.Catalog
	// Prefs holds the store for the locale preference.
	// If it's nil, preferences are kept in memory only.
	Prefs prefs.Store
	// DefaultLocale holds the locale to use when there's
	// no saved preference. If it's empty, locale.DefaultTag is used.
	DefaultLocale locale.Tag
	// Images holds the initial sources of the page images.
	Images []string
	// RefreshPeriod holds the interval between image refreshes.
	// If it's zero, assetrefresh.DefaultPeriod is used.
	RefreshPeriod time.Duration
	// Now is used to generate cache-busting markers. If it's nil,
	// time.Now is used.
	Now func() time.Time
	// BufferSize holds the number of points shown on the chart.
	// If it's zero, series.Capacity is used.
	BufferSize int
	// Metrics is updated with ingestion metrics if it's non-nil.
	Metrics *ingest.Metrics
	// RetryStrategy and ReconnectDelay are passed to stream.Run.
	RetryStrategy  retry.Strategy
	ReconnectDelay time.Duration
}

// Monitor shows a live view of the readings from a push channel.
type Monitor struct {
	p      Params
	ctx    context.Context
	cancel func()
	wg     sync.WaitGroup

	events    chan stream.Event
	switches  chan switchReq
	posted    chan func()
	snapshots chan chan *view.Page
	notifier  notifier.Notifier

	// The fields below are owned by the loop goroutine.
	locale     *locale.State
	projector  *view.Projector
	controller *ingest.Controller
	refresher  *assetrefresh.Scheduler
}

type switchReq struct {
	tag   locale.Tag
	reply chan error
}

// New starts a new monitor. It should be closed after use.
func New(p Params) (*Monitor, error) {
	if p.Dialer == nil {
		return nil, errgo.New("no stream dialer provided")
	}
	if p.Catalog == nil {
		p.Catalog = locale.Default()
	}
	if p.Prefs == nil {
		p.Prefs = new(prefs.MemStore)
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		p:         p,
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan stream.Event),
		switches:  make(chan switchReq),
		posted:    make(chan func()),
		snapshots: make(chan chan *view.Page),
	}
	m.locale = locale.NewState(p.Catalog, p.Prefs, p.DefaultLocale)
	m.projector = view.New(view.Params{
		Catalog: p.Catalog,
		Locale:  m.locale.Current(),
		Images:  p.Images,
	})
	m.controller = ingest.New(ingest.Params{
		Projector: m.projector,
		Buffer:    series.NewBuffer(p.BufferSize),
		Metrics:   p.Metrics,
	})
	m.refresher = assetrefresh.New(assetrefresh.Params{
		Catalog: p.Catalog,
		Locale:  m.locale.Current,
		Images:  m.projector.Images(),
		Period:  p.RefreshPeriod,
		Now:     p.Now,
		Post:    m.post,
		Changed: m.publish,
	})
	m.projector.Render(m.locale.Current())
	m.refresher.Refresh()

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.loop()
	}()
	go func() {
		defer m.wg.Done()
		err := stream.Run(ctx, stream.Params{
			Dialer:         p.Dialer,
			Handle:         m.sendEvent,
			RetryStrategy:  p.RetryStrategy,
			ReconnectDelay: p.ReconnectDelay,
		})
		if err != nil && ctx.Err() == nil {
			logger.Errorf("stream stopped: %v", err)
		}
	}()
	return m, nil
}

// Close stops the monitor and waits for its goroutines to finish.
// Any watchers are unblocked.
func (m *Monitor) Close() {
	m.cancel()
	m.wg.Wait()
	m.notifier.Close()
}

// Locales returns the available locales.
func (m *Monitor) Locales() []locale.Tag {
	return m.p.Catalog.Tags()
}

// SwitchLocale makes tag the active locale and re-renders the
// page. If the tag is unknown, nothing changes and the returned
// error has locale.ErrUnknownLocale as its cause.
func (m *Monitor) SwitchLocale(ctx context.Context, tag locale.Tag) error {
	req := switchReq{
		tag:   tag,
		reply: make(chan error, 1),
	}
	select {
	case m.switches <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return ErrClosed
	}
	select {
	case err := <-req.reply:
		return errgo.Mask(err, errgo.Is(locale.ErrUnknownLocale))
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current page.
func (m *Monitor) Snapshot(ctx context.Context) (*view.Page, error) {
	reply := make(chan *view.Page, 1)
	select {
	case m.snapshots <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.ctx.Done():
		return nil, ErrClosed
	}
	select {
	case p := <-reply:
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Watch returns a watcher that's notified whenever the page changes.
// Each value is a *view.Page that must not be modified.
func (m *Monitor) Watch() *notifier.Watcher {
	return m.notifier.Watch()
}

func (m *Monitor) sendEvent(ev stream.Event) {
	select {
	case m.events <- ev:
	case <-m.ctx.Done():
	}
}

func (m *Monitor) post(f func()) {
	select {
	case m.posted <- f:
	case <-m.ctx.Done():
	}
}

func (m *Monitor) loop() {
	defer m.refresher.Stop()
	for {
		select {
		case ev := <-m.events:
			if err := m.controller.HandleEvent(ev); err != nil {
				// Already logged and counted by the controller.
				// The page is unchanged so there's nothing to publish.
				logger.Debugf("event not applied: %v", err)
				continue
			}
			if ev.Kind == stream.Message {
				m.publish()
			}
		case req := <-m.switches:
			req.reply <- m.switchLocale(req.tag)
		case f := <-m.posted:
			f()
		case reply := <-m.snapshots:
			reply <- m.projector.Snapshot()
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Monitor) switchLocale(tag locale.Tag) error {
	if err := m.locale.Switch(tag); err != nil {
		logger.Infof("ignoring locale switch: %v", err)
		return errgo.Mask(err, errgo.Is(locale.ErrUnknownLocale))
	}
	m.projector.Render(tag)
	m.refresher.Refresh()
	return nil
}

func (m *Monitor) publish() {
	m.notifier.Set(m.projector.Snapshot())
}

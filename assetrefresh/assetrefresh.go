// Package assetrefresh keeps the page images pointing at the
// versions for the active locale, and periodically forces
// browsers to fetch them again.
package assetrefresh

import (
	"strconv"
	"strings"
	"time"

	"github.com/juju/loggo"

	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/view"
)

var logger = loggo.GetLogger("ehz.assetrefresh")

// DefaultPeriod holds the default interval between refreshes.
const DefaultPeriod = 60 * time.Second

// Timer represents a pending call. It's implemented by *time.Timer.
type Timer interface {
	Stop() bool
}

type Params struct {
	// Catalog holds the known locales. Any of their tags
	// is recognized as a locale marker in an image name.
	Catalog *locale.Catalog
	// Locale returns the active locale.
	Locale func() locale.Tag
	// Images holds the images to refresh.
	Images []*view.Image
	// Period holds the refresh interval.
	// If it's zero, DefaultPeriod is used.
	Period time.Duration
	// Now is used to query the current time for
	// cache-busting markers. If it's nil, time.Now is used.
	Now func() time.Time
	// Post is called from the timer's goroutine with a function
	// that must be run on the goroutine that owns the Scheduler.
	// If it's nil, the function is called directly.
	Post func(func())
	// Changed is called, if non-nil, after the images have been
	// rewritten.
	Changed func()
	// AfterFunc is used to schedule calls. If it's nil,
	// time.AfterFunc is used.
	AfterFunc func(time.Duration, func()) Timer
}

// Scheduler rewrites image sources. At most one refresh is
// pending at any time. Apart from Post, the methods on Scheduler
// must all be called from the same goroutine.
type Scheduler struct {
	p Params
	// gen is incremented every time the pending refresh is
	// replaced or cancelled, so that a timer that has already
	// fired can recognize that it's stale.
	gen   int
	timer Timer
}

// New returns a new Scheduler. Nothing is scheduled until
// Refresh is called.
func New(p Params) *Scheduler {
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Post == nil {
		p.Post = func(f func()) { f() }
	}
	if p.AfterFunc == nil {
		p.AfterFunc = func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		}
	}
	return &Scheduler{
		p: p,
	}
}

// Refresh rewrites all the image sources for the active locale
// with a new cache-busting marker, and replaces any pending
// refresh with one due after the refresh period.
func (s *Scheduler) Refresh() {
	tags := s.p.Catalog.Tags()
	tag := s.p.Locale()
	now := s.p.Now()
	for _, img := range s.p.Images {
		img.Src = RewriteSrc(img.Src, tags, tag, now)
	}
	logger.Debugf("refreshed %d images for locale %q", len(s.p.Images), tag)
	s.schedule()
	if s.p.Changed != nil {
		s.p.Changed()
	}
}

// Stop cancels any pending refresh.
func (s *Scheduler) Stop() {
	s.cancel()
}

// Pending reports whether a refresh is scheduled.
func (s *Scheduler) Pending() bool {
	return s.timer != nil
}

func (s *Scheduler) schedule() {
	s.cancel()
	gen := s.gen
	s.timer = s.p.AfterFunc(s.p.Period, func() {
		s.p.Post(func() {
			s.fire(gen)
		})
	})
}

func (s *Scheduler) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Scheduler) fire(gen int) {
	if gen != s.gen {
		// Cancelled or replaced after the timer fired.
		return
	}
	s.timer = nil
	s.Refresh()
}

// RewriteSrc returns src with any query removed, the locale marker
// in its file name changed to the given tag, and the time t appended
// as a query in milliseconds since the Unix epoch.
//
// A locale marker is a hyphen followed by one of tags, at
// the end of the name or followed by a period or hyphen.
// Only the first marker is changed; a name without a marker
// is left as is.
func RewriteSrc(src string, tags []locale.Tag, tag locale.Tag, t time.Time) string {
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	dir, name := "", src
	if i := strings.LastIndexByte(src, '/'); i >= 0 {
		dir, name = src[:i+1], src[i+1:]
	}
	if start, end := findMarker(name, tags); start >= 0 {
		name = name[:start] + "-" + string(tag) + name[end:]
	}
	return dir + name + "?" + strconv.FormatInt(t.UnixNano()/1e6, 10)
}

// findMarker returns the extent of the first locale marker in name,
// or -1, -1 if there is none.
func findMarker(name string, tags []locale.Tag) (int, int) {
	for i := 0; i < len(name); i++ {
		if name[i] != '-' {
			continue
		}
		for _, tag := range tags {
			if tag == "" || !strings.HasPrefix(name[i+1:], string(tag)) {
				continue
			}
			end := i + 1 + len(tag)
			if end == len(name) || name[end] == '.' || name[end] == '-' {
				return i, end
			}
		}
	}
	return -1, -1
}

package ingest_test

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/ingest"
	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/reading"
	"github.com/rogpeppe/ehz/series"
	"github.com/rogpeppe/ehz/stream"
	"github.com/rogpeppe/ehz/view"
)

// recordingProjector records the updates it's given.
type recordingProjector struct {
	updates []view.Update
}

func (p *recordingProjector) Apply(u view.Update) {
	p.updates = append(p.updates, u)
}

func message(s string) stream.Event {
	return stream.Event{
		Kind: stream.Message,
		Data: []byte(s),
	}
}

func TestStateTransitions(t *testing.T) {
	c := qt.New(t)
	m := ingest.NewMetrics()
	ctl := ingest.New(ingest.Params{
		Projector: &recordingProjector{},
		Metrics:   m,
	})
	c.Assert(ctl.State(), qt.Equals, ingest.Connecting)
	steps := []struct {
		ev     stream.Event
		expect ingest.State
	}{
		{stream.Event{Kind: stream.Open}, ingest.Open},
		{message(`{"time":"a","value":1}`), ingest.Receiving},
		{message(`{"time":"b","value":2}`), ingest.Receiving},
		{stream.Event{Kind: stream.Closed}, ingest.ClosedByServer},
		{stream.Event{Kind: stream.Connecting}, ingest.Connecting},
		{stream.Event{Kind: stream.Closed, Err: errgo.New("refused")}, ingest.ClosedByError},
		{stream.Event{Kind: stream.Connecting}, ingest.Connecting},
		{stream.Event{Kind: stream.Open}, ingest.Open},
	}
	for i, step := range steps {
		err := ctl.HandleEvent(step.ev)
		c.Assert(err, qt.IsNil)
		c.Assert(ctl.State(), qt.Equals, step.expect, qt.Commentf("step %d", i))
		c.Assert(testutil.ToFloat64(m.StreamState), qt.Equals, float64(step.expect))
	}
	c.Assert(ingest.ClosedByServer.String(), qt.Equals, "closed-by-server")
}

func TestUnknownEventKind(t *testing.T) {
	c := qt.New(t)
	ctl := ingest.New(ingest.Params{
		Projector: &recordingProjector{},
	})
	err := ctl.HandleEvent(stream.Event{Kind: stream.Kind(42)})
	c.Assert(err, qt.ErrorMatches, `unknown event kind 42`)
}

var directionTests = []struct {
	testName string
	msg      string
	feedIn   bool
}{{
	testName: "negative-without-flag",
	msg:      `{"time":"t","value":-5}`,
	feedIn:   true,
}, {
	testName: "negative-with-false-flag",
	msg:      `{"time":"t","value":-5,"is_feed_in":false}`,
	feedIn:   false,
}, {
	testName: "positive-with-true-flag",
	msg:      `{"time":"t","value":5,"is_feed_in":true}`,
	feedIn:   true,
}, {
	testName: "zero",
	msg:      `{"time":"t","value":0}`,
	feedIn:   false,
}}

func TestDirection(t *testing.T) {
	c := qt.New(t)
	for _, test := range directionTests {
		c.Run(test.testName, func(c *qt.C) {
			p := &recordingProjector{}
			ctl := ingest.New(ingest.Params{
				Projector: p,
			})
			err := ctl.HandleEvent(message(test.msg))
			c.Assert(err, qt.IsNil)
			c.Assert(p.updates, qt.HasLen, 1)
			c.Assert(p.updates[0].FeedIn, qt.Equals, test.feedIn)
		})
	}
}

func TestMalformedIsolation(t *testing.T) {
	c := qt.New(t)
	p := &recordingProjector{}
	m := ingest.NewMetrics()
	ctl := ingest.New(ingest.Params{
		Projector: p,
		Metrics:   m,
	})
	err := ctl.HandleEvent(message(`{"time":"10:00:00","value":500}`))
	c.Assert(err, qt.IsNil)
	err = ctl.HandleEvent(message(`{"time":"10:00:15","value2":3}`))
	c.Assert(err, qt.ErrorMatches, `reading has no value`)
	c.Assert(errgo.Cause(err), qt.Equals, reading.ErrMalformed)
	err = ctl.HandleEvent(message(`garbage`))
	c.Assert(errgo.Cause(err), qt.Equals, reading.ErrMalformed)
	err = ctl.HandleEvent(message(`{"time":"10:00:30","value":-200}`))
	c.Assert(err, qt.IsNil)

	c.Assert(ctl.Points(), qt.DeepEquals, []series.Point{{
		Label: "10:00:00",
		Power: 500,
	}, {
		Label: "10:00:30",
		Power: -200,
	}})
	c.Assert(p.updates, qt.HasLen, 2)
	c.Assert(ctl.State(), qt.Equals, ingest.Receiving)
	c.Assert(testutil.ToFloat64(m.Readings.WithLabelValues("accepted")), qt.Equals, 2.0)
	c.Assert(testutil.ToFloat64(m.Readings.WithLabelValues("rejected")), qt.Equals, 2.0)
}

func TestBoundedBuffer(t *testing.T) {
	c := qt.New(t)
	p := &recordingProjector{}
	ctl := ingest.New(ingest.Params{
		Projector: p,
	})
	for i := 0; i < 75; i++ {
		err := ctl.HandleEvent(message(fmt.Sprintf(`{"time":"%d","value":%d}`, i, i)))
		c.Assert(err, qt.IsNil)
	}
	points := ctl.Points()
	c.Assert(points, qt.HasLen, series.Capacity)
	for i, pt := range points {
		c.Assert(pt.Label, qt.Equals, fmt.Sprint(i+25))
	}
	for i, u := range p.updates {
		c.Assert(u.Diff.Evicted, qt.Equals, i >= series.Capacity)
	}
}

func TestScenarioWithProjector(t *testing.T) {
	c := qt.New(t)
	pr := view.New(view.Params{
		Catalog: locale.Default(),
		Locale:  "en",
	})
	pr.Render("en")
	ctl := ingest.New(ingest.Params{
		Projector: pr,
	})
	msgs := []string{
		`{"time":"10:00:00","value":500}`,
		`{"time":"10:00:30","value":-200,"is_feed_in":true}`,
		`{"time":"10:01:00","value":300,"total_energy":1234.5}`,
	}
	var severities []view.Severity
	for _, m := range msgs {
		err := ctl.HandleEvent(message(m))
		c.Assert(err, qt.IsNil)
		severities = append(severities, pr.Status().Severity)
		// The chart mirrors the buffer as soon as each
		// event has been handled.
		c.Assert(pr.Snapshot().Chart.Data.Rows, qt.HasLen, len(ctl.Points()))
	}
	var powers []float64
	for _, pt := range ctl.Points() {
		powers = append(powers, pt.Power)
	}
	c.Assert(powers, qt.DeepEquals, []float64{500, -200, 300})
	c.Assert(severities, qt.DeepEquals, []view.Severity{
		view.SeverityConsumption,
		view.SeverityFeedIn,
		view.SeverityConsumption,
	})
	c.Assert(pr.Status().Meter, qt.Equals, "1234.5")
	pr.Render("de")
	c.Assert(pr.Status().Meter, qt.Equals, "1234,5")
}

func TestMetricsRegister(t *testing.T) {
	c := qt.New(t)
	reg := prometheus.NewPedanticRegistry()
	m := ingest.NewMetrics()
	err := reg.Register(m)
	c.Assert(err, qt.IsNil)
	m.Readings.WithLabelValues("accepted").Inc()
	n, err := testutil.GatherAndCount(reg, "ehz_readings_total", "ehz_stream_state")
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 2)
}

package view_test

import (
	"encoding/json"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rogpeppe/ehz/format"
	"github.com/rogpeppe/ehz/googlecharts"
	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/reading"
	"github.com/rogpeppe/ehz/series"
	"github.com/rogpeppe/ehz/view"
)

// sameChartData compares charts ignoring everything
// that Render is allowed to change.
var sameChartData = qt.CmpEquals(
	cmpopts.IgnoreFields(googlecharts.Chart{}, "Options", "Revision"),
	cmpopts.IgnoreFields(googlecharts.Column{}, "Label"),
)

func newProjector(tag locale.Tag) *view.Projector {
	pr := view.New(view.Params{
		Catalog: locale.Default(),
		Locale:  tag,
		Images:  []string{"/images/strom-tag-de.png"},
	})
	pr.Render(tag)
	return pr
}

// push pushes r to buf and applies the result to pr.
func push(pr *view.Projector, buf *series.Buffer, r *reading.Reading) {
	d := buf.Push(series.Point{
		Label:       r.Time,
		Power:       r.Power,
		Consumption: r.Consumption,
	})
	pr.Apply(view.Update{
		Reading: r,
		FeedIn:  r.FeedIn(),
		Diff:    d,
	})
}

func TestInitialStatus(t *testing.T) {
	c := qt.New(t)
	pr := newProjector("en")
	c.Assert(pr.Status(), qt.DeepEquals, view.Status{
		LastUpdate: format.Unavailable,
		Power:      format.Unavailable,
		Meter:      format.Unavailable,
		Direction:  "Initializing...",
		Severity:   view.SeverityNone,
	})
	p := pr.Snapshot()
	c.Assert(p.Locale, qt.Equals, locale.Tag("en"))
	c.Assert(p.Text("app_title"), qt.Equals, "Power Consumption Monitor")
	c.Assert(p.Text("no_such_key"), qt.Equals, "no_such_key")
	c.Assert(p.Images, qt.DeepEquals, []string{"/images/strom-tag-de.png"})
	c.Assert(p.Chart.Data.Rows, qt.HasLen, 0)
	c.Assert(p.Chart.Options.Title, qt.Equals, "Real-time Power History")
}

func TestMirrorInvariant(t *testing.T) {
	c := qt.New(t)
	for _, n := range []int{0, 1, 49, 50, 51, 120} {
		c.Run(fmt.Sprint(n), func(c *qt.C) {
			pr := newProjector("de")
			buf := series.NewBuffer(series.Capacity)
			for i := 0; i < n; i++ {
				push(pr, buf, &reading.Reading{
					Time:  fmt.Sprint(i),
					Power: float64(i),
				})
			}
			c.Assert(chartPoints(pr.Snapshot().Chart), qt.DeepEquals, buf.Snapshot())
		})
	}
}

func TestApplyGap(t *testing.T) {
	c := qt.New(t)
	pr := newProjector("de")
	buf := series.NewBuffer(2)
	v := 3.0
	push(pr, buf, &reading.Reading{Time: "a", Power: 1, Consumption: &v})
	push(pr, buf, &reading.Reading{Time: "b", Power: 2})
	push(pr, buf, &reading.Reading{Time: "c", Power: 3})
	rows := pr.Snapshot().Chart.Data.Rows
	c.Assert(rows, qt.HasLen, 2)
	c.Assert(rows[0].Cells, qt.DeepEquals, []googlecharts.Cell{{Value: "b"}, {Value: 2.0}, {}})
	c.Assert(chartPoints(pr.Snapshot().Chart), qt.DeepEquals, buf.Snapshot())
}

func TestRenderIdempotent(t *testing.T) {
	c := qt.New(t)
	pr := newProjector("de")
	buf := series.NewBuffer(series.Capacity)
	push(pr, buf, &reading.Reading{Time: "10:00:00", Power: 500})

	pr.Render("en")
	p1 := pr.Snapshot()
	pr.Render("en")
	p2 := pr.Snapshot()
	c.Assert(p2, qt.DeepEquals, p1)
	c.Assert(p1.Status.Direction, qt.Equals, "Consumption")
	c.Assert(p1.Text("stat_power"), qt.Equals, "Current Power")
}

func TestRenderLeavesChartData(t *testing.T) {
	c := qt.New(t)
	pr := newProjector("de")
	buf := series.NewBuffer(series.Capacity)
	for i := 0; i < 5; i++ {
		push(pr, buf, &reading.Reading{Time: fmt.Sprint(i), Power: float64(i) + 0.5})
	}
	before := pr.Snapshot()
	pr.Render("en")
	after := pr.Snapshot()
	c.Assert(after.Chart, sameChartData, before.Chart)
	c.Assert(after.Chart.Revision, qt.Equals, before.Chart.Revision+1)
	c.Assert(after.Chart.Options.Title, qt.Equals, "Real-time Power History")
	c.Assert(after.Chart.Options.HAxis.Title, qt.Equals, "Time")
	c.Assert(after.Chart.Data.Cols[1].Label, qt.Equals, "Active Power (W)")
	c.Assert(before.Chart.Options.Title, qt.Equals, "Echtzeit-Leistungsverlauf")
	// Numbers are reformatted for the new locale.
	c.Assert(before.Status.Power, qt.Equals, "4,5")
	c.Assert(after.Status.Power, qt.Equals, "4.5")
}

func TestScenario(t *testing.T) {
	c := qt.New(t)
	msgs := []string{
		`{"time":"10:00:00","value":500}`,
		`{"time":"10:00:30","value":-200,"is_feed_in":true}`,
		`{"time":"10:01:00","value":300,"total_energy":1234.5}`,
	}
	pr := newProjector("en")
	buf := series.NewBuffer(series.Capacity)
	var statuses []view.Status
	for _, m := range msgs {
		r, err := reading.Parse([]byte(m))
		c.Assert(err, qt.IsNil)
		push(pr, buf, r)
		statuses = append(statuses, pr.Status())
	}
	var powers []float64
	for _, p := range buf.Snapshot() {
		powers = append(powers, p.Power)
	}
	c.Assert(powers, qt.DeepEquals, []float64{500, -200, 300})
	c.Assert(statuses, qt.DeepEquals, []view.Status{{
		LastUpdate: "10:00:00",
		Power:      "500.0",
		Meter:      format.Unavailable,
		Direction:  "Consumption",
		Severity:   view.SeverityConsumption,
	}, {
		LastUpdate: "10:00:30",
		Power:      "-200.0",
		Meter:      format.Unavailable,
		Direction:  "Grid Feed-in",
		Severity:   view.SeverityFeedIn,
	}, {
		LastUpdate: "10:01:00",
		Power:      "300.0",
		Meter:      "1234.5",
		Direction:  "Consumption",
		Severity:   view.SeverityConsumption,
	}})
	pr.Render("de")
	c.Assert(pr.Status().Meter, qt.Equals, "1234,5")
	c.Assert(pr.Status().Direction, qt.Equals, "Bezug")
}

func TestMeterKeptWhenAbsent(t *testing.T) {
	c := qt.New(t)
	pr := newProjector("en")
	buf := series.NewBuffer(series.Capacity)
	e := 10.0
	push(pr, buf, &reading.Reading{Time: "a", Power: 1, TotalEnergy: &e})
	push(pr, buf, &reading.Reading{Time: "b", Power: 1})
	c.Assert(pr.Status().Meter, qt.Equals, "10.0")
}

func TestBind(t *testing.T) {
	c := qt.New(t)
	pr := view.New(view.Params{
		Catalog: locale.Default(),
	})
	var t1, t2 view.Text
	pr.Bind("nav_day", &t1)
	pr.Bind("nav_day", &t2)
	pr.Bind("nav_day", &t2)
	pr.Render("de")
	c.Assert(t1.Value, qt.Equals, "Tag")
	c.Assert(t2.Value, qt.Equals, "Tag")
	pr.Render("en")
	c.Assert(t1.Value, qt.Equals, "Day")
	c.Assert(t2.Value, qt.Equals, "Day")
}

func TestSnapshotIsCopy(t *testing.T) {
	c := qt.New(t)
	pr := newProjector("en")
	buf := series.NewBuffer(series.Capacity)
	p := pr.Snapshot()
	p.Texts["app_title"] = "changed"
	p.Images[0] = "changed"
	push(pr, buf, &reading.Reading{Time: "a", Power: 1})
	c.Assert(p.Chart.Data.Rows, qt.HasLen, 0)
	p1 := pr.Snapshot()
	c.Assert(p1.Text("app_title"), qt.Equals, "Power Consumption Monitor")
	c.Assert(p1.Images[0], qt.Equals, "/images/strom-tag-de.png")
}

func TestSeverityJSON(t *testing.T) {
	c := qt.New(t)
	data, err := json.Marshal(view.Status{Severity: view.SeverityFeedIn})
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.JSONEquals, map[string]interface{}{
		"lastUpdate": "",
		"power":      "",
		"meter":      "",
		"direction":  "",
		"severity":   "feed-in",
	})
	var st view.Status
	err = json.Unmarshal(data, &st)
	c.Assert(err, qt.IsNil)
	c.Assert(st.Severity, qt.Equals, view.SeverityFeedIn)
	c.Assert(view.SeverityConsumption.Class(), qt.Equals, "alert-success")
	c.Assert(view.SeverityFeedIn.Class(), qt.Equals, "alert-warning")

	err = json.Unmarshal([]byte(`{"severity":"bad"}`), &st)
	c.Assert(err, qt.ErrorMatches, `unknown severity "bad"`)
}

// chartPoints converts the chart rows back to points.
func chartPoints(ch *googlecharts.Chart) []series.Point {
	ps := []series.Point{}
	for _, r := range ch.Data.Rows {
		p := series.Point{
			Label: r.Cells[0].Value.(string),
			Power: r.Cells[1].Value.(float64),
		}
		if v, ok := r.Cells[2].Value.(float64); ok {
			p.Consumption = &v
		}
		ps = append(ps, p)
	}
	return ps
}

// Package view maintains the presentation of the live readings:
// the status indicators, the translated page text, the locale-specific
// images and the live chart.
//
// The view is updated incrementally as readings arrive (Apply) and fully
// when the locale changes (Render). A Projector is not safe for concurrent
// use; readers on other goroutines should use Snapshot.
package view

import (
	"github.com/rogpeppe/ehz/format"
	"github.com/rogpeppe/ehz/googlecharts"
	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/reading"
	"github.com/rogpeppe/ehz/series"
)

// Text is a render target for a piece of translatable text.
type Text struct {
	Value string
}

// Image is a render target for an image whose source
// path includes the locale.
type Image struct {
	Src string
}

// Update describes a new reading to be shown.
type Update struct {
	Reading *reading.Reading
	// FeedIn holds the direction derived from the reading.
	FeedIn bool
	// Diff holds the change made to the series buffer
	// by the reading.
	Diff series.Diff
}

// Params holds parameters for New.
type Params struct {
	// Catalog holds the locales to draw text from.
	Catalog *locale.Catalog
	// Locale holds the initial locale. Nothing is translated
	// until Render is called.
	Locale locale.Tag
	// Images holds the initial sources of the page images.
	Images []string
	// Decimals holds the number of decimal places shown
	// for status values. If it's zero, format.DefaultDecimals
	// is used.
	Decimals int
}

// Projector owns the render targets of the page.
type Projector struct {
	cat      *locale.Catalog
	decimals int
	tag      locale.Tag
	registry Registry
	texts    map[string]*Text
	images   []*Image
	chart    *googlecharts.Chart
	status   Status

	// last holds the most recent reading, or nil
	// if there has been none.
	last *lastReading
}

type lastReading struct {
	time   string
	power  float64
	meter  *float64
	feedIn bool
}

// chartRow defines the columns of the live chart.
// It has the same fields as series.Point.
type chartRow struct {
	Label       string   `googlecharts:",id=time"`
	Power       float64  `googlecharts:",id=power"`
	Consumption *float64 `googlecharts:",id=consumption"`
}

// New returns a new Projector with a text target bound
// for every key in the catalog.
func New(p Params) *Projector {
	if p.Decimals == 0 {
		p.Decimals = format.DefaultDecimals
	}
	pr := &Projector{
		cat:      p.Catalog,
		decimals: p.Decimals,
		tag:      p.Locale,
		texts:    make(map[string]*Text),
		chart: googlecharts.NewChart(googlecharts.NewDataTable([]chartRow(nil)), googlecharts.Options{
			CurveType: "function",
			Legend: &googlecharts.Legend{
				Position: "bottom",
			},
			VAxes: make([]googlecharts.Axis, 2),
			Series: []googlecharts.Series{{
				TargetAxisIndex: 0,
				Type:            "line",
				Color:           "#4b6cb7",
			}, {
				TargetAxisIndex: 1,
				Type:            "bars",
				Color:           "#ff9f40",
			}},
		}),
	}
	for _, key := range p.Catalog.Keys() {
		t := new(Text)
		pr.texts[key] = t
		pr.registry.Bind(key, t)
	}
	for _, src := range p.Images {
		pr.images = append(pr.images, &Image{Src: src})
	}
	pr.status = pr.makeStatus()
	return pr
}

// Bind adds another text target for the given key.
// It will be filled in by the next call to Render.
func (pr *Projector) Bind(key string, t *Text) {
	pr.registry.Bind(key, t)
}

// Locale returns the locale used for formatting.
func (pr *Projector) Locale() locale.Tag {
	return pr.tag
}

// Images returns the image targets of the page. The images
// may be changed by the caller; the slice must not be.
func (pr *Projector) Images() []*Image {
	return pr.images
}

// Apply shows the reading in u. The status indicators
// are recomputed and the change in u.Diff is applied to
// the chart, which is then redrawn. When Apply returns,
// the chart rows hold the same points, in the same order,
// as the buffer that produced the diff.
func (pr *Projector) Apply(u Update) {
	last := &lastReading{
		time:   u.Reading.Time,
		power:  u.Reading.Power,
		feedIn: u.FeedIn,
	}
	if u.Reading.TotalEnergy != nil {
		last.meter = u.Reading.TotalEnergy
	} else if pr.last != nil {
		last.meter = pr.last.meter
	}
	pr.last = last
	pr.status = pr.makeStatus()

	if u.Diff.Evicted {
		pr.chart.ShiftRow()
	}
	pr.chart.AppendRow(googlecharts.NewRow(chartRow(u.Diff.Appended)))
	pr.chart.Redraw()
}

// Render re-applies all locale-dependent text for the given locale:
// every bound text target, the chart titles and series labels, and the
// status indicators for the last reading. The chart data is left alone.
// Calling Render twice with the same locale has no further effect.
func (pr *Projector) Render(tag locale.Tag) {
	pr.tag = tag
	for _, key := range pr.registry.Keys() {
		s := pr.cat.Lookup(tag, key)
		for _, t := range pr.registry.Targets(key) {
			t.Value = s
		}
	}
	pr.status = pr.makeStatus()

	ch := pr.chart
	changed := setString(&ch.Options.Title, pr.cat.Lookup(tag, locale.KeyChartTitle))
	changed = setString(&ch.Options.HAxis.Title, pr.cat.Lookup(tag, locale.KeyChartAxisTime)) || changed
	changed = setString(&ch.Options.VAxes[0].Title, pr.cat.Lookup(tag, locale.KeyChartAxisPower)) || changed
	changed = setString(&ch.Options.VAxes[1].Title, pr.cat.Lookup(tag, locale.KeyChartAxisConsump)) || changed
	changed = setString(&ch.Data.Cols[0].Label, pr.cat.Lookup(tag, locale.KeyChartAxisTime)) || changed
	changed = setString(&ch.Data.Cols[1].Label, pr.cat.Lookup(tag, locale.KeyChartLabelPower)) || changed
	changed = setString(&ch.Data.Cols[2].Label, pr.cat.Lookup(tag, locale.KeyChartLabelConsump)) || changed
	if changed {
		ch.Redraw()
	}
}

func setString(p *string, s string) bool {
	if *p == s {
		return false
	}
	*p = s
	return true
}

// Status returns the current status indicators.
func (pr *Projector) Status() Status {
	return pr.status
}

func (pr *Projector) makeStatus() Status {
	if pr.last == nil {
		return Status{
			LastUpdate: format.Unavailable,
			Power:      format.Unavailable,
			Meter:      format.Unavailable,
			Direction:  pr.cat.Lookup(pr.tag, locale.KeyStatusInit),
			Severity:   SeverityNone,
		}
	}
	st := Status{
		LastUpdate: pr.last.time,
		Power:      format.Number(pr.cat, pr.last.power, pr.tag, pr.decimals),
		Meter:      format.OptNumber(pr.cat, pr.last.meter, pr.tag, pr.decimals),
		Direction:  format.StatusLabel(pr.cat, pr.last.feedIn, pr.tag),
		Severity:   SeverityConsumption,
	}
	if pr.last.feedIn {
		st.Severity = SeverityFeedIn
	}
	return st
}

// Page holds a copy of the visible state of the page.
type Page struct {
	Locale locale.Tag          `json:"locale"`
	Texts  map[string]string   `json:"texts"`
	Status Status              `json:"status"`
	Images []string            `json:"images"`
	Chart  *googlecharts.Chart `json:"chart"`
}

// Snapshot returns a copy of the page that shares no
// mutable state with the Projector.
func (pr *Projector) Snapshot() *Page {
	p := &Page{
		Locale: pr.tag,
		Texts:  make(map[string]string, len(pr.texts)),
		Status: pr.status,
		Images: make([]string, len(pr.images)),
		Chart:  pr.chart.Clone(),
	}
	for key, t := range pr.texts {
		p.Texts[key] = t.Value
	}
	for i, img := range pr.images {
		p.Images[i] = img.Src
	}
	return p
}

// Text returns the text of the given key, or the key
// itself if there's none.
func (p *Page) Text(key string) string {
	if s, ok := p.Texts[key]; ok && s != "" {
		return s
	}
	return key
}

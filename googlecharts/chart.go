package googlecharts

// Chart holds a chart's data together with the options that
// control how it's drawn. Changing the data or options has no
// visible effect until Redraw is called.
//
// When marshaled as JSON, Options is suitable for passing
// to the draw method of a google.visualization chart.
type Chart struct {
	Options Options    `json:"options"`
	Data    *DataTable `json:"data"`
	// Revision is incremented by every call to Redraw.
	Revision int `json:"revision"`
}

// Options holds the subset of chart options that we use.
type Options struct {
	Title       string   `json:"title,omitempty"`
	CurveType   string   `json:"curveType,omitempty"`
	Legend      *Legend  `json:"legend,omitempty"`
	HAxis       Axis     `json:"hAxis"`
	VAxes       []Axis   `json:"vAxes,omitempty"`
	Series      []Series `json:"series,omitempty"`
	Interpolate bool     `json:"interpolateNulls"`
}

type Axis struct {
	Title string `json:"title,omitempty"`
}

type Legend struct {
	Position string `json:"position,omitempty"`
}

// Series holds options for one plotted series. Series i
// corresponds to data column i+1.
type Series struct {
	TargetAxisIndex int    `json:"targetAxisIndex"`
	Type            string `json:"type,omitempty"`
	Color           string `json:"color,omitempty"`
}

// NewChart returns a chart that draws the given table.
func NewChart(data *DataTable, opts Options) *Chart {
	return &Chart{
		Options: opts,
		Data:    data,
	}
}

// SetLabel sets the label of the given data column.
// It does nothing if there's no such column.
func (c *Chart) SetLabel(col int, label string) {
	if col >= 0 && col < len(c.Data.Cols) {
		c.Data.Cols[col].Label = label
	}
}

// AppendRow adds a row to the end of the chart's data.
func (c *Chart) AppendRow(r Row) {
	c.Data.AppendRow(r)
}

// ShiftRow removes the first row of the chart's data.
// It reports whether there was a row to remove.
func (c *Chart) ShiftRow() bool {
	return c.Data.ShiftRow()
}

// Redraw requests that the chart be drawn again with
// its current data and options.
func (c *Chart) Redraw() {
	c.Revision++
}

// Clone returns a copy of the chart that shares
// no mutable state with c.
func (c *Chart) Clone() *Chart {
	c1 := *c
	c1.Data = c.Data.Clone()
	if c.Options.Legend != nil {
		l := *c.Options.Legend
		c1.Options.Legend = &l
	}
	c1.Options.VAxes = append([]Axis(nil), c.Options.VAxes...)
	c1.Options.Series = append([]Series(nil), c.Options.Series...)
	return &c1
}

package ehztest

import (
	"context"
	"math"
	"time"

	"github.com/rogpeppe/ehz/reading"
)

// Generator produces a plausible sequence of readings: a daily
// load curve with a solar bump around midday that can push the
// power negative, and a meter total that increases with
// consumption.
type Generator struct {
	// Interval holds the time between readings.
	Interval time.Duration
	// TotalEnergy holds the current meter total in kWh.
	TotalEnergy float64
	// MeterEvery holds how often the meter total is included.
	// If it's zero, it's included in every reading.
	MeterEvery int

	count int
}

// Next returns the reading for the given time.
func (g *Generator) Next(now time.Time) *reading.Reading {
	interval := g.Interval
	if interval <= 0 {
		interval = time.Second
	}
	hour := float64(now.Hour()) + float64(now.Minute())/60 + float64(now.Second())/3600
	base := 350 + 150*math.Sin(2*math.Pi*float64(now.Unix()%600)/600)
	solar := 0.0
	if hour > 6 && hour < 20 {
		solar = 900 * math.Sin(math.Pi*(hour-6)/14)
	}
	power := math.Round((base-solar)*10) / 10
	r := &reading.Reading{
		Time:  now.Format("15:04:05"),
		Power: power,
	}
	consumed := math.Max(power, 0) * interval.Hours()
	consumed = math.Round(consumed*100) / 100
	r.Consumption = &consumed
	g.TotalEnergy += consumed / 1000
	if g.MeterEvery <= 1 || g.count%g.MeterEvery == 0 {
		total := math.Round(g.TotalEnergy*10) / 10
		r.TotalEnergy = &total
	}
	feedIn := power < 0
	r.IsFeedIn = &feedIn
	g.count++
	return r
}

// Run sends a generated reading to all subscribers of srv every
// g.Interval until the context is cancelled.
func (g *Generator) Run(ctx context.Context, srv *Server) error {
	interval := g.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			srv.SendReading(g.Next(now))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

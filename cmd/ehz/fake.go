package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/ehztest"
)

var fakeFlags struct {
	addr       string
	interval   time.Duration
	total      float64
	meterEvery int
}

var fakeCmd = &cobra.Command{
	Use:   "fake",
	Short: "Run a fake meter that serves readings on /events and /ws",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := ehztest.NewServer(fakeFlags.addr)
		if err != nil {
			return errgo.Mask(err)
		}
		defer srv.Close()
		logger.Infof("fake meter serving on %s", srv.URL("/events"))
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		g := &ehztest.Generator{
			Interval:    fakeFlags.interval,
			TotalEnergy: fakeFlags.total,
			MeterEvery:  fakeFlags.meterEvery,
		}
		if err := g.Run(ctx, srv); err != nil && ctx.Err() == nil {
			return errgo.Mask(err)
		}
		return nil
	},
}

func init() {
	f := fakeCmd.Flags()
	f.StringVar(&fakeFlags.addr, "addr", "localhost:5000", "listen address")
	f.DurationVar(&fakeFlags.interval, "interval", 2*time.Second, "time between readings")
	f.Float64Var(&fakeFlags.total, "total", 12000, "initial meter total in kWh")
	f.IntVar(&fakeFlags.meterEvery, "meter-every", 5, "include the meter total in every nth reading")
	rootCmd.AddCommand(fakeCmd)
}

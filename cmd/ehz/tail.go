package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/juju/ansiterm"
	"github.com/spf13/cobra"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/format"
	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/reading"
	"github.com/rogpeppe/ehz/stream"
)

var tailLocale string

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print readings from the event stream as they arrive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errgo.Mask(err)
		}
		dialer, err := cfg.Stream.Dialer()
		if err != nil {
			return errgo.Mask(err)
		}
		cat := locale.Default()
		if cfg.LocalesFile != "" {
			if err := cat.LoadFile(cfg.LocalesFile); err != nil {
				return errgo.Mask(err)
			}
		}
		tag := locale.Tag(tailLocale)
		if tag == "" {
			tag = locale.Tag(cfg.DefaultLocale)
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		t := newTailer(os.Stdout, cat, tag)
		err = stream.Run(ctx, stream.Params{
			Dialer: dialer,
			Handle: t.handle,
		})
		if err != nil && ctx.Err() == nil {
			return errgo.Mask(err)
		}
		return nil
	},
}

func init() {
	tailCmd.Flags().StringVar(&tailLocale, "lang", "", "locale for numbers and labels")
	rootCmd.AddCommand(tailCmd)
}

var (
	feedInStyle      = ansiterm.Foreground(ansiterm.Yellow)
	consumptionStyle = ansiterm.Foreground(ansiterm.Green)
	connStyle        = ansiterm.Foreground(ansiterm.Gray)
	errorStyle       = ansiterm.Foreground(ansiterm.BrightRed)
)

// tailer prints stream events, one line each.
type tailer struct {
	w   *ansiterm.Writer
	cat *locale.Catalog
	tag locale.Tag
}

func newTailer(w io.Writer, cat *locale.Catalog, tag locale.Tag) *tailer {
	return &tailer{
		w:   ansiterm.NewWriter(w),
		cat: cat,
		tag: tag,
	}
}

func (t *tailer) handle(ev stream.Event) {
	switch ev.Kind {
	case stream.Connecting, stream.Open:
		connStyle.Fprintf(t.w, "-- %v\n", ev.Kind)
	case stream.Closed:
		if ev.Err != nil {
			errorStyle.Fprintf(t.w, "-- closed: %v\n", ev.Err)
		} else {
			connStyle.Fprintf(t.w, "-- closed\n")
		}
	case stream.Message:
		r, err := reading.Parse(ev.Data)
		if err != nil {
			errorStyle.Fprintf(t.w, "-- %v\n", err)
			return
		}
		t.printReading(r)
	}
}

func (t *tailer) printReading(r *reading.Reading) {
	feedIn := r.FeedIn()
	style := consumptionStyle
	if feedIn {
		style = feedInStyle
	}
	style.Fprintf(t.w, "%s %s %s %s %s %s\n",
		r.Time,
		format.Number(t.cat, r.Power, t.tag, format.DefaultDecimals),
		t.cat.Lookup(t.tag, locale.KeyUnitPower),
		format.OptNumber(t.cat, r.TotalEnergy, t.tag, format.DefaultDecimals),
		t.cat.Lookup(t.tag, locale.KeyUnitMeter),
		format.StatusLabel(t.cat, feedIn, t.tag),
	)
}

// The ehz command shows live power readings from an electricity meter.
//
// Usage:
//
//	ehz serve [--config file]
//	ehz tail [--config file]
//	ehz fake [--addr host:port]
package main

import (
	"fmt"
	"os"

	"github.com/juju/loggo"
	"github.com/spf13/cobra"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/ehzconfig"
)

var logger = loggo.GetLogger("ehz.cmd")

var configFile string

var rootCmd = &cobra.Command{
	Use:           "ehz",
	Short:         "Live power readings from an electricity meter",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file (YAML)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ehz: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and configures
// logging from it.
func loadConfig() (*ehzconfig.Config, error) {
	cfg, err := ehzconfig.Load(configFile, os.Getenv)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	if err := loggo.ConfigureLoggers(cfg.Log); err != nil {
		return nil, errgo.Notef(err, "cannot configure logging")
	}
	return cfg, nil
}

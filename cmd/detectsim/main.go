// Command detectsim drives the continuation engine through the S1-S6
// scenarios (or a custom YAML rule group) for manual inspection, and
// optionally exposes the engine's Prometheus counters on /metrics.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:          "detectsim",
		Short:        "Drive the signature continuation engine against canned or custom traffic",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "log level: debug, info, warn, error")

	root.AddCommand(newRunCmd(&logLevel))
	root.AddCommand(newRunFileCmd(&logLevel))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/log"
)

var rootCmd = &cobra.Command{
	Use:           "survey-hub",
	Short:         "Survey management server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the log level.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

// SPDX-License-Identifier: EPL-2.0

// Package cli is the musicreplacer command line: catalog management plus a
// simulated host for listening to overrides.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ik5/musicreplacer"
	"github.com/ik5/musicreplacer/config"
	"github.com/ik5/musicreplacer/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "musicreplacer",
	Short: "Replace a host's music with your own tracks",
	Long: `musicreplacer manages per-track music overrides: local files or downloads
cached under the data directory and played in place of the host's music.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/musicreplacer/config.toml or ~/.musicreplacerrc)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openReplacer builds a replacer around host with the loaded config.
func openReplacer(host musicreplacer.Host) (*musicreplacer.Replacer, *zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	r, err := musicreplacer.New(cfg, host, musicreplacer.WithLogger(logger))
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return r, logger, nil
}

// runJob opens a replacer, lets submit queue work on it, then waits for
// the queue to drain before returning.
func runJob(submit func(r *musicreplacer.Replacer)) error {
	host := newConsoleHost(os.Stderr, 0, false)

	r, logger, err := openReplacer(host)
	if err != nil {
		return err
	}
	defer logger.Sync()

	submit(r)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Acquisition.Timeout()+time.Minute)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		return fmt.Errorf("waiting for queued work: %w", err)
	}

	if host.failed() {
		return fmt.Errorf("one or more operations failed")
	}
	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/pushdate/pkg/config"
	"github.com/odvcencio/pushdate/pkg/pushdate"
)

// app carries the state shared by every subcommand once the root command
// has read the config.
type app struct {
	configPath string
	verbose    bool
	format     string
	repository string

	cfg    *config.Config
	logger *slog.Logger
	loc    *time.Location
}

func (a *app) bindFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.FileName, "config file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	flags.StringVar(&a.format, "format", "", "output format: text, json or yaml (default from config)")
	flags.StringVar(&a.repository, "repository", "", "repository key in the push log (default from config)")
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Read(a.configPath)
	if err != nil {
		return err
	}
	if a.format != "" {
		cfg.Format = strings.ToLower(a.format)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("--format: %w", err)
		}
	}
	if a.repository != "" {
		cfg.Repository = a.repository
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	level := cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.cfg = cfg
	a.loc = loc
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.logger.Debug("config loaded", "path", a.configPath, "store", cfg.Store, "pushlog", cfg.PushLog)
	return nil
}

// deadline resolves the --deadline flag, falling back to the config.
func (a *app) deadline(flag string) (time.Time, bool, error) {
	if flag == "" {
		return a.cfg.DeadlineTime()
	}
	t, err := time.Parse(time.RFC3339, flag)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("--deadline: %w", err)
	}
	return t, true, nil
}

// restrict applies the deadline to hist, if one is set.
func (a *app) restrict(hist *pushdate.History, deadline time.Time, ok bool) (*pushdate.History, error) {
	if !ok {
		return hist, nil
	}
	limited, err := hist.UpTo(deadline)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("history restricted", "deadline", deadline, "before", hist.Len(), "after", limited.Len())
	return limited, nil
}

// warnAnomalies logs every contradiction the reconciliation found.
func (a *app) warnAnomalies(repository string, hist *pushdate.History) {
	for _, p := range hist.Patched() {
		a.logger.Warn("reported push capped by descendant",
			"repository", repository,
			"commit", p.Commit.Short(),
			"reported", p.Reported,
			"source", p.Source.Short(),
			"corrected", p.Corrected,
		)
	}
	for _, c := range hist.PushedBeforeCommitted() {
		a.logger.Warn("pushed before committed", "repository", repository, "commit", c.Short())
	}
}

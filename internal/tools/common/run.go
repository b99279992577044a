package common

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/workout-auth-service/internal/config"
	"github.com/sandeepkv93/workout-auth-service/internal/database"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"
	"github.com/sandeepkv93/workout-auth-service/internal/tools/ui"
)

// Options are the persistent flags shared by every tool command.
type Options struct {
	EnvFile string
	Timeout time.Duration
	CI      bool

	// OpenDB opens the store described by cfg. Tests swap it for sqlite.
	OpenDB func(cfg *config.Config) (*gorm.DB, error)
}

func NewOptions() *Options {
	return &Options{OpenDB: database.Open}
}

func (o *Options) BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.EnvFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&o.Timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&o.CI, "ci", false, "non-interactive machine-readable output")
}

// Action is the body of a tool command; it returns human readable details.
type Action func(ctx context.Context) ([]string, error)

// Execute runs fn either under the interactive UI or, with --ci, directly
// with JSON output, and records the run in tool metrics.
func (o *Options) Execute(cmd *cobra.Command, tool, title string, fn Action) error {
	start := time.Now()
	var err error
	if o.CI {
		ctx, cancel := context.WithTimeout(cmd.Context(), o.Timeout)
		var details []string
		details, err = fn(ctx)
		cancel()
		res := NewCIResult(tool, cmd.Name(), title, details, err, time.Since(start))
		if printErr := PrintCIResult(cmd.OutOrStdout(), res); printErr != nil && err == nil {
			err = printErr
		}
	} else {
		_, err = ui.Run(title, o.Timeout, fn)
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordToolCommandRun(cmd.Context(), tool, cmd.Name(), outcome)
	observability.RecordToolCommandDuration(cmd.Context(), tool, cmd.Name(), outcome, time.Since(start))
	return err
}

// LoadConfigDB reads the env file, loads configuration and opens the store.
// The caller closes the returned handle with CloseDB.
func (o *Options) LoadConfigDB() (*config.Config, *gorm.DB, error) {
	if err := LoadEnvFile(o.EnvFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := o.OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func CloseDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Command docsense extracts labeled text from API documents, trains a
// category classifier on it and predicts categories for new text.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/docsense/internal/logging"
	"github.com/cognicore/docsense/pkg/docsense"
	"github.com/cognicore/docsense/pkg/docsense/config"
	"github.com/cognicore/docsense/pkg/docsense/store"
	"github.com/cognicore/docsense/pkg/docsense/store/sqlite"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	dbPath     string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "docsense",
		Short:         "Categorize API documentation text",
		Long:          "docsense extracts labeled descriptions from OpenAPI/Swagger documents, trains a text classifier on them and predicts documentation categories.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: console or json")

	root.AddCommand(
		newExtractCmd(a),
		newTrainCmd(a),
		newPredictCmd(a),
		newModelsCmd(a),
		newStoplistCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger. Flags win over the
// config file and environment.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	log, err := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

// open builds the facade. withStore opens the model database named by
// --db or the config.
func (a *app) open(cmd *cobra.Command, withStore bool) (*docsense.DocSense, error) {
	comp, err := a.cfg.Build()
	if err != nil {
		return nil, err
	}

	var st store.Store
	if withStore {
		path := a.cfg.Store.Path
		if a.dbPath != "" {
			path = a.dbPath
		}
		st, err = sqlite.OpenSQLite(cmd.Context(), path)
		if err != nil {
			return nil, err
		}
		a.log.Debug("opened model store", zap.String("path", path))
	}

	return docsense.New(docsense.Options{
		Store:    st,
		Labeler:  comp.Labeler,
		Pipeline: comp.Pipeline,
		Logger:   a.log,
	}), nil
}

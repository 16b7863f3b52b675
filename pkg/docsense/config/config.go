// Package config loads docsense settings from YAML and the environment and
// builds the labeler and training pipeline they describe.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/cognicore/docsense/internal/logging"
	"github.com/cognicore/docsense/pkg/docsense/featurize"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/maxent"
)

// EnvPrefix marks environment variables that override file settings.
// DOCSENSE_TRAINING_LEARNING_RATE sets training.learning_rate.
const EnvPrefix = "DOCSENSE_"

// DefaultStorePath is the model database used when none is configured.
const DefaultStorePath = "docsense.db"

// Config is the full docsense configuration.
type Config struct {
	Log      logging.Config `koanf:"log"`
	Labeling Labeling       `koanf:"labeling"`
	Features Features       `koanf:"features"`
	Training Training       `koanf:"training"`
	Store    Store          `koanf:"store"`
}

// Labeling points at optional rule and stoplist files.
type Labeling struct {
	RulesPath    string `koanf:"rules_path"`
	StoplistPath string `koanf:"stoplist_path"`
}

// Features configures the bag-of-tokens featurizer.
type Features struct {
	WordNgrams  int    `koanf:"word_ngrams" validate:"min=1,max=5"`
	CharNgrams  int    `koanf:"char_ngrams" validate:"min=0,max=8"`
	MinDF       int    `koanf:"min_df" validate:"min=1"`
	Weighting   string `koanf:"weighting" validate:"oneof=tf tfidf"`
	StripMarkup bool   `koanf:"strip_markup"`
	DropNumbers bool   `koanf:"drop_numbers"`
}

// Training configures the maxent trainer.
type Training struct {
	Epochs       int     `koanf:"epochs" validate:"min=1,max=10000"`
	LearningRate float64 `koanf:"learning_rate" validate:"gt=0"`
	L2           float64 `koanf:"l2" validate:"min=0"`
	Seed         uint64  `koanf:"seed"`
}

// Store configures the model registry.
type Store struct {
	Path string `koanf:"path" validate:"required"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	opts := featurize.DefaultOptions()
	tr := maxent.DefaultTrainer()
	return Config{
		Log: logging.Config{Level: "info", Format: "console"},
		Features: Features{
			WordNgrams:  opts.WordNgrams,
			CharNgrams:  opts.CharNgrams,
			MinDF:       opts.MinDF,
			Weighting:   string(opts.Weighting),
			StripMarkup: opts.StripMarkup,
			DropNumbers: opts.DropNumbers,
		},
		Training: Training{
			Epochs:       tr.Epochs,
			LearningRate: tr.LearningRate,
			L2:           tr.L2,
			Seed:         tr.Seed,
		},
		Store: Store{Path: DefaultStorePath},
	}
}

// Load reads configPath (skipped when empty) and applies DOCSENSE_*
// environment overrides on top of Default.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("%w: read config file: %v", internalerr.ErrInvalidConfig, err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: load config file %s: %v", internalerr.ErrInvalidConfig, configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: load environment: %v", internalerr.ErrInvalidConfig, err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config: %v", internalerr.ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps DOCSENSE_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// applyDefaults fills values left blank by an explicit empty setting.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Features.Weighting == "" {
		cfg.Features.Weighting = def.Features.Weighting
	}
	if cfg.Training.Seed == 0 {
		cfg.Training.Seed = def.Training.Seed
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
}

var validate = validator.New()

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

// FeatureOptions converts the features section for the featurizer.
func (c *Config) FeatureOptions() featurize.Options {
	return featurize.Options{
		WordNgrams:  c.Features.WordNgrams,
		CharNgrams:  c.Features.CharNgrams,
		MinDF:       c.Features.MinDF,
		Weighting:   featurize.Weighting(c.Features.Weighting),
		StripMarkup: c.Features.StripMarkup,
		DropNumbers: c.Features.DropNumbers,
	}
}

// Trainer converts the training section for the maxent trainer.
func (c *Config) Trainer() maxent.Trainer {
	return maxent.Trainer{
		Epochs:       c.Training.Epochs,
		LearningRate: c.Training.LearningRate,
		L2:           c.Training.L2,
		Seed:         c.Training.Seed,
	}
}

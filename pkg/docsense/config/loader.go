package config

import (
	"fmt"

	"github.com/cognicore/docsense/pkg/docsense/classify"
	"github.com/cognicore/docsense/pkg/docsense/label"
)

// Components holds the parts built from a Config.
type Components struct {
	Labeler  *label.Labeler
	Pipeline *classify.Pipeline
}

// Build loads the rule and stoplist files named by c and constructs the
// labeler and training pipeline.
func (c *Config) Build() (*Components, error) {
	comp := &Components{}

	// Load keyword rules
	if c.Labeling.RulesPath != "" {
		rules, err := LoadRules(c.Labeling.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		comp.Labeler, err = label.New(rules.KeywordRules())
		if err != nil {
			return nil, fmt.Errorf("compile rules: %w", err)
		}
	} else {
		comp.Labeler = label.Default()
	}

	// Load stoplist
	opts := c.FeatureOptions()
	if c.Labeling.StoplistPath != "" {
		stoplist, err := LoadStoplist(c.Labeling.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		opts.Stopwords = stoplist.Terms
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	comp.Pipeline = classify.NewPipeline(classify.BagOfTokens(opts), classify.MaxEnt(c.Trainer()))
	return comp, nil
}

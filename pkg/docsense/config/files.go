package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/label"
)

// Rules is the keyword-rules file.
//
//	rules:
//	  - name: authentication
//	    label: Authentication
//	    path_keywords: [auth]
//	    text_keywords: [token, api key]
type Rules struct {
	Rules []RuleEntry `yaml:"rules"`
}

// RuleEntry is one keyword rule.
type RuleEntry struct {
	Name         string   `yaml:"name"`
	Label        string   `yaml:"label"`
	PathKeywords []string `yaml:"path_keywords"`
	TextKeywords []string `yaml:"text_keywords"`
}

// LoadRules loads keyword rules from a YAML file
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: rules file %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if len(r.Rules) == 0 {
		return nil, fmt.Errorf("%w: rules file %s has no rules", internalerr.ErrInvalidConfig, path)
	}

	return &r, nil
}

// KeywordRules converts the file entries in order.
func (r *Rules) KeywordRules() []label.KeywordRule {
	out := make([]label.KeywordRule, len(r.Rules))
	for i, e := range r.Rules {
		out[i] = label.KeywordRule{
			Name:         e.Name,
			Label:        e.Label,
			PathKeywords: e.PathKeywords,
			TextKeywords: e.TextKeywords,
		}
	}
	return out
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("%w: stoplist file %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &sl, nil
}

// SaveStoplist writes sl in the format LoadStoplist reads.
func SaveStoplist(path string, sl *Stoplist) error {
	data, err := yaml.Marshal(sl)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrWriteFailure, err)
	}
	return nil
}

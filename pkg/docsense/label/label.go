// Package label assigns a documentation category to extracted fragments with
// an ordered list of rules. The first matching rule wins.
package label

import (
	"fmt"
	"strings"

	"github.com/cognicore/docsense/pkg/docsense/extract"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

// Category names.
const (
	Authentication = "Authentication"
	Pagination     = "Pagination"
	RateLimits     = "Rate limits"
	Errors         = "Errors"
	Parameters     = "Parameters"
	Responses      = "Responses"
	Endpoints      = "Endpoints"
)

// All is the closed set of categories a Labeler can emit.
var All = []string{Authentication, Pagination, RateLimits, Errors, Parameters, Responses, Endpoints}

// Fallback is the label used when no rule matches.
const Fallback = Endpoints

// Rule pairs a predicate with the label it assigns.
type Rule struct {
	Name  string
	Label string
	Match func(f extract.Fragment) bool
}

// KeywordRule matches operation descriptions whose lower-cased text contains
// any TextKeywords entry, or whose lower-cased path contains any
// PathKeywords entry.
type KeywordRule struct {
	Name         string
	Label        string
	PathKeywords []string
	TextKeywords []string
}

// DefaultKeywordRules returns the built-in keyword rules in precedence order.
// "limit" fires before "rate limit", so rate-limit wording lands in
// Pagination.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Name: "authentication", Label: Authentication, PathKeywords: []string{"auth"}, TextKeywords: []string{"token", "api key"}},
		{Name: "pagination", Label: Pagination, TextKeywords: []string{"limit", "offset", "page"}},
		{Name: "rate-limits", Label: RateLimits, TextKeywords: []string{"rate limit", "429"}},
		{Name: "errors", Label: Errors, TextKeywords: []string{"error", "403", "401"}},
	}
}

// Labeler evaluates rules in order.
type Labeler struct {
	rules []Rule
}

// Default returns a Labeler with the built-in keyword rules.
func Default() *Labeler {
	l, err := New(DefaultKeywordRules())
	if err != nil {
		panic(err)
	}
	return l
}

// New builds a Labeler from keyword rules. The context rules for parameters
// and responses always come first and the Endpoints fallback always last.
// A nil slice selects DefaultKeywordRules.
func New(keywords []KeywordRule) (*Labeler, error) {
	if keywords == nil {
		keywords = DefaultKeywordRules()
	}

	rules := contextRules()
	for i, kw := range keywords {
		rule, err := compileKeywordRule(kw)
		if err != nil {
			return nil, fmt.Errorf("%w: keyword rule %d: %v", internalerr.ErrInvalidConfig, i, err)
		}
		rules = append(rules, rule)
	}
	return &Labeler{rules: rules}, nil
}

// Label returns the label of the first matching rule, or Fallback.
func (l *Labeler) Label(f extract.Fragment) string {
	lbl, _ := l.Explain(f)
	return lbl
}

// Explain is Label plus the name of the deciding rule ("fallback" when none
// matched).
func (l *Labeler) Explain(f extract.Fragment) (string, string) {
	for _, r := range l.rules {
		if r.Match(f) {
			return r.Label, r.Name
		}
	}
	return Fallback, "fallback"
}

// Rules returns the effective rule list in evaluation order.
func (l *Labeler) Rules() []Rule {
	out := make([]Rule, len(l.rules))
	copy(out, l.rules)
	return out
}

func contextRules() []Rule {
	return []Rule{
		{
			Name:  "parameters",
			Label: Parameters,
			Match: func(f extract.Fragment) bool {
				return f.Context.Kind == extract.ParameterDescription
			},
		},
		{
			Name:  "client-errors",
			Label: Errors,
			Match: func(f extract.Fragment) bool {
				return f.Context.Kind == extract.ResponseDescription && strings.HasPrefix(f.Context.StatusCode, "4")
			},
		},
		{
			Name:  "responses",
			Label: Responses,
			Match: func(f extract.Fragment) bool {
				return f.Context.Kind == extract.ResponseDescription
			},
		},
	}
}

func compileKeywordRule(kw KeywordRule) (Rule, error) {
	if !IsKnown(kw.Label) {
		return Rule{}, fmt.Errorf("unknown label %q", kw.Label)
	}
	paths := normalize(kw.PathKeywords)
	texts := normalize(kw.TextKeywords)
	if len(paths) == 0 && len(texts) == 0 {
		return Rule{}, fmt.Errorf("rule for %q has no keywords", kw.Label)
	}

	name := kw.Name
	if name == "" {
		name = strings.ToLower(strings.ReplaceAll(kw.Label, " ", "-"))
	}

	return Rule{
		Name:  name,
		Label: kw.Label,
		Match: func(f extract.Fragment) bool {
			if f.Context.Kind != extract.Description {
				return false
			}
			path := strings.ToLower(f.Context.OperationPath)
			for _, k := range paths {
				if strings.Contains(path, k) {
					return true
				}
			}
			text := strings.ToLower(f.Text)
			for _, k := range texts {
				if strings.Contains(text, k) {
					return true
				}
			}
			return false
		},
	}, nil
}

// IsKnown reports whether lbl is one of All.
func IsKnown(lbl string) bool {
	for _, known := range All {
		if known == lbl {
			return true
		}
	}
	return false
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

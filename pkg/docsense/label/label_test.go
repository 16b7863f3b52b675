package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/docsense/pkg/docsense/extract"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

func op(path, text string) extract.Fragment {
	return extract.Fragment{Text: text, Context: extract.Context{OperationPath: path, Method: "get", Kind: extract.Description}}
}

func param(text string) extract.Fragment {
	return extract.Fragment{Text: text, Context: extract.Context{OperationPath: "/x", Kind: extract.ParameterDescription}}
}

func response(status, text string) extract.Fragment {
	return extract.Fragment{Text: text, Context: extract.Context{OperationPath: "/x", Kind: extract.ResponseDescription, StatusCode: status}}
}

func TestParametersIgnoreText(t *testing.T) {
	l := Default()
	for _, text := range []string{
		"Your API key",
		"Maximum number of items (limit)",
		"Returns 429 on rate limit",
		"error code filter",
		"plain parameter",
	} {
		assert.Equal(t, Parameters, l.Label(param(text)), text)
	}
}

func TestResponsesByStatusCode(t *testing.T) {
	l := Default()
	tests := []struct {
		status string
		text   string
		want   string
	}{
		{"400", "Bad request", Errors},
		{"401", "Invalid credentials", Errors},
		{"404", "Everything is fine", Errors},
		{"429", "Too many requests", Errors},
		{"4XX", "Client error", Errors},
		{"200", "An error object describing the failure", Responses},
		{"201", "Token created", Responses},
		{"500", "Server error", Responses},
		{"default", "Unexpected error", Responses},
		{"", "No status", Responses},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Label(response(tt.status, tt.text)))
		})
	}
}

func TestKeywordPrecedence(t *testing.T) {
	l := Default()
	tests := []struct {
		name string
		path string
		text string
		want string
	}{
		{"auth path", "/auth/login", "Sign in", Authentication},
		{"auth path case-insensitive", "/OAuth/Authorize", "Sign in", Authentication},
		{"token text", "/users", "Use your bearer TOKEN", Authentication},
		{"api key text", "/users", "Requires an API key", Authentication},
		{"auth beats pagination", "/users", "Token-paged results, limit 10", Authentication},
		{"pagination limit", "/users", "Set a limit on results", Pagination},
		{"pagination offset", "/users", "Use offset to skip", Pagination},
		{"pagination page", "/users", "Returns one page", Pagination},
		{"rate limit shadowed by limit", "/users", "rate limit exceeded", Pagination},
		{"rate limit by status", "/users", "Returns 429 when throttled", RateLimits},
		{"errors word", "/users", "Describes the error format", Errors},
		{"errors 403", "/users", "Returns 403 for foreign tenants", Errors},
		{"errors 401", "/users", "Returns 401 when signed out", Errors},
		{"fallback", "/users", "Lists all users", Endpoints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Label(op(tt.path, tt.text)))
		})
	}
}

func TestLabelIsPure(t *testing.T) {
	l := Default()
	fragments := []extract.Fragment{
		op("/login", "Use your bearer token in the Authorization header"),
		param("Page size"),
		response("401", "Invalid credentials"),
		op("/things", "Lists things"),
	}
	for _, f := range fragments {
		first := l.Label(f)
		assert.Equal(t, first, l.Label(f))
		assert.Equal(t, first, Default().Label(f))
	}
}

func TestExplainNamesRule(t *testing.T) {
	l := Default()

	lbl, rule := l.Explain(op("/users", "rate limit exceeded"))
	assert.Equal(t, Pagination, lbl)
	assert.Equal(t, "pagination", rule)

	lbl, rule = l.Explain(op("/users", "List users"))
	assert.Equal(t, Endpoints, lbl)
	assert.Equal(t, "fallback", rule)

	_, rule = l.Explain(response("404", "missing"))
	assert.Equal(t, "client-errors", rule)
}

func TestRulesOrder(t *testing.T) {
	var names []string
	for _, r := range Default().Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"parameters", "client-errors", "responses",
		"authentication", "pagination", "rate-limits", "errors",
	}, names)
}

func TestCustomKeywordRules(t *testing.T) {
	l, err := New([]KeywordRule{
		{Label: RateLimits, TextKeywords: []string{"Rate Limit", "429"}},
		{Label: Pagination, TextKeywords: []string{"limit"}},
	})
	require.NoError(t, err)

	assert.Equal(t, RateLimits, l.Label(op("/users", "rate limit exceeded")))
	assert.Equal(t, Pagination, l.Label(op("/users", "limit results")))
	assert.Equal(t, Parameters, l.Label(param("rate limit")))

	names := []string{}
	for _, r := range l.Rules() {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "rate-limits")
}

func TestNewRejectsBadRules(t *testing.T) {
	_, err := New([]KeywordRule{{Label: "Billing", TextKeywords: []string{"invoice"}}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = New([]KeywordRule{{Label: Errors, TextKeywords: []string{"  "}}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestEmptyKeywordRulesOnlyUseContext(t *testing.T) {
	l, err := New([]KeywordRule{})
	require.NoError(t, err)
	assert.Equal(t, Endpoints, l.Label(op("/auth", "token")))
	assert.Equal(t, Errors, l.Label(response("403", "forbidden")))
}

// Package extract walks a parsed API specification and turns its descriptive
// text into labeled corpus records.
package extract

// Kind identifies where in an operation a fragment was found.
type Kind int

const (
	// Description is an operation's own description.
	Description Kind = iota
	// ParameterDescription is the description of one operation parameter.
	ParameterDescription
	// ResponseDescription is the description of one operation response.
	ResponseDescription
)

func (k Kind) String() string {
	switch k {
	case Description:
		return "description"
	case ParameterDescription:
		return "parameter"
	case ResponseDescription:
		return "response"
	default:
		return "unknown"
	}
}

// Context is the structural position of a fragment.
type Context struct {
	OperationPath string
	Method        string
	Kind          Kind
	StatusCode    string // set for ResponseDescription only
}

// Fragment is a single piece of descriptive text with its context.
type Fragment struct {
	Text    string
	Context Context
}

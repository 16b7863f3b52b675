// Package openapi reads OpenAPI 3 and Swagger 2 documents (JSON or YAML) into
// an ordered, read-only tree of paths, operations, parameters and responses.
//
// Only the parts needed to harvest descriptive text are modelled. Everything
// is kept in document order: paths, operations within a path, and the
// parameters and responses of each operation.
package openapi

// Document is a parsed API specification.
type Document struct {
	Version string // value of the "openapi" or "swagger" key
	Title   string // info.title
	Paths   []PathItem
}

// PathItem groups the operations declared under one path key.
type PathItem struct {
	Path       string
	Operations []Operation
}

// Operation is a single HTTP method on a path.
type Operation struct {
	Method      string // lower-case HTTP method
	OperationID string
	Summary     string
	Description string
	Parameters  []Parameter
	Responses   []Response
}

// Parameter is an operation parameter after $ref resolution.
type Parameter struct {
	Name        string
	In          string
	Description string
	Ref         string // original reference, if the parameter was a $ref
}

// Response is one entry of an operation's responses map.
type Response struct {
	StatusCode  string // map key, e.g. "200", "404", "default"
	Description string
	Ref         string
}

// Methods lists the path-item keys treated as operations, in OpenAPI order.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// OperationCount returns the total number of operations in the document.
func (d *Document) OperationCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Paths {
		n += len(p.Operations)
	}
	return n
}

func isMethod(key string) bool {
	for _, m := range Methods {
		if m == key {
			return true
		}
	}
	return false
}

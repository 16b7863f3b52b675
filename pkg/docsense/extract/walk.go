package extract

import (
	"iter"
	"strings"

	"github.com/cognicore/docsense/pkg/docsense/corpus"
	"github.com/cognicore/docsense/pkg/docsense/openapi"
)

// Labeler assigns a category to a fragment.
type Labeler interface {
	Label(f Fragment) string
}

// Walk yields the fragments of doc in traversal order: for every path and
// every operation under it, the operation description, then parameter
// descriptions, then response descriptions. Blank descriptions are skipped.
// Nothing is sorted or deduplicated.
func Walk(doc *openapi.Document) iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		if doc == nil {
			return
		}
		for _, item := range doc.Paths {
			for _, op := range item.Operations {
				if !walkOperation(item.Path, op, yield) {
					return
				}
			}
		}
	}
}

func walkOperation(path string, op openapi.Operation, yield func(Fragment) bool) bool {
	ctx := Context{OperationPath: path, Method: op.Method}

	if !isBlank(op.Description) {
		ctx.Kind = Description
		if !yield(Fragment{Text: op.Description, Context: ctx}) {
			return false
		}
	}

	for _, param := range op.Parameters {
		if isBlank(param.Description) {
			continue
		}
		ctx.Kind = ParameterDescription
		if !yield(Fragment{Text: param.Description, Context: ctx}) {
			return false
		}
	}

	for _, resp := range op.Responses {
		if isBlank(resp.Description) {
			continue
		}
		rc := ctx
		rc.Kind = ResponseDescription
		rc.StatusCode = resp.StatusCode
		if !yield(Fragment{Text: resp.Description, Context: rc}) {
			return false
		}
	}
	return true
}

// Records drains Walk(doc), labels each fragment and returns the corpus in
// traversal order.
func Records(doc *openapi.Document, labeler Labeler) corpus.Corpus {
	var c corpus.Corpus
	for f := range Walk(doc) {
		// Records never hold blank text.
		if isBlank(f.Text) {
			continue
		}
		c = append(c, corpus.Record{Text: f.Text, Label: labeler.Label(f)})
	}
	return c
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

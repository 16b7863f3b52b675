package openapi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

// maxRefDepth bounds chains of $ref pointing at other $ref nodes.
const maxRefDepth = 32

// ParseFile reads and parses the document at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", internalerr.ErrMalformedDocument, path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a JSON or YAML API specification. JSON input is detected by
// its leading '{' and decoded token by token so key order survives; anything
// else goes through the YAML decoder. Structural problems are reported as
// internalerr.ErrMalformedDocument.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", internalerr.ErrMalformedDocument, err)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var root *yaml.Node
	if looksLikeJSON(data) {
		root, err = decodeJSON(data)
	} else {
		root, err = decodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrMalformedDocument, err)
	}

	p := &parser{root: root}
	return p.document()
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeYAML(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return doc.Content[0], nil
}

type parser struct {
	root *yaml.Node
}

func (p *parser) document() (*Document, error) {
	root := deref(p.root)
	if root.Kind != yaml.MappingNode {
		return nil, malformed("document root must be an object")
	}

	doc := &Document{}
	if v := lookup(root, "openapi"); v != nil {
		doc.Version = scalarOrEmpty(v)
	} else if v := lookup(root, "swagger"); v != nil {
		doc.Version = scalarOrEmpty(v)
	}
	if info := lookup(root, "info"); info != nil && deref(info).Kind == yaml.MappingNode {
		doc.Title = scalarOrEmpty(lookup(deref(info), "title"))
	}

	paths := lookup(root, "paths")
	if paths == nil || isNull(paths) {
		return doc, nil
	}
	paths = deref(paths)
	if paths.Kind != yaml.MappingNode {
		return nil, malformed("paths must be an object")
	}

	for i := 0; i+1 < len(paths.Content); i += 2 {
		key := paths.Content[i].Value
		item, err := p.pathItem(key, paths.Content[i+1])
		if err != nil {
			return nil, err
		}
		doc.Paths = append(doc.Paths, item)
	}
	return doc, nil
}

func (p *parser) pathItem(path string, n *yaml.Node) (PathItem, error) {
	item := PathItem{Path: path}
	n = deref(n)
	if isNull(n) {
		return item, nil
	}
	if n.Kind != yaml.MappingNode {
		return item, malformed("path %s must be an object", path)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		method := strings.ToLower(n.Content[i].Value)
		if !isMethod(method) {
			continue
		}
		op, err := p.operation(path, method, n.Content[i+1])
		if err != nil {
			return item, err
		}
		item.Operations = append(item.Operations, op)
	}
	return item, nil
}

func (p *parser) operation(path, method string, n *yaml.Node) (Operation, error) {
	op := Operation{Method: method}
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		return op, malformed("%s %s must be an object", method, path)
	}

	var err error
	if op.Description, err = scalar(lookup(n, "description"), method, path, "description"); err != nil {
		return op, err
	}
	if op.Summary, err = scalar(lookup(n, "summary"), method, path, "summary"); err != nil {
		return op, err
	}
	if op.OperationID, err = scalar(lookup(n, "operationId"), method, path, "operationId"); err != nil {
		return op, err
	}

	if params := lookup(n, "parameters"); params != nil && !isNull(params) {
		params = deref(params)
		if params.Kind != yaml.SequenceNode {
			return op, malformed("%s %s: parameters must be a list", method, path)
		}
		for _, raw := range params.Content {
			param, err := p.parameter(method, path, raw)
			if err != nil {
				return op, err
			}
			op.Parameters = append(op.Parameters, param)
		}
	}

	if responses := lookup(n, "responses"); responses != nil && !isNull(responses) {
		responses = deref(responses)
		if responses.Kind != yaml.MappingNode {
			return op, malformed("%s %s: responses must be an object", method, path)
		}
		for i := 0; i+1 < len(responses.Content); i += 2 {
			resp, err := p.response(method, path, responses.Content[i].Value, responses.Content[i+1])
			if err != nil {
				return op, err
			}
			op.Responses = append(op.Responses, resp)
		}
	}

	return op, nil
}

func (p *parser) parameter(method, path string, n *yaml.Node) (Parameter, error) {
	var param Parameter
	target, ref, err := p.follow(n)
	if err != nil {
		return param, fmt.Errorf("%s %s parameter: %w", method, path, err)
	}
	param.Ref = ref
	if target == nil {
		return param, nil
	}
	if target.Kind != yaml.MappingNode {
		return param, malformed("%s %s: parameter must be an object", method, path)
	}

	if param.Name, err = scalar(lookup(target, "name"), method, path, "parameter name"); err != nil {
		return param, err
	}
	if param.In, err = scalar(lookup(target, "in"), method, path, "parameter location"); err != nil {
		return param, err
	}
	if param.Description, err = scalar(lookup(target, "description"), method, path, "parameter description"); err != nil {
		return param, err
	}
	return param, nil
}

func (p *parser) response(method, path, status string, n *yaml.Node) (Response, error) {
	resp := Response{StatusCode: status}
	target, ref, err := p.follow(n)
	if err != nil {
		return resp, fmt.Errorf("%s %s response %s: %w", method, path, status, err)
	}
	resp.Ref = ref
	if target == nil || isNull(target) {
		return resp, nil
	}
	if target.Kind != yaml.MappingNode {
		return resp, malformed("%s %s: response %s must be an object", method, path, status)
	}

	resp.Description, err = scalar(lookup(target, "description"), method, path, "response "+status+" description")
	return resp, err
}

// follow resolves local $ref chains. It returns the target node, the first
// reference seen and a nil target for external references, which are kept
// without a description.
func (p *parser) follow(n *yaml.Node) (*yaml.Node, string, error) {
	n = deref(n)
	first := ""
	seen := make(map[string]struct{})

	for depth := 0; ; depth++ {
		if n.Kind != yaml.MappingNode {
			return n, first, nil
		}
		refNode := lookup(n, "$ref")
		if refNode == nil {
			return n, first, nil
		}
		ref := scalarOrEmpty(refNode)
		if first == "" {
			first = ref
		}
		if !strings.HasPrefix(ref, "#") {
			return nil, first, nil
		}
		if _, dup := seen[ref]; dup || depth >= maxRefDepth {
			return nil, first, malformed("reference cycle at %s", ref)
		}
		seen[ref] = struct{}{}

		target, err := p.pointer(ref)
		if err != nil {
			return nil, first, err
		}
		n = target
	}
}

// pointer walks a local JSON pointer ("#/components/parameters/Limit").
func (p *parser) pointer(ref string) (*yaml.Node, error) {
	cur := deref(p.root)
	frag := strings.TrimPrefix(ref, "#")
	if frag == "" {
		return cur, nil
	}
	if !strings.HasPrefix(frag, "/") {
		return nil, malformed("unsupported reference %s", ref)
	}

	for _, tok := range strings.Split(frag[1:], "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		switch cur.Kind {
		case yaml.MappingNode:
			next := lookup(cur, tok)
			if next == nil {
				return nil, malformed("dangling reference %s", ref)
			}
			cur = deref(next)
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(cur.Content) {
				return nil, malformed("dangling reference %s", ref)
			}
			cur = deref(cur.Content[idx])
		default:
			return nil, malformed("dangling reference %s", ref)
		}
	}
	return cur, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", internalerr.ErrMalformedDocument, fmt.Sprintf(format, args...))
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	n = deref(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// scalar reads an optional string field; a non-scalar value is malformed.
func scalar(n *yaml.Node, method, path, field string) (string, error) {
	n = deref(n)
	if isNull(n) {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", malformed("%s %s: %s must be a string", method, path, field)
	}
	return n.Value, nil
}

func scalarOrEmpty(n *yaml.Node) string {
	n = deref(n)
	if isNull(n) || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

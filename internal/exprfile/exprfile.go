// Package exprfile reads and writes expression trees as YAML documents.
//
// A document names the expression, optionally carries default arguments and
// an expected result, and holds the tree under "expr". Every tree node is a
// mapping with exactly one key:
//
//	lit: 5                       Literal
//	arg: 0                       Argument
//	local: 1                     LocalRef
//	add: [a, b, c]               Add, left-folded
//	bind: {init: e, body: e}     Bind
//	assign: {offset: 0, value: e}
//	loop: {cond: e, body: e}     Loop
//	seq: [a, b, c]               Sequence, right-folded
package exprfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/utils"
	"gopkg.in/yaml.v3"
)

var ErrSyntax = errors.New("invalid expression")

// File is a decoded expression document.
type File struct {
	Name   string
	Args   []int64
	Expect *int64
	Expr   ast.Expr
}

type document struct {
	Name   string    `yaml:"name,omitempty"`
	Args   []int64   `yaml:"args,omitempty,flow"`
	Expect *int64    `yaml:"expect,omitempty"`
	Expr   yaml.Node `yaml:"expr"`
}

// Load reads and parses an expression file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes an expression document. The path is used for error messages
// and, when the document has no name, to derive one.
func Parse(data []byte, path string) (*File, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Expr.Kind == 0 {
		return nil, fmt.Errorf("%s: %w: missing expr", path, ErrSyntax)
	}

	d := decoder{path: path}
	expr, err := d.node(&doc.Expr)
	if err != nil {
		return nil, err
	}

	name := doc.Name
	if name == "" {
		name = utils.ExtractExprName(path)
	}
	return &File{Name: name, Args: doc.Args, Expect: doc.Expect, Expr: expr}, nil
}

// ParseExpr decodes a bare expression node, without the document envelope.
func ParseExpr(data []byte) (ast.Expr, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing expression: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrSyntax)
	}
	d := decoder{path: "<expr>"}
	return d.node(root.Content[0])
}

type decoder struct {
	path string
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d:%d: %w: %s", d.path, n.Line, n.Column, ErrSyntax, fmt.Sprintf(format, args...))
}

func (d *decoder) node(n *yaml.Node) (ast.Expr, error) {
	if n.Kind == yaml.AliasNode {
		return d.node(n.Alias)
	}
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping with one key")
	}
	if len(n.Content) != 2 {
		return nil, d.errorf(n, "expected exactly one key, got %d", len(n.Content)/2)
	}

	key, val := n.Content[0], n.Content[1]
	switch key.Value {
	case "lit":
		var v int64
		if err := d.scalar(val, &v); err != nil {
			return nil, err
		}
		return &ast.Literal{Value: v}, nil

	case "arg":
		var i int
		if err := d.scalar(val, &i); err != nil {
			return nil, err
		}
		return &ast.Argument{Index: i}, nil

	case "local":
		var i int
		if err := d.scalar(val, &i); err != nil {
			return nil, err
		}
		return &ast.LocalRef{Offset: i}, nil

	case "add":
		items, err := d.list(val, 2)
		if err != nil {
			return nil, err
		}
		expr := items[0]
		for _, right := range items[1:] {
			expr = &ast.Add{Left: expr, Right: right}
		}
		return expr, nil

	case "seq":
		items, err := d.list(val, 1)
		if err != nil {
			return nil, err
		}
		return ast.Seq(items[0], items[1:]...), nil

	case "bind":
		f, err := d.fields(val, "init", "body")
		if err != nil {
			return nil, err
		}
		init, err := d.node(f["init"])
		if err != nil {
			return nil, err
		}
		body, err := d.node(f["body"])
		if err != nil {
			return nil, err
		}
		return &ast.Bind{Init: init, Body: body}, nil

	case "assign":
		f, err := d.fields(val, "offset", "value")
		if err != nil {
			return nil, err
		}
		var offset int
		if err := d.scalar(f["offset"], &offset); err != nil {
			return nil, err
		}
		value, err := d.node(f["value"])
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Offset: offset, Value: value}, nil

	case "loop":
		f, err := d.fields(val, "cond", "body")
		if err != nil {
			return nil, err
		}
		cond, err := d.node(f["cond"])
		if err != nil {
			return nil, err
		}
		body, err := d.node(f["body"])
		if err != nil {
			return nil, err
		}
		return &ast.Loop{Cond: cond, Body: body}, nil

	default:
		return nil, d.errorf(key, "unknown node %q", key.Value)
	}
}

func (d *decoder) scalar(n *yaml.Node, out interface{}) error {
	if n.Kind != yaml.ScalarNode {
		return d.errorf(n, "expected an integer")
	}
	// Decode truncates floats into integer targets.
	if n.ShortTag() != "!!int" {
		return d.errorf(n, "expected an integer, got %q", n.Value)
	}
	if err := n.Decode(out); err != nil {
		return d.errorf(n, "expected an integer, got %q", n.Value)
	}
	return nil
}

func (d *decoder) list(n *yaml.Node, min int) ([]ast.Expr, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list")
	}
	if len(n.Content) < min {
		return nil, d.errorf(n, "expected at least %d items, got %d", min, len(n.Content))
	}
	items := make([]ast.Expr, 0, len(n.Content))
	for _, c := range n.Content {
		e, err := d.node(c)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

// fields returns the values of a mapping that must contain exactly the
// given keys.
func (d *decoder) fields(n *yaml.Node, keys ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping with keys %s", strings.Join(keys, ", "))
	}
	out := make(map[string]*yaml.Node, len(keys))
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		known := false
		for _, want := range keys {
			if k.Value == want {
				known = true
			}
		}
		if !known {
			return nil, d.errorf(k, "unexpected key %q", k.Value)
		}
		if _, dup := out[k.Value]; dup {
			return nil, d.errorf(k, "duplicate key %q", k.Value)
		}
		out[k.Value] = n.Content[i+1]
	}
	for _, want := range keys {
		if out[want] == nil {
			return nil, d.errorf(n, "missing key %q", want)
		}
	}
	return out, nil
}

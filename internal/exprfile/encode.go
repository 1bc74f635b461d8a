package exprfile

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/funvibe/tapevm/internal/ast"
	"gopkg.in/yaml.v3"
)

// Marshal encodes f as a YAML document that Parse reads back into an equal
// tree. Sequence chains and left-nested additions are flattened into lists;
// leaves are written in flow style.
func Marshal(f *File) ([]byte, error) {
	expr, err := encodeNode(f.Expr)
	if err != nil {
		return nil, err
	}
	doc := document{Name: f.Name, Args: f.Args, Expect: f.Expect, Expr: *expr}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", f.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes f to path.
func Save(path string, f *File) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func encodeNode(e ast.Expr) (*yaml.Node, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return leaf("lit", n.Value), nil
	case *ast.Argument:
		return leaf("arg", int64(n.Index)), nil
	case *ast.LocalRef:
		return leaf("local", int64(n.Offset)), nil

	case *ast.Add:
		var operands []ast.Expr
		var cur ast.Expr = n
		for {
			add, ok := cur.(*ast.Add)
			if !ok {
				break
			}
			operands = append(operands, add.Right)
			cur = add.Left
		}
		operands = append(operands, cur)
		for i, j := 0, len(operands)-1; i < j; i, j = i+1, j-1 {
			operands[i], operands[j] = operands[j], operands[i]
		}
		return list("add", operands)

	case *ast.Sequence:
		var items []ast.Expr
		var cur ast.Expr = n
		for {
			s, ok := cur.(*ast.Sequence)
			if !ok {
				break
			}
			items = append(items, s.First)
			cur = s.Second
		}
		items = append(items, cur)
		return list("seq", items)

	case *ast.Bind:
		return record("bind", "init", n.Init, "body", n.Body)
	case *ast.Loop:
		return record("loop", "cond", n.Cond, "body", n.Body)

	case *ast.Assign:
		value, err := encodeNode(n.Value)
		if err != nil {
			return nil, err
		}
		inner := mapping(scalar("offset"), intScalar(int64(n.Offset)), scalar("value"), value)
		return mapping(scalar("assign"), inner), nil

	case nil:
		return nil, fmt.Errorf("%w: nil expression", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: unknown expression type %T", ErrSyntax, e)
	}
}

func leaf(key string, v int64) *yaml.Node {
	n := mapping(scalar(key), intScalar(v))
	n.Style = yaml.FlowStyle
	return n
}

func list(key string, items []ast.Expr) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range items {
		c, err := encodeNode(item)
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, c)
	}
	return mapping(scalar(key), seq), nil
}

func record(key, k1 string, v1 ast.Expr, k2 string, v2 ast.Expr) (*yaml.Node, error) {
	a, err := encodeNode(v1)
	if err != nil {
		return nil, err
	}
	b, err := encodeNode(v2)
	if err != nil {
		return nil, err
	}
	return mapping(scalar(key), mapping(scalar(k1), a, scalar(k2), b)), nil
}

func mapping(content ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: content}
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intScalar(v int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
}

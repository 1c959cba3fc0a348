package expr

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON tree codec
// ============================================================

// ToJSON encodes e as a tree of {"type": ...} objects.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// Tree returns the JSON-ready tree of e.
func Tree(e Expr) map[string]interface{} { return e.toJSON() }

// FromJSON decodes a tree produced by ToJSON, or a generic JSON object
// decoded into map[string]interface{}.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}
	node := treeNode{typ: typ, data: data}

	switch typ {
	case "num":
		val, err := node.str("value")
		if err != nil {
			return nil, err
		}
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, fmt.Errorf("num: invalid value %q", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := node.str("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "const":
		name, err := node.str("name")
		if err != nil {
			return nil, err
		}
		c, ok := constants[name]
		if !ok {
			return nil, fmt.Errorf("const: unknown constant %q", name)
		}
		return c, nil

	case "add":
		terms, err := node.children("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := node.children("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := node.child("base")
		if err != nil {
			return nil, err
		}
		exp, err := node.child("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := node.str("name")
		if err != nil {
			return nil, err
		}
		if _, known := floatFuncs[name]; !known && name != "abs" {
			return nil, fmt.Errorf("func: unknown function %q", name)
		}
		arg, err := node.child("arg")
		if err != nil {
			return nil, err
		}
		return funcOf(name, arg).Simplify(), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

type treeNode struct {
	typ  string
	data map[string]interface{}
}

func (n treeNode) str(field string) (string, error) {
	v, ok := n.data[field]
	if !ok {
		return "", fmt.Errorf("%s: missing %q", n.typ, field)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: %q must be a non-empty string", n.typ, field)
	}
	return s, nil
}

func (n treeNode) child(field string) (Expr, error) {
	v, ok := n.data[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q", n.typ, field)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an object", n.typ, field)
	}
	e, err := FromJSON(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", n.typ, field, err)
	}
	return e, nil
}

func (n treeNode) children(field string) ([]Expr, error) {
	v, ok := n.data[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q", n.typ, field)
	}
	raw, ok := v.([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%s: %q must be a non-empty array", n.typ, field)
	}
	out := make([]Expr, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q[%d] must be an object", n.typ, field, i)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d]: %w", n.typ, field, i, err)
		}
		out[i] = e
	}
	return out, nil
}

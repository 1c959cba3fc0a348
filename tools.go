package numethods

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// ============================================================
// Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// toolParams reads typed values out of a decoded JSON params object.
type toolParams map[string]interface{}

// function returns the expression given either as "formula" text or as an
// "expr" tree.
func (p toolParams) function() (expr.Expr, error) {
	if raw, ok := p["expr"]; ok {
		tree, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param expr must be an expression object")
		}
		return expr.FromJSON(tree)
	}
	text, err := p.str("formula")
	if err != nil {
		return nil, err
	}
	return expr.Parse(text)
}

func (p toolParams) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

// number accepts a JSON number or a numeric string such as "1/3". JSON
// numbers are read through their shortest decimal text, so 0.001 is exactly
// 1/1000 in rational mode.
func (p toolParams) number(key string, m num.Mode) (num.Value, error) {
	v, ok := p[key]
	if !ok {
		return num.Value{}, fmt.Errorf("missing param: %s", key)
	}
	var text string
	switch t := v.(type) {
	case float64:
		text = strconv.FormatFloat(t, 'g', -1, 64)
	case json.Number:
		text = t.String()
	case string:
		text = t
	default:
		return num.Value{}, fmt.Errorf("param %s must be a number or numeric string", key)
	}
	n, err := num.Parse(text, m)
	if err != nil {
		return num.Value{}, fmt.Errorf("param %s: %w", key, err)
	}
	return n, nil
}

func (p toolParams) flag(key string) (bool, error) {
	v, ok := p[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("param %s must be a boolean", key)
	}
	return b, nil
}

func (p toolParams) options() (Options, error) {
	var opts Options
	var err error
	if opts.Rational, err = p.flag("rational"); err != nil {
		return opts, err
	}
	if opts.Swap, err = p.flag("swap"); err != nil {
		return opts, err
	}
	if opts.Trace, err = p.flag("iterated_data"); err != nil {
		return opts, err
	}
	return opts, nil
}

func respondRoot[S any](f expr.Expr, res Result[S], err error) ToolResponse {
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	return ToolResponse{Result: res, LaTeX: f.LaTeX(), String: res.Root.String()}
}

func failed(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

// HandleToolCall dispatches one JSON tool request to the solvers and the
// expression kernel. It never panics on malformed params; errors are
// reported in ToolResponse.Error.
func HandleToolCall(req ToolRequest) ToolResponse {
	return HandleToolCallWith(req, Options{})
}

// HandleToolCallWith is HandleToolCall with base supplying the Logger and
// MaxBits of every solver call. The request params still choose Rational,
// Swap and Trace.
func HandleToolCallWith(req ToolRequest, base Options) ToolResponse {
	p := toolParams(req.Params)

	switch req.Tool {
	case "bisection", "false_position", "fixed_point", "newton_raphson":
		f, err := p.function()
		if err != nil {
			return failed(err)
		}
		opts, err := p.options()
		if err != nil {
			return failed(err)
		}
		opts.Logger, opts.MaxBits = base.Logger, base.MaxBits
		return solveTool(req.Tool, f, p, opts)

	case "parse":
		f, err := p.function()
		if err != nil {
			return failed(err)
		}
		return ToolResponse{Result: expr.Tree(f), LaTeX: f.LaTeX(), String: f.String()}

	case "diff":
		f, err := p.function()
		if err != nil {
			return failed(err)
		}
		v := Variable
		if _, ok := p["var"]; ok {
			if v, err = p.str("var"); err != nil {
				return failed(err)
			}
		}
		d := expr.Diff(f, v)
		return ToolResponse{Result: expr.Tree(d), LaTeX: d.LaTeX(), String: d.String()}

	case "estimate_iterations":
		a, err := p.number("a", num.ModeRational)
		if err != nil {
			return failed(err)
		}
		b, err := p.number("b", num.ModeRational)
		if err != nil {
			return failed(err)
		}
		tol, err := p.number("error", num.ModeRational)
		if err != nil {
			return failed(err)
		}
		n := EstimateBisectionIterations(a, b, tol)
		return ToolResponse{Result: n, String: strconv.Itoa(n)}

	case "tool_spec":
		return ToolResponse{Result: json.RawMessage(ToolSpec())}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func solveTool(tool string, f expr.Expr, p toolParams, opts Options) ToolResponse {
	m := opts.mode()
	switch tool {
	case "bisection", "false_position":
		a, err := p.number("a", m)
		if err != nil {
			return failed(err)
		}
		b, err := p.number("b", m)
		if err != nil {
			return failed(err)
		}
		if tool == "false_position" {
			res, err := FalsePositionExpr(f, a, b, opts)
			return respondRoot(f, res, err)
		}
		tol, err := p.number("error", m)
		if err != nil {
			return failed(err)
		}
		res, err := BisectionExpr(f, a, b, tol, opts)
		return respondRoot(f, res, err)
	}

	n, err := p.number("n", m)
	if err != nil {
		return failed(err)
	}
	if tool == "fixed_point" {
		res, err := FixedPointExpr(f, n, opts)
		return respondRoot(f, res, err)
	}
	res, err := NewtonRaphsonExpr(f, n, opts)
	return respondRoot(f, res, err)
}

// ToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func ToolSpec() string {
	formula := map[string]string{
		"formula":       "string",
		"expr":          "object",
		"rational":      "boolean",
		"iterated_data": "boolean",
	}
	bracket := merge(formula, map[string]string{"a": "number", "b": "number", "swap": "boolean"})
	open := merge(formula, map[string]string{"n": "number"})

	tools := []map[string]interface{}{
		ts("bisection", "Bisection root finding on [a, b] until b - c <= error", []string{"formula", "a", "b", "error"}, merge(bracket, map[string]string{"error": "number"})),
		ts("false_position", "False-position (regula falsi) root finding on [a, b]", []string{"formula", "a", "b"}, bracket),
		ts("fixed_point", "Fixed-point iteration x = f(x) from n; formula must already be rearranged", []string{"formula", "n"}, open),
		ts("newton_raphson", "Newton-Raphson iteration from n using the symbolic derivative", []string{"formula", "n"}, open),
		ts("parse", "Parse formula text into an expression tree", []string{"formula"}, map[string]string{"formula": "string"}),
		ts("diff", "Symbolic derivative d/dvar (var defaults to x)", []string{"formula"}, map[string]string{"formula": "string", "expr": "object", "var": "string"}),
		ts("estimate_iterations", "Bisection iterations needed to reach error on [a, b]", []string{"a", "b", "error"}, map[string]string{"a": "number", "b": "number", "error": "number"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func merge(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

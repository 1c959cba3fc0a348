package render

import (
	"errors"
	"fmt"

	"github.com/njchilds90/numethods"
	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// Failure explains a solver error to the user. Machine formats get
// {"error": "..."} instead.
func (p *Printer) Failure(err error) error {
	if p.opts.Format != FormatTable {
		return p.encode(struct {
			Error string `json:"error" yaml:"error"`
		}{err.Error()})
	}

	var same *numethods.SameSignError
	var limit *numethods.IterationLimitError
	var syntax *expr.SyntaxError
	switch {
	case errors.As(err, &same):
		fmt.Fprintf(p.w, "f(a) = %s, f(b) = %s\n", p.val(same.FA), p.val(same.FB))
		fmt.Fprintln(p.w, p.bad.Sprint("f(a) and f(b) should have different signs"))
		fmt.Fprintln(p.w, "Try again with different values...")
	case errors.Is(err, numethods.ErrInvalidInterval):
		fmt.Fprintln(p.w, p.bad.Sprint("a must not be greater than b"))
		fmt.Fprintln(p.w, "Try again with a different interval, or pass --swap.")
	case errors.As(err, &limit):
		fmt.Fprintln(p.w, p.bad.Sprintf("Since I[%d] >= %d, it is assumed to be an indefinite function.", numethods.MaxIterations, numethods.MaxIterations))
		fmt.Fprintf(p.w, "%s stopped after %d iterations.\n", limit.Method, limit.Iterations)
		fmt.Fprintln(p.w, "Resulting in no definite or approximate root.")
		fmt.Fprintln(p.w, "Re-check the function if it is correct.")
	case errors.As(err, &syntax):
		fmt.Fprintln(p.w, p.bad.Sprintf("Syntax error at column %d: %s", syntax.Pos, syntax.Msg))
	case errors.Is(err, num.ErrDivisionByZero):
		fmt.Fprintln(p.w, p.bad.Sprint("ERROR: ", err))
		fmt.Fprintln(p.w, "Try a different starting value.")
	default:
		fmt.Fprintln(p.w, p.bad.Sprint("ERROR: ", err))
	}
	return nil
}

// Package expression assembles recognized characters into an equation string
// and grades it.
package expression

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// ErrParseOrEval is wrapped into Result.Reason when an expression has the
// wrong shape or its left side cannot be evaluated.
var ErrParseOrEval = errors.New("expression parse/eval failed")

// Status is the three-way verdict.
type Status int

const (
	StatusInvalidFormat Status = iota
	StatusCorrect
	StatusIncorrect
)

func (s Status) String() string {
	switch s {
	case StatusCorrect:
		return "CORRECT"
	case StatusIncorrect:
		return "INCORRECT"
	default:
		return "INVALID_FORMAT"
	}
}

// Result is the outcome of validating one expression.
type Result struct {
	Expression string
	Status     Status
	// Expected is the value of the left side; only set when HasExpected.
	Expected    float64
	HasExpected bool
	// Reason explains an INVALID_FORMAT verdict and wraps ErrParseOrEval.
	Reason error
}

// Graded reports whether the expression was well formed.
func (r Result) Graded() bool {
	return r.Status == StatusCorrect || r.Status == StatusIncorrect
}

// Message returns the verdict text shown to the student.
func (r Result) Message() string {
	switch r.Status {
	case StatusCorrect:
		return "✅ Correct: " + r.Expression
	case StatusIncorrect:
		return "❌ Incorrect. The answer was: " + FormatNumber(r.Expected)
	default:
		return "⚠️ No valid exercise detected."
	}
}

// FormatNumber prints v without a trailing ".0" for integers.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Assemble concatenates characters in segment order. Empty entries are
// symbols that could not be classified and contribute nothing.
func Assemble(chars []string) string {
	var b strings.Builder
	for _, c := range chars {
		b.WriteString(c)
	}
	return b.String()
}

var (
	leftChars   = regexp.MustCompile(`^[0-9+\-*/.]+$`)
	rightNumber = regexp.MustCompile(`^-?([0-9]+\.?[0-9]*|\.[0-9]+)$`)

	// govaluate reads a run of operator characters as one token, so "7--3"
	// would not parse. Spaced out, the second sign becomes a negation.
	spaceOperators = strings.NewReplacer("+", " + ", "-", " - ", "*", " * ", "/", " / ")
)

// Validate grades "<left>=<right>". The left side is evaluated with the usual
// precedence and compared with the right side by exact float equality.
func Validate(expr string) Result {
	res := Result{Expression: expr, Status: StatusInvalidFormat}

	if !strings.Contains(expr, "=") {
		res.Reason = fmt.Errorf("%w: no '='", ErrParseOrEval)
		return res
	}
	if !strings.ContainsAny(expr, "0123456789") {
		res.Reason = fmt.Errorf("%w: no digit", ErrParseOrEval)
		return res
	}
	parts := strings.Split(expr, "=")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		res.Reason = fmt.Errorf("%w: want exactly one '=' between two non-empty sides", ErrParseOrEval)
		return res
	}
	left, right := parts[0], parts[1]

	if !rightNumber.MatchString(right) {
		res.Reason = fmt.Errorf("%w: answer %q is not a number", ErrParseOrEval, right)
		return res
	}
	answer, err := strconv.ParseFloat(right, 64)
	if err != nil {
		res.Reason = fmt.Errorf("%w: answer %q: %v", ErrParseOrEval, right, err)
		return res
	}

	expected, err := Evaluate(left)
	if err != nil {
		res.Reason = err
		return res
	}

	res.Expected = expected
	res.HasExpected = true
	if expected == answer {
		res.Status = StatusCorrect
	} else {
		res.Status = StatusIncorrect
	}
	return res
}

// Evaluate computes an arithmetic expression over + - * / and decimal
// numbers. A sign directly after an operator negates the next operand, as in
// "7--3" or "2*-3". Division by zero and any other non-finite result are
// errors.
func Evaluate(left string) (float64, error) {
	if !leftChars.MatchString(left) || strings.Contains(left, "**") {
		return 0, fmt.Errorf("%w: unsupported characters in %q", ErrParseOrEval, left)
	}

	eval, err := govaluate.NewEvaluableExpression(spaceOperators.Replace(left))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrParseOrEval, left, err)
	}
	out, err := eval.Evaluate(nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrParseOrEval, left, err)
	}
	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %q evaluates to %T", ErrParseOrEval, left, out)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrParseOrEval, left)
	}
	return v, nil
}

package kitchen

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

const calcAllowed = "0123456789+-*/(). "

var errDivisionByZero = errors.New("division by zero")

// Calculate evaluates a simple arithmetic expression such as "20 + 15 + 8".
//
// Only digits, the four operators, parentheses, dots and spaces are accepted; anything else is
// refused before evaluation. Failures are reported as French text, never as errors, since the
// result goes straight back to the model.
func Calculate(expression string) string {
	for _, c := range expression {
		if !strings.ContainsRune(calcAllowed, c) {
			return "Erreur: Caractères non autorisés dans le calcul."
		}
	}

	v, err := evaluate(expression)
	if err != nil {
		return fmt.Sprintf("Erreur de calcul: %v", err)
	}
	return v
}

func evaluate(expression string) (string, error) {
	program, err := expr.Compile(expression)
	if err != nil {
		return "", err
	}
	out, err := expr.Run(program, nil)
	if err != nil {
		return "", err
	}

	switch n := out.(type) {
	case int:
		return strconv.Itoa(n), nil
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return "", errDivisionByZero
		}
		s := strconv.FormatFloat(n, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s, nil
	default:
		return "", fmt.Errorf("unexpected result %v", out)
	}
}

package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Evaluate computes an infix arithmetic expression with +, -, *, /, %, ^ and
// parentheses. It exists to back the calculator tool; nothing user-facing is
// ever interpolated into it.
func Evaluate(expr string) (string, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", fmt.Errorf("пустое выражение")
	}

	rpn, err := toRPN(tokens)
	if err != nil {
		return "", err
	}

	result, err := evalRPN(rpn)
	if err != nil {
		return "", err
	}

	if result == math.Trunc(result) && math.Abs(result) < 1e15 {
		return strconv.FormatFloat(result, 'f', 0, 64), nil
	}
	return strconv.FormatFloat(result, 'g', -1, 64), nil
}

// negOp marks unary negation in the token stream.
const negOp = 'n'

type token struct {
	op    rune    // 0 for numbers
	value float64 // set when op == 0
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			v, err := strconv.ParseFloat(string(runes[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("неверное число %q", string(runes[i:j]))
			}
			tokens = append(tokens, token{value: v})
			i = j
		case strings.ContainsRune("+-*/%^()", r):
			// A minus at the start of a (sub)expression is negation.
			if r == '-' && (len(tokens) == 0 || tokens[len(tokens)-1].op != 0 && tokens[len(tokens)-1].op != ')') {
				tokens = append(tokens, token{op: negOp})
			} else {
				tokens = append(tokens, token{op: r})
			}
			i++
		default:
			return nil, fmt.Errorf("недопустимый символ %q", r)
		}
	}
	return tokens, nil
}

func precedence(op rune) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/', '%':
		return 2
	// negOp shares the exponent level: both are right-associative, which
	// parses -2^2 as -(2^2) and 2^-3 as 2^(-3).
	case '^', negOp:
		return 3
	}
	return 0
}

// rightAssoc operators pop only strictly higher precedence from the stack.
func rightAssoc(op rune) bool {
	return op == '^' || op == negOp
}

func toRPN(tokens []token) ([]token, error) {
	var output, stack []token

	for _, t := range tokens {
		switch {
		case t.op == 0:
			output = append(output, t)
		case t.op == '(':
			stack = append(stack, t)
		case t.op == ')':
			for len(stack) > 0 && stack[len(stack)-1].op != '(' {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, fmt.Errorf("непарная скобка")
			}
			stack = stack[:len(stack)-1]
		default:
			for len(stack) > 0 && stack[len(stack)-1].op != '(' &&
				(precedence(stack[len(stack)-1].op) > precedence(t.op) ||
					precedence(stack[len(stack)-1].op) == precedence(t.op) && !rightAssoc(t.op)) {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, t)
		}
	}

	for len(stack) > 0 {
		if stack[len(stack)-1].op == '(' {
			return nil, fmt.Errorf("непарная скобка")
		}
		output = append(output, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return output, nil
}

func evalRPN(rpn []token) (float64, error) {
	var stack []float64

	for _, t := range rpn {
		if t.op == 0 {
			stack = append(stack, t.value)
			continue
		}
		if t.op == negOp {
			if len(stack) < 1 {
				return 0, fmt.Errorf("неполное выражение")
			}
			stack[len(stack)-1] = -stack[len(stack)-1]
			continue
		}
		if len(stack) < 2 {
			return 0, fmt.Errorf("неполное выражение")
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		var v float64
		switch t.op {
		case '+':
			v = a + b
		case '-':
			v = a - b
		case '*':
			v = a * b
		case '/':
			if b == 0 {
				return 0, fmt.Errorf("деление на ноль")
			}
			v = a / b
		case '%':
			if b == 0 {
				return 0, fmt.Errorf("деление на ноль")
			}
			v = math.Mod(a, b)
		case '^':
			v = math.Pow(a, b)
		}
		stack = append(stack, v)
	}

	if len(stack) != 1 {
		return 0, fmt.Errorf("неполное выражение")
	}
	return stack[0], nil
}

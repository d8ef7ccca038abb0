// lexical.go — shared token recognizers.
//
// The declarator, arithmetic, relational, loop and list engines all classify
// raw parameter tokens; the recognizers live here so each engine applies the
// same rules. Two numeric recognizers exist on purpose: the declarator form
// (sign, digits, at most one dot) and the list form, which additionally
// requires at least one digit and reports whether a dot was seen.
package verlight

import "strconv"

// isNumeric implements the declarator-style recognizer: non-empty, optional
// leading sign at index 0, at most one '.', every other byte an ASCII digit,
// and the token is not a lone sign or dot.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		case c == '-' || c == '+':
			if i != 0 {
				return false
			}
		case c < '0' || c > '9':
			return false
		}
	}
	return s != "+" && s != "-" && s != "."
}

// isNumericDot is the list-engine recognizer: like isNumeric but a digit is
// required, and the presence of a decimal point is reported.
func isNumericDot(s string) (ok, hasDot bool) {
	if s == "" {
		return false, false
	}
	start := 0
	if s[0] == '+' || s[0] == '-' {
		start = 1
	}
	dots := 0
	hasDigit := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.':
			dots++
			hasDot = true
			if dots > 1 {
				return false, hasDot
			}
		case c >= '0' && c <= '9':
			hasDigit = true
		default:
			return false, hasDot
		}
	}
	if !hasDigit {
		return false, hasDot
	}
	return s != "+" && s != "-" && s != ".", hasDot
}

// intPrefix parses a numeric token the way stoll does: conversion stops at
// the decimal point, so "3.7" yields 3 and "-3.7" yields -3.
func intPrefix(s string) (int64, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			s = s[:i]
			break
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isOctDigit(c byte) bool {
	return c >= '0' && c <= '7'
}

// isCharLiteral reports whether value is a well-formed single-quoted
// character literal: 'a', a two-byte escape like '\n', '\xHH' with exactly
// two hex digits, or '\ooo' with one to three octal digits.
func isCharLiteral(value string) bool {
	if len(value) < 2 || value[0] != '\'' || value[len(value)-1] != '\'' {
		return false
	}
	inner := value[1 : len(value)-1]
	if inner == "" {
		return false
	}
	if inner[0] != '\\' {
		return len(inner) == 1
	}
	if len(inner) == 2 {
		switch inner[1] {
		case 'n', 't', 'r', 'b', 'f', 'v', '\\', '\'', '"', '0':
			return true
		}
	}
	if len(inner) == 4 && inner[1] == 'x' {
		return isHexDigit(inner[2]) && isHexDigit(inner[3])
	}
	if len(inner) >= 2 && len(inner) <= 4 && isOctDigit(inner[1]) {
		for i := 2; i < len(inner); i++ {
			if !isOctDigit(inner[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// parseCharBody decodes the contents of a character literal (the part between
// the quotes, already stripped). It handles the escape set, \xHH and octal
// forms; a bare body must be exactly one byte.
func parseCharBody(body string) (byte, error) {
	if body == "" {
		return 0, errf(ErrBadLiteral, "empty char literal")
	}
	if body[0] != '\\' {
		if len(body) != 1 {
			return 0, errf(ErrBadLiteral, "char length must be 1, got %q", body)
		}
		return body[0], nil
	}
	if len(body) == 2 {
		switch body[1] {
		case 'n':
			return '\n', nil
		case 't':
			return '\t', nil
		case 'r':
			return '\r', nil
		case 'b':
			return '\b', nil
		case 'f':
			return '\f', nil
		case 'v':
			return '\v', nil
		case '\\':
			return '\\', nil
		case '\'':
			return '\'', nil
		case '"':
			return '"', nil
		case '0':
			return 0, nil
		}
	}
	if body[1] == 'x' {
		if len(body) != 4 {
			return 0, errf(ErrBadLiteral, "invalid hex escape length in %q", body)
		}
		n, err := strconv.ParseUint(body[2:4], 16, 8)
		if err != nil {
			return 0, errf(ErrBadLiteral, "invalid hex escape %q", body)
		}
		return byte(n), nil
	}
	if isOctDigit(body[1]) {
		if len(body) > 4 {
			return 0, errf(ErrBadLiteral, "octal escape %q has more than three digits", body)
		}
		v, err := strconv.ParseUint(body[1:], 8, 16)
		if err != nil || v > 0xff {
			return 0, errf(ErrBadLiteral, "invalid octal escape %q", body)
		}
		return byte(v), nil
	}
	return 0, errf(ErrBadLiteral, "unknown escape format %q", body)
}

// isQuoted reports whether the token is wrapped in double quotes.
func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// stripEnds removes the first and last byte without inspecting them — the
// declarator engines strip literal wrappers blindly.
func stripEnds(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[1 : len(s)-1]
}

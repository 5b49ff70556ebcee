// Package query compiles keyword roles and hard constraints into the boolean
// full-text expression accepted by the résumé search endpoint.
//
// The compiler never fails: malformed terms are dropped and the result simply
// gets weaker. An empty string means no usable criteria.
package query

import (
	"strings"
	"unicode"
)

const (
	opAnd = " AND "
	opOr  = " OR "
)

// BankTerm is the literal added as a top-level conjunct for bank-only searches.
const BankTerm = "банк"

// FormatTerm renders a single free-text term.
//
//   - surrounding whitespace is trimmed; a blank term is dropped (ok == false)
//   - "a/b/c" becomes "(a AND b AND c)", every piece formatted recursively;
//     empty pieces are dropped and a group with no pieces is dropped
//   - a term with internal whitespace is quoted as a phrase
//   - anything else is returned unchanged
func FormatTerm(term string) (string, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", false
	}

	if strings.Contains(term, "/") {
		pieces := formatAll(strings.Split(term, "/"))
		if len(pieces) == 0 {
			return "", false
		}
		return group(pieces, opAnd), true
	}

	if strings.IndexFunc(term, unicode.IsSpace) >= 0 {
		return `"` + term + `"`, true
	}

	return term, true
}

// formatAll formats every term and drops the ones FormatTerm rejects.
func formatAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if f, ok := FormatTerm(t); ok {
			out = append(out, f)
		}
	}
	return out
}

// group joins formatted terms with op and brackets them. Empty input yields "".
func group(terms []string, op string) string {
	if len(terms) == 0 {
		return ""
	}
	return "(" + strings.Join(terms, op) + ")"
}

// conjoin joins the non-empty clauses with AND.
func conjoin(clauses ...string) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, opAnd)
}

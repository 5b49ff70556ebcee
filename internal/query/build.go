package query

import (
	"fmt"
	"strings"

	"github.com/jonathan/talent-search/internal/types"
)

// Build compiles must-have and optional terms plus hard constraints into one query.
//
// Must-have terms are AND-joined into one bracketed clause, optional terms are
// OR-joined into another. Hard constraints come first, each as its own
// top-level conjunct: the formatted job title, then BankTerm.
//
//	Build([]string{"Python"}, nil, types.Constraints{JobTitle: "Data Engineer"})
//	// "Data Engineer" AND (Python)
func Build(mustHave, optional []string, c types.Constraints) string {
	must := group(formatAll(mustHave), opAnd)
	opt := group(formatAll(optional), opOr)
	return conjoin(append(constraintClauses(c), must, opt)...)
}

// constraintClauses renders the hard constraints in their fixed order.
func constraintClauses(c types.Constraints) []string {
	clauses := make([]string, 0, 2)
	if title, ok := FormatTerm(c.JobTitle); ok {
		clauses = append(clauses, title)
	}
	if c.BankOnly {
		clauses = append(clauses, BankTerm)
	}
	return clauses
}

// Mode selects how the legacy roles are combined.
type Mode string

// Legacy combination modes.
const (
	// ModeStrict: must_have AND-group, technologies OR-group, domain OR-group, all conjoined.
	ModeStrict Mode = "strict"
	// ModeMedium: must_have AND-group conjoined with one OR-group over technologies and domain.
	ModeMedium Mode = "medium"
	// ModeBroad: one OR-group over must_have, technologies and domain.
	ModeBroad Mode = "broad"
)

// DefaultMode is the mode the recruiter search form preselects.
const DefaultMode = ModeMedium

// ParseMode accepts the English mode names and the labels of the recruiter UI.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium", "средний":
		return ModeMedium, nil
	case "strict", "строгий":
		return ModeStrict, nil
	case "broad", "обширный":
		return ModeBroad, nil
	default:
		return "", fmt.Errorf("unknown search mode %q (want strict, medium or broad)", s)
	}
}

// BuildLegacy compiles the four-role keyword structure.
//
// Hard constraints come first. The mode-dependent AI clauses are then wrapped
// in a single bracketed conjunct so they cannot bind to the constraints, and
// NOT (<negatives OR-joined>) is always the last conjunct.
func BuildLegacy(kw types.LegacyKeywordSet, mode Mode, c types.Constraints) string {
	must := formatAll(kw.MustHave)
	tech := formatAll(kw.Technologies)
	domain := formatAll(kw.Domain)
	negative := formatAll(kw.NegativeKeywords)

	var ai []string
	switch mode {
	case ModeStrict:
		ai = []string{group(must, opAnd), group(tech, opOr), group(domain, opOr)}
	case ModeBroad:
		all := make([]string, 0, len(must)+len(tech)+len(domain))
		all = append(all, must...)
		all = append(all, tech...)
		all = append(all, domain...)
		ai = []string{group(all, opOr)}
	default:
		combined := make([]string, 0, len(tech)+len(domain))
		combined = append(combined, tech...)
		combined = append(combined, domain...)
		ai = []string{group(must, opAnd), group(combined, opOr)}
	}

	aiClause := ""
	if inner := conjoin(ai...); inner != "" {
		aiClause = "(" + inner + ")"
	}

	negClause := ""
	if len(negative) > 0 {
		negClause = "NOT " + group(negative, opOr)
	}

	return conjoin(append(constraintClauses(c), aiClause, negClause)...)
}

// Plan holds the two query variants of the two-stage retrieval strategy.
type Plan struct {
	Ideal   string `json:"ideal"`   // must-have + optional + constraints
	Relaxed string `json:"relaxed"` // must-have + constraints; optional terms dropped
}

// PlanFor compiles both the ideal and the relaxed query for a keyword set.
func PlanFor(kw types.KeywordSet, c types.Constraints) Plan {
	return Plan{
		Ideal:   Build(kw.MustHave, kw.Optional, c),
		Relaxed: Build(kw.MustHave, nil, c),
	}
}

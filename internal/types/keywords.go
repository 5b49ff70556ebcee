// Package types provides type definitions for structured data used throughout the talent-search system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"slices"
	"strings"
)

// KeywordSet is the canonical two-role keyword structure produced by the extractor
// and consumed by the query compiler.
type KeywordSet struct {
	MustHave []string `json:"must_have"` // AND-critical terms
	Optional []string `json:"optional"`  // OR-supportive terms
}

// LegacyKeywordSet is the four-role structure of the earlier extractor prompt.
// It feeds the same compiler primitives through query.BuildLegacy.
type LegacyKeywordSet struct {
	MustHave         []string `json:"must_have"`
	Technologies     []string `json:"technologies"`
	Domain           []string `json:"domain"`
	JobTitles        []string `json:"job_titles,omitempty"`
	NegativeKeywords []string `json:"negative_keywords"`
}

// Clone returns a copy that shares no backing arrays with k.
func (k KeywordSet) Clone() KeywordSet {
	return KeywordSet{
		MustHave: slices.Clone(k.MustHave),
		Optional: slices.Clone(k.Optional),
	}
}

// Clone returns a copy that shares no backing arrays with k.
func (k LegacyKeywordSet) Clone() LegacyKeywordSet {
	return LegacyKeywordSet{
		MustHave:         slices.Clone(k.MustHave),
		Technologies:     slices.Clone(k.Technologies),
		Domain:           slices.Clone(k.Domain),
		JobTitles:        slices.Clone(k.JobTitles),
		NegativeKeywords: slices.Clone(k.NegativeKeywords),
	}
}

// IsEmpty reports whether no role carries a non-blank term.
func (k KeywordSet) IsEmpty() bool {
	return !hasTerm(k.MustHave) && !hasTerm(k.Optional)
}

// Normalize trims every term, drops blanks and removes case-insensitive duplicates
// while preserving first-seen order.
func (k KeywordSet) Normalize() KeywordSet {
	return KeywordSet{
		MustHave: NormalizeTerms(k.MustHave),
		Optional: NormalizeTerms(k.Optional),
	}
}

// IsEmpty reports whether no positive role carries a non-blank term.
// Negative keywords alone never make a searchable set.
func (k LegacyKeywordSet) IsEmpty() bool {
	return !hasTerm(k.MustHave) && !hasTerm(k.Technologies) && !hasTerm(k.Domain)
}

// Normalize applies NormalizeTerms to every role.
func (k LegacyKeywordSet) Normalize() LegacyKeywordSet {
	return LegacyKeywordSet{
		MustHave:         NormalizeTerms(k.MustHave),
		Technologies:     NormalizeTerms(k.Technologies),
		Domain:           NormalizeTerms(k.Domain),
		JobTitles:        NormalizeTerms(k.JobTitles),
		NegativeKeywords: NormalizeTerms(k.NegativeKeywords),
	}
}

// ToKeywordSet collapses the legacy roles into the canonical shape:
// technologies and domain become optional terms, negatives are dropped.
func (k LegacyKeywordSet) ToKeywordSet() KeywordSet {
	optional := make([]string, 0, len(k.Technologies)+len(k.Domain))
	optional = append(optional, k.Technologies...)
	optional = append(optional, k.Domain...)
	return KeywordSet{
		MustHave: append([]string(nil), k.MustHave...),
		Optional: optional,
	}.Normalize()
}

// NormalizeTerms trims terms, drops blanks and case-insensitive duplicates.
func NormalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, term)
	}
	return out
}

func hasTerm(terms []string) bool {
	for _, t := range terms {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/keywords"
	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/types"
)

// keywordFlags are the comma-separated term lists shared by search and query.
type keywordFlags struct {
	must     string
	optional string
	tech     string
	domain   string
	exclude  string
	legacy   bool
	mode     string
}

func (k *keywordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.must, "must", "", "Comma-separated must-have terms")
	cmd.Flags().StringVar(&k.optional, "optional", "", "Comma-separated optional terms")
	cmd.Flags().StringVar(&k.tech, "tech", "", "Comma-separated technologies (legacy)")
	cmd.Flags().StringVar(&k.domain, "domain", "", "Comma-separated domain terms (legacy)")
	cmd.Flags().StringVar(&k.exclude, "exclude", "", "Comma-separated negative keywords (legacy)")
	cmd.Flags().BoolVar(&k.legacy, "legacy", false, "Use the four-role legacy keyword structure")
	cmd.Flags().StringVar(&k.mode, "mode", string(query.DefaultMode), "Legacy combination mode: strict, medium or broad")
}

// set returns the current keyword set from the flags.
func (k *keywordFlags) set() types.KeywordSet {
	return types.KeywordSet{
		MustHave: keywords.ParseList(k.must),
		Optional: keywords.ParseList(k.optional),
	}.Normalize()
}

// legacySet returns the legacy keyword set. --optional doubles as --tech when
// --tech is not given.
func (k *keywordFlags) legacySet() types.LegacyKeywordSet {
	tech := keywords.ParseList(k.tech)
	if len(tech) == 0 {
		tech = keywords.ParseList(k.optional)
	}
	return types.LegacyKeywordSet{
		MustHave:         keywords.ParseList(k.must),
		Technologies:     tech,
		Domain:           keywords.ParseList(k.domain),
		NegativeKeywords: keywords.ParseList(k.exclude),
	}.Normalize()
}

// empty reports whether the flags carry no positive term for the selected
// structure. Negative keywords alone do not count.
func (k *keywordFlags) empty() bool {
	if k.legacy {
		return k.legacySet().IsEmpty()
	}
	return k.set().IsEmpty()
}

// filterFlags map onto types.SearchFilters.
type filterFlags struct {
	title      string
	bank       bool
	area       []string
	experience []string
	employment []string
	education  []string
	language   []string
	status     []string
	perPage    int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Job title the candidates must match")
	cmd.Flags().BoolVar(&f.bank, "bank", false, "Only candidates with banking experience")
	cmd.Flags().StringSliceVar(&f.area, "area", nil, "Area ids or names")
	cmd.Flags().StringSliceVar(&f.experience, "experience", nil, "Experience ids (noExperience, between1And3, between3And6, moreThan6)")
	cmd.Flags().StringSliceVar(&f.employment, "employment", nil, "Employment ids")
	cmd.Flags().StringSliceVar(&f.education, "education", nil, "Education level ids")
	cmd.Flags().StringSliceVar(&f.language, "language", nil, "Language ids")
	cmd.Flags().StringSliceVar(&f.status, "job-search-status", nil, "Job search status ids")
	cmd.Flags().IntVar(&f.perPage, "per-page", 0, "Results per page (default from config)")
}

// constraints returns the hard constraints given by --title and --bank.
func (f *filterFlags) constraints() types.Constraints {
	return types.SearchFilters{UserJobTitle: f.title, BankOnly: f.bank}.Constraints()
}

// noCriteria reports whether neither terms nor constraints were given.
func noCriteria(k *keywordFlags, f *filterFlags) bool {
	return k.empty() && f.constraints() == (types.Constraints{})
}

// filters validates and returns the filter set. defaultPerPage applies when
// --per-page is not set.
func (f *filterFlags) filters(defaultPerPage int) (types.SearchFilters, error) {
	perPage := f.perPage
	if perPage == 0 {
		perPage = defaultPerPage
	}
	sf := types.SearchFilters{
		Area:            f.area,
		Employment:      f.employment,
		Experience:      f.experience,
		EducationLevels: f.education,
		Language:        f.language,
		JobSearchStatus: f.status,
		PerPage:         perPage,
		UserJobTitle:    f.title,
		BankOnly:        f.bank,
	}
	if err := sf.Validate(); err != nil {
		return types.SearchFilters{}, fmt.Errorf("invalid filters: %w", err)
	}
	return sf, nil
}

// Package observability provides formatted console output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/talent-search/internal/query"
	"github.com/jonathan/talent-search/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes.
func pad(s string, n int) string {
	if count := utf8.RuneCountInString(s); count < n {
		return s + strings.Repeat(" ", n-count)
	}
	return s
}

func writeList(sb *strings.Builder, label string, terms []string) {
	if len(terms) == 0 {
		sb.WriteString(fmt.Sprintf("%s: (none)\n", label))
		return
	}
	sb.WriteString(fmt.Sprintf("%s:\n", label))
	for _, term := range terms {
		sb.WriteString(fmt.Sprintf("  • %s\n", term))
	}
}

// PrintKeywords outputs an extracted keyword set.
func (p *Printer) PrintKeywords(kw *types.KeywordSet) {
	if kw == nil {
		return
	}

	var sb strings.Builder
	writeList(&sb, "Must have (AND)", kw.MustHave)
	sb.WriteString("\n")
	writeList(&sb, "Optional (OR)", kw.Optional)

	p.printBox("EXTRACTED KEYWORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLegacyKeywords outputs a four-role keyword set.
func (p *Printer) PrintLegacyKeywords(kw *types.LegacyKeywordSet) {
	if kw == nil {
		return
	}

	var sb strings.Builder
	writeList(&sb, "Must have", kw.MustHave)
	writeList(&sb, "Technologies", kw.Technologies)
	writeList(&sb, "Domain", kw.Domain)
	writeList(&sb, "Job titles", kw.JobTitles)
	writeList(&sb, "Exclude", kw.NegativeKeywords)

	p.printBox("EXTRACTED KEYWORDS (LEGACY)", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQueryPlan outputs the ideal and relaxed queries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintQueryPlan(plan query.Plan) {
	if plan.Ideal == "" {
		fmt.Fprintln(p.out, "No valid search criteria.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Ideal:\n")
	sb.WriteString(plan.Ideal)
	sb.WriteString("\n\nRelaxed (first page fallback):\n")
	if plan.Relaxed == "" {
		sb.WriteString("(none)")
	} else {
		sb.WriteString(plan.Relaxed)
	}
	p.printBox("SEARCH QUERY", sb.String())
}

// PrintResults outputs one page of search results with pagination state.
func (p *Printer) PrintResults(env *types.ResultEnvelope, page, perPage int) {
	if env == nil {
		return
	}

	totalPages := types.TotalPages(env.Found, perPage)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found: %d   Page %d of %d\n", env.Found, page+1, max(totalPages, 1)))

	for i, item := range env.Items {
		s := item.Data.Summary()
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%d. %s", page*perPage+i+1, orDash(s.Title)))
		if s.Age != nil {
			sb.WriteString(fmt.Sprintf(", %d", *s.Age))
		}
		sb.WriteString("\n")
		if company, position := s.LastJob(); company != "" || position != "" {
			sb.WriteString(fmt.Sprintf("   Last job: %s, %s\n", orDash(position), orDash(company)))
		}
		if snippet := PlainSnippet(s.SnippetHTML()); snippet != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", snippet))
		}
		if s.AlternateURL != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", s.AlternateURL))
		}
	}

	nav := []string{}
	if types.HasPrev(page) {
		nav = append(nav, fmt.Sprintf("prev: --page %d", page-1))
	}
	if types.HasNext(page, totalPages) {
		nav = append(nav, fmt.Sprintf("next: --page %d", page+1))
	}
	if len(nav) > 0 {
		sb.WriteString("\n" + strings.Join(nav, "   "))
	}

	p.printBox("CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVacancies outputs the user's vacancies and the rest of the company's.
func (p *Printer) PrintVacancies(mine, others []types.Vacancy) {
	var sb strings.Builder
	writeVacancies(&sb, "My vacancies", mine)
	sb.WriteString("\n")
	writeVacancies(&sb, "Other company vacancies", others)
	p.printBox("ACTIVE VACANCIES", strings.TrimSuffix(sb.String(), "\n"))
}

func writeVacancies(sb *strings.Builder, label string, vacancies []types.Vacancy) {
	sb.WriteString(fmt.Sprintf("%s (%d):\n", label, len(vacancies)))
	for _, v := range vacancies {
		sb.WriteString(fmt.Sprintf("  [%s] %s (%s)\n", v.ID, v.Name, orDash(v.Area.Name)))
	}
}

// PrintAreas outputs the region dictionary.
func (p *Printer) PrintAreas(areas []types.Area) {
	var sb strings.Builder
	for _, a := range areas {
		sb.WriteString(fmt.Sprintf("%-8s %s\n", a.ID, a.Name))
	}
	p.printBox(fmt.Sprintf("AREAS (%d)", len(areas)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVacancy outputs a vacancy header and its cleaned description.
func (p *Printer) PrintVacancy(v *types.Vacancy, description string) {
	if v == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", v.Name))
	sb.WriteString(fmt.Sprintf("Area: %s   Experience: %s\n", orDash(v.Area.Name), orDash(v.ExperienceName())))
	if description != "" {
		sb.WriteString("\n")
		sb.WriteString(truncate(description, (boxWidth-4)*maxItemsToShow))
	}
	p.printBox("VACANCY "+v.ID, strings.TrimSuffix(wrap(sb.String(), boxWidth-4), "\n"))
}

// wrap breaks lines longer than width at spaces.
func wrap(s string, width int) string {
	var out strings.Builder
	for _, line := range strings.Split(s, "\n") {
		count := 0
		for i, word := range strings.Fields(line) {
			n := utf8.RuneCountInString(word)
			if i > 0 && count+1+n > width {
				out.WriteString("\n")
				count = 0
			} else if i > 0 {
				out.WriteString(" ")
				count++
			}
			out.WriteString(word)
			count += n
		}
		out.WriteString("\n")
	}
	return out.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

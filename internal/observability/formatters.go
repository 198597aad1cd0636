// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most limit runes, ending in "..." when cut
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func writeMore(sb *strings.Builder, total, shown int, noun string) {
	if total <= shown {
		return
	}
	if noun != "" {
		noun = " " + noun
	}
	sb.WriteString(fmt.Sprintf("  ... and %d more%s\n", total-shown, noun))
}

// PrintRequirements outputs a human-readable summary of the parsed requirements.
func (p *Printer) PrintRequirements(reqs *types.ParsedRequirements) {
	if reqs == nil {
		return
	}

	var sb strings.Builder
	if reqs.Domain != nil {
		sb.WriteString(fmt.Sprintf("Domain:    %s\n", *reqs.Domain))
	}
	if reqs.SeniorityLevel != nil {
		sb.WriteString(fmt.Sprintf("Seniority: %s\n", *reqs.SeniorityLevel))
	}
	if len(reqs.Themes) > 0 {
		sb.WriteString(fmt.Sprintf("Themes:    %s\n", strings.Join(reqs.Themes, ", ")))
	}
	sb.WriteString("\n")

	byImportance := map[types.Importance][]types.Requirement{}
	for _, r := range reqs.Requirements {
		byImportance[r.Importance] = append(byImportance[r.Importance], r)
	}

	sections := []struct {
		title      string
		importance types.Importance
	}{
		{"Must-have:", types.ImportanceMustHave},
		{"Nice-to-have:", types.ImportanceNiceToHave},
		{"Implicit:", types.ImportanceImplicit},
	}
	for _, section := range sections {
		items := byImportance[section.importance]
		if len(items) == 0 {
			continue
		}
		sb.WriteString(section.title + "\n")
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", items[i].Text, items[i].Type))
		}
		writeMore(&sb, len(items), count, "")
	}

	if len(reqs.Requirements) == 0 {
		sb.WriteString("No requirements extracted\n")
	}

	p.printBox("PARSED REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSelection outputs the selected vault content with scores and coverage.
func (p *Printer) PrintSelection(result *types.SelectionResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Coverage: %.0f%%  Selected: %d items\n\n",
		result.CoverageScore*100, len(result.SelectedItems)))

	groups := []struct {
		title string
		items []types.ScoredItem
	}{
		{"Jobs:", result.GroupedItems.Jobs},
		{"Accomplishments:", result.GroupedItems.Accomplishments},
		{"Skills:", result.GroupedItems.Skills},
		{"Education:", result.GroupedItems.Education},
	}
	for _, group := range groups {
		if len(group.items) == 0 {
			continue
		}
		sb.WriteString(group.title + "\n")
		count := min(len(group.items), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := group.items[i]
			sb.WriteString(fmt.Sprintf("  %.2f  %s\n", item.RelevanceScore, firstLine(item.Item.Content)))
		}
		writeMore(&sb, len(group.items), count, "")
	}

	if len(result.UnmatchedRequirements) > 0 {
		sb.WriteString("Unmatched:\n")
		count := min(len(result.UnmatchedRequirements), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", result.UnmatchedRequirements[i].Text))
		}
		writeMore(&sb, len(result.UnmatchedRequirements), count, "")
	}

	for _, w := range result.Warnings {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
	}

	p.printBox("SELECTED CONTENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCommitteeRound outputs one round's scores and the Critic's top challenges.
func (p *Printer) PrintCommitteeRound(round types.CommitteeRound) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Advocate fit: %.2f  Critic fit: %.2f\n", round.Advocate.FitScore, round.Critic.FitScore))
	if round.Number > 1 {
		sb.WriteString(fmt.Sprintf("Improvement:  %+.2f\n", round.Improvement))
	}

	if len(round.Critic.Challenges) > 0 {
		sb.WriteString("\nChallenges:\n")
		count := min(len(round.Critic.Challenges), 3)
		for i := 0; i < count; i++ {
			c := round.Critic.Challenges[i]
			sb.WriteString(fmt.Sprintf("  ⚠ [%s] %s\n", c.Severity, c.Claim))
		}
		writeMore(&sb, len(round.Critic.Challenges), count, "challenges")
	}

	if len(round.Critic.GenuineGaps) > 0 {
		sb.WriteString("\nGaps:\n")
		count := min(len(round.Critic.GenuineGaps), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", round.Critic.GenuineGaps[i].Requirement))
		}
		writeMore(&sb, len(round.Critic.GenuineGaps), count, "gaps")
	}

	p.printBox(fmt.Sprintf("COMMITTEE ROUND %d", round.Number), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCommitteeResult outputs the committee's fit trajectory and why it stopped.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCommitteeResult(result *types.CommitteeResult) {
	if result == nil {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "COMMITTEE SKIPPED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	history := make([]string, len(result.FitHistory))
	for i, fit := range result.FitHistory {
		history[i] = fmt.Sprintf("%.2f", fit)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rounds:      %d\n", result.Rounds))
	sb.WriteString(fmt.Sprintf("Fit:         %.2f -> %.2f (%+.2f)\n", result.InitialFit, result.FinalFit, result.Improvement))
	sb.WriteString(fmt.Sprintf("History:     %s\n", strings.Join(history, " → ")))
	sb.WriteString(fmt.Sprintf("Stopped by:  %s", result.TerminationReason))

	p.printBox("COMMITTEE RESULT", sb.String())
}

// PrintMetrics outputs the pipeline run summary.
func (p *Printer) PrintMetrics(m types.PipelineMetrics) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Vault items considered: %d\n", m.VaultItemsConsidered))
	sb.WriteString(fmt.Sprintf("Items selected:         %d\n", m.ItemsSelected))
	sb.WriteString(fmt.Sprintf("Requirement coverage:   %.0f%%\n", m.RequirementsCoverage*100))
	sb.WriteString(fmt.Sprintf("Fit:                    %.2f -> %.2f\n", m.InitialFitEstimate, m.FinalFit))
	sb.WriteString(fmt.Sprintf("Processing time:        %dms", m.ProcessingTimeMs))

	p.printBox("RUN SUMMARY", sb.String())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

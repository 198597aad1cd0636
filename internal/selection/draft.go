package selection

import (
	"strings"
	"time"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// RenderDraft assembles a markdown resume from grouped items. It is a pure
// function of its inputs; vaultItems supplies job attribute items.
func RenderDraft(g *types.GroupedItems, vaultItems []types.ContentItem, now time.Time) string {
	attrs := jobAttributes(vaultItems)
	var sb strings.Builder
	sb.WriteString("# Resume\n")

	if len(g.Jobs) > 0 {
		sb.WriteString("\n## Experience\n")
		children := make(map[string][]types.ScoredItem)
		for _, a := range g.Accomplishments {
			if a.Item.ParentID != "" {
				children[a.Item.ParentID] = append(children[a.Item.ParentID], a)
			}
		}
		for _, job := range g.Jobs {
			writeJob(&sb, &job.Item, attrs[job.Item.ID], now)
			for _, a := range children[job.Item.ID] {
				sb.WriteString("- " + oneLine(a.Item.Content) + "\n")
			}
		}
	}

	jobIDs := make(map[string]bool, len(g.Jobs))
	for _, job := range g.Jobs {
		jobIDs[job.Item.ID] = true
	}
	var other []string
	for _, a := range g.Accomplishments {
		if a.Item.ParentID == "" || !jobIDs[a.Item.ParentID] {
			other = append(other, oneLine(a.Item.Content))
		}
	}
	if len(other) > 0 {
		sb.WriteString("\n## Additional Accomplishments\n")
		for _, line := range other {
			sb.WriteString("- " + line + "\n")
		}
	}

	if len(g.Skills) > 0 {
		names := make([]string, 0, len(g.Skills))
		for _, s := range g.Skills {
			names = append(names, oneLine(s.Item.Content))
		}
		sb.WriteString("\n## Skills\n")
		sb.WriteString(strings.Join(names, ", ") + "\n")
	}

	if len(g.Education) > 0 {
		sb.WriteString("\n## Education\n")
		for _, e := range g.Education {
			sb.WriteString("- " + educationLine(&e.Item) + "\n")
		}
	}

	return sb.String()
}

type jobAttrs struct {
	title, location, duration string
}

func jobAttributes(items []types.ContentItem) map[string]jobAttrs {
	out := make(map[string]jobAttrs)
	for _, item := range items {
		if !item.Type.IsJobAttribute() || item.ParentID == "" {
			continue
		}
		a := out[item.ParentID]
		value := oneLine(item.Content)
		switch item.Type {
		case types.ContentJobTitle:
			a.title = value
		case types.ContentJobLocation:
			a.location = value
		case types.ContentJobDuration:
			a.duration = value
		}
		out[item.ParentID] = a
	}
	return out
}

func writeJob(sb *strings.Builder, job *types.ContentItem, attrs jobAttrs, now time.Time) {
	md, _ := job.JobMetadata()

	title := firstNonEmpty(md.Title, attrs.title)
	content := oneLine(job.Content)
	heading := firstNonEmpty(title, content)
	if md.Company != "" && !strings.Contains(heading, md.Company) {
		heading += " | " + md.Company
	}
	sb.WriteString("\n### " + heading + "\n")

	var details []string
	if location := firstNonEmpty(md.Location, attrs.location); location != "" {
		details = append(details, location)
	}
	if dates := formatDates(job, now); dates != "" {
		details = append(details, dates)
	} else if attrs.duration != "" {
		details = append(details, attrs.duration)
	}
	if len(details) > 0 {
		sb.WriteString("*" + strings.Join(details, " | ") + "*\n")
	}
	if title != "" && content != "" && content != title {
		sb.WriteString(content + "\n")
	}
}

func formatDates(item *types.ContentItem, now time.Time) string {
	start, end := item.DateRange(now)
	if start.IsZero() && end.IsZero() {
		return ""
	}
	md, _ := item.JobMetadata()

	endLabel := ""
	switch {
	case md.Current || strings.EqualFold(strings.TrimSpace(md.EndDate), "present") || end.Equal(now):
		endLabel = "Present"
	case !end.IsZero():
		endLabel = end.Format("Jan 2006")
	}

	if start.IsZero() {
		return endLabel
	}
	if endLabel == "" {
		return start.Format("Jan 2006")
	}
	return start.Format("Jan 2006") + " to " + endLabel
}

func educationLine(item *types.ContentItem) string {
	content := oneLine(item.Content)
	md, err := item.EducationMetadata()
	if err != nil || md.Institution == "" || strings.Contains(content, md.Institution) {
		return content
	}
	return content + ", " + md.Institution
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

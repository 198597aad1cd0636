package parsing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"aws":        "AWS",
	"gcp":        "GCP",
	"sql":        "SQL",
	"ml":         "Machine Learning",
	"c#":         "C#",
	"c++":        "C++",
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	upper := strings.ToUpper(normalized)
	singleWord := !strings.Contains(normalized, " ")

	switch {
	case normalized == upper && utf8.RuneCountInString(normalized) > 1 && singleWord:
		// All-caps single words that aren't known acronyms
		return capitalizeFirst(lower)
	case normalized != upper && normalized != lower:
		// Mixed case is intentional
		return normalized
	case normalized == lower && singleWord:
		return capitalizeFirst(normalized)
	}
	return normalized
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// importanceRank orders importance levels for merging duplicates
var importanceRank = map[types.Importance]int{
	types.ImportanceMustHave:   3,
	types.ImportanceNiceToHave: 2,
	types.ImportanceImplicit:   1,
}

// NormalizeRequirements trims and canonicalizes requirement text, fills
// unknown labels, and merges case-insensitive duplicates keeping the
// strongest importance
func NormalizeRequirements(reqs []types.Requirement) []types.Requirement {
	if len(reqs) == 0 {
		return []types.Requirement{}
	}

	normalized := make([]types.Requirement, 0, len(reqs))
	seen := make(map[string]int)

	for _, req := range reqs {
		text := strings.Join(strings.Fields(req.Text), " ")
		if text == "" {
			continue
		}

		reqType := normalizeRequirementType(req.Type)
		if reqType == types.RequirementSkill {
			text = NormalizeSkillName(text)
		}

		importance := normalizeImportance(req.Importance)
		key := strings.ToLower(text)
		if idx, exists := seen[key]; exists {
			if importanceRank[importance] > importanceRank[normalized[idx].Importance] {
				normalized[idx].Importance = importance
			}
			continue
		}

		normalized = append(normalized, types.Requirement{
			Text:       text,
			Type:       reqType,
			Importance: importance,
		})
		seen[key] = len(normalized) - 1
	}

	return normalized
}

func normalizeRequirementType(t types.RequirementType) types.RequirementType {
	value := strings.ToLower(strings.TrimSpace(string(t)))
	value = strings.NewReplacer("_", "-", " ", "-").Replace(value)

	switch types.RequirementType(value) {
	case types.RequirementSkill, types.RequirementExperience, types.RequirementEducation,
		types.RequirementSoftSkill, types.RequirementDomainKnowledge:
		return types.RequirementType(value)
	case "softskill":
		return types.RequirementSoftSkill
	case "domain", "domainknowledge":
		return types.RequirementDomainKnowledge
	default:
		return types.RequirementSkill
	}
}

func normalizeImportance(i types.Importance) types.Importance {
	value := strings.ToLower(strings.TrimSpace(string(i)))
	value = strings.NewReplacer("_", "-", " ", "-").Replace(value)

	switch types.Importance(value) {
	case types.ImportanceMustHave, types.ImportanceNiceToHave, types.ImportanceImplicit:
		return types.Importance(value)
	case "required", "musthave":
		return types.ImportanceMustHave
	case "preferred", "nicetohave", "bonus":
		return types.ImportanceNiceToHave
	default:
		return types.ImportanceNiceToHave
	}
}

// normalizeOptional returns nil for blank or "null"-like strings
func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	switch strings.ToLower(trimmed) {
	case "", "null", "none", "n/a", "unknown":
		return nil
	}
	return &trimmed
}

// normalizeThemes trims themes and drops blanks and case-insensitive duplicates
func normalizeThemes(themes []string) []string {
	out := make([]string, 0, len(themes))
	seen := make(map[string]bool)
	for _, theme := range themes {
		theme = strings.TrimSpace(theme)
		key := strings.ToLower(theme)
		if theme == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, theme)
	}
	return out
}

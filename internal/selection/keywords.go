package selection

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// stopwords are dropped before keyword matching
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "into": true, "is": true, "it": true, "its": true, "of": true,
	"on": true, "or": true, "our": true, "the": true, "their": true, "to": true,
	"with": true, "within": true, "we": true, "you": true, "your": true, "will": true,
	"plus": true, "etc": true, "using": true, "use": true, "strong": true,
	"ability": true, "able": true, "good": true, "excellent": true, "solid": true,
	"proven": true, "knowledge": true, "understanding": true, "familiarity": true,
	"proficiency": true, "proficient": true, "skill": true, "skills": true,
	"work": true, "working": true, "including": true, "related": true, "least": true,
	"more": true, "than": true, "based": true,
}

// canonicalTerms folds inflections and synonyms onto one keyword
var canonicalTerms = map[string]string{
	"led": "lead", "leads": "lead", "leading": "lead", "leader": "lead",
	"leaders": "lead", "leadership": "lead",
	"managed": "manage", "manages": "manage", "managing": "manage",
	"management": "manage", "manager": "manage", "managers": "manage",
	"mentored": "mentor", "mentoring": "mentor", "mentorship": "mentor", "mentors": "mentor",
	"built": "build", "building": "build", "builds": "build",
	"designed": "design", "designing": "design",
	"developed": "develop", "developing": "develop", "development": "develop",
	"developer": "develop", "developers": "develop",
	"engineered": "engineer", "engineering": "engineer", "engineers": "engineer",
	"architected": "architect", "architecture": "architect",
	"collaborated": "collaborate", "collaboration": "collaborate", "collaborative": "collaborate",
	"communicated": "communicate", "communication": "communicate",
	"years": "year", "yrs": "year", "yr": "year",
	"golang": "go", "k8s": "kubernetes", "js": "javascript", "ts": "typescript",
	"postgres": "postgresql", "nodejs": "node.js", "reactjs": "react",
	"bachelors": "bachelor", "bachelor's": "bachelor",
	"masters": "master", "master's": "master", "degrees": "degree",
}

// tokenize splits text into lowercase word tokens. '+', '#' and inner '.'
// stay part of a token so "c++", "c#" and "node.js" survive.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '\'')
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// canonical maps a token to its matching key, or "" when it carries no signal
func canonical(token string) string {
	if mapped, ok := canonicalTerms[token]; ok {
		return stem(mapped)
	}
	if stopwords[token] || isNumeric(token) || (len(token) < 2 && token != "c" && token != "r") {
		return ""
	}
	return stem(token)
}

// stem strips common English suffixes. It is applied to both sides of a
// comparison, so it only needs to be consistent.
func stem(token string) string {
	switch {
	case len(token) > 5 && strings.HasSuffix(token, "ing"):
		return token[:len(token)-3]
	case len(token) > 4 && strings.HasSuffix(token, "ed"):
		return token[:len(token)-2]
	case len(token) > 4 && strings.HasSuffix(token, "ies"):
		return token[:len(token)-3] + "y"
	case len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss"):
		return token[:len(token)-1]
	}
	return token
}

func isNumeric(token string) bool {
	token = strings.TrimRight(token, "+")
	if token == "" {
		return true
	}
	for _, r := range token {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return true
}

// keywordSet returns the distinct canonical keywords of text
func keywordSet(texts ...string) map[string]bool {
	set := make(map[string]bool)
	for _, text := range texts {
		for _, token := range tokenize(text) {
			if key := canonical(token); key != "" {
				set[key] = true
			}
		}
	}
	return set
}

// sortedKeys returns the set's members in lexical order
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// itemKeywords collects keywords from an item's content, tags and metadata
func itemKeywords(item *types.ContentItem) map[string]bool {
	texts := []string{item.Content}
	texts = append(texts, item.Tags...)

	keys := make([]string, 0, len(item.Metadata))
	for k := range item.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := item.Metadata[k].(type) {
		case string:
			texts = append(texts, v)
		case []any:
			for _, elem := range v {
				if s, ok := elem.(string); ok {
					texts = append(texts, s)
				}
			}
		case []string:
			texts = append(texts, v...)
		case fmt.Stringer:
			texts = append(texts, v.String())
		}
	}
	return keywordSet(texts...)
}

// compatibility is how well a content type can evidence a requirement type.
// A missing pair means the type cannot satisfy the requirement.
var compatibility = map[types.RequirementType]map[types.ContentType]float64{
	types.RequirementSkill: {
		types.ContentSkill:          1.0,
		types.ContentAccomplishment: 0.9,
		types.ContentJobEntry:       0.8,
		types.ContentCertification:  0.8,
		types.ContentEducation:      0.5,
	},
	types.RequirementExperience: {
		types.ContentJobEntry:       1.0,
		types.ContentAccomplishment: 1.0,
		types.ContentSkill:          0.6,
		types.ContentCertification:  0.4,
		types.ContentEducation:      0.3,
	},
	types.RequirementEducation: {
		types.ContentEducation:     1.0,
		types.ContentCertification: 0.8,
	},
	types.RequirementSoftSkill: {
		types.ContentAccomplishment: 1.0,
		types.ContentJobEntry:       0.8,
		types.ContentSkill:          0.7,
		types.ContentEducation:      0.2,
		types.ContentCertification:  0.2,
	},
	types.RequirementDomainKnowledge: {
		types.ContentJobEntry:       1.0,
		types.ContentAccomplishment: 1.0,
		types.ContentSkill:          0.8,
		types.ContentEducation:      0.7,
		types.ContentCertification:  0.7,
	},
}

// Compatibility returns the type-appropriateness factor in [0,1]
func Compatibility(reqType types.RequirementType, contentType types.ContentType) float64 {
	return compatibility[reqType][contentType]
}

// importanceWeights weight requirements when aggregating
var importanceWeights = map[types.Importance]float64{
	types.ImportanceMustHave:   1.0,
	types.ImportanceNiceToHave: 0.6,
	types.ImportanceImplicit:   0.4,
}

func importanceWeight(i types.Importance) float64 {
	if w, ok := importanceWeights[i]; ok {
		return w
	}
	return importanceWeights[types.ImportanceNiceToHave]
}

// requirementMatch is the lexical match of one item against one
// requirement: matched keyword fraction times type compatibility
func requirementMatch(itemKeys, reqKeys map[string]bool, reqType types.RequirementType, contentType types.ContentType) float64 {
	if len(reqKeys) == 0 {
		return 0
	}
	compat := Compatibility(reqType, contentType)
	if compat == 0 {
		return 0
	}

	hits := 0
	for k := range reqKeys {
		if itemKeys[k] {
			hits++
		}
	}
	return float64(hits) / float64(len(reqKeys)) * compat
}

// MatchThreshold is the lexical match at which a requirement counts as covered
const MatchThreshold = 0.5

// MatchRequirement returns the lexical match of item against req
func MatchRequirement(item *types.ContentItem, req types.Requirement) float64 {
	return requirementMatch(itemKeywords(item), keywordSet(req.Text), req.Type, item.Type)
}

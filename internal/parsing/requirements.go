// Package parsing turns job postings into structured, weighted requirements
// using one completion call.
package parsing

import (
	"context"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// requirementsTemperature keeps extraction close to deterministic
const requirementsTemperature = 0.1

// ParseRequirements extracts ParsedRequirements from a job posting with one
// standard-tier completion. Gateway errors are returned wrapped in
// APICallError; unparseable output in ParseError wrapping the
// MalformedResponseError.
func ParseRequirements(ctx context.Context, client llm.Completer, job *types.JobPosting) (*types.ParsedRequirements, error) {
	if job.IsEmpty() {
		return nil, &llm.InvalidRequestError{Message: "job posting has no text"}
	}

	jobText, err := BuildJobText(job)
	if err != nil {
		return nil, err
	}

	temperature := requirementsTemperature
	req := llm.UserPrompt(
		prompts.MustGet("requirements.json", "system"),
		prompts.Format(prompts.MustGet("requirements.json", "user"), map[string]string{"JobText": jobText}),
		llm.TierStandard,
	)
	req.Temperature = &temperature

	resp, err := client.Complete(ctx, req)
	if err != nil {
		return nil, &APICallError{Message: "failed to extract requirements", Cause: err}
	}

	var raw types.ParsedRequirements
	if err := llm.ParseJSONResponse(resp.Content, &raw); err != nil {
		return nil, &ParseError{Message: "failed to parse requirements JSON", Cause: err}
	}

	return &types.ParsedRequirements{
		Themes:         normalizeThemes(raw.Themes),
		Domain:         normalizeOptional(raw.Domain),
		SeniorityLevel: normalizeOptional(raw.SeniorityLevel),
		Requirements:   NormalizeRequirements(raw.Requirements),
	}, nil
}

// BuildJobText renders a posting as the plain text handed to the model.
// HTML in the description is flattened.
func BuildJobText(job *types.JobPosting) (string, error) {
	var sb strings.Builder

	if title := strings.TrimSpace(job.Title); title != "" {
		sb.WriteString("Title: " + title + "\n")
	}
	if company := strings.TrimSpace(job.Company); company != "" {
		sb.WriteString("Company: " + company + "\n")
	}

	description, err := CleanHTML(job.Description)
	if err != nil {
		return "", &ParseError{Message: "failed to clean job description", Cause: err}
	}
	if description != "" {
		sb.WriteString("\nDescription:\n" + description + "\n")
	}

	writeList(&sb, "Requirements", job.Requirements)
	writeList(&sb, "Qualifications", job.Qualifications)

	return strings.TrimSpace(sb.String()), nil
}

func writeList(sb *strings.Builder, heading string, items []string) {
	wrote := false
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !wrote {
			sb.WriteString("\n" + heading + ":\n")
			wrote = true
		}
		sb.WriteString("- " + item + "\n")
	}
}

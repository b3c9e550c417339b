package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/job_enrichment.md
var enrichmentPromptRaw string

// EnrichmentTemplate is the parsed enrichment prompt. Parsed once at
// package init; reused on every call.
var EnrichmentTemplate = template.Must(template.New("job_enrichment").Parse(enrichmentPromptRaw))

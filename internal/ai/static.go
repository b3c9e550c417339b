package ai

import (
	"context"
	"encoding/json"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// Static is a canned generator for dry runs and tests. It returns the
// same valid enrichment payload for every prompt and consumes no tokens.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) Generate(_ context.Context, _ string) (string, model.Usage, error) {
	payload, _ := json.Marshal(model.Enrichment{
		OneLiner: "Placeholder summary generated without an AI call.",
		Snippet:  "This record was processed in dry-run mode; no text-generation request was made and no tokens were consumed.",
		Bullets:  []string{"Dry-run output", "No provider call made"},
	})
	return string(payload), model.Usage{}, nil
}

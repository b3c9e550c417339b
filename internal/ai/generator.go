// Package ai holds the text-generation providers used by the enrichment
// batch. Providers return raw model output plus token accounting; schema
// validation happens in the caller.
package ai

import (
	"context"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// TextGenerator sends a prompt to a text-generation backend and returns
// the raw response content with its token usage.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, model.Usage, error)
}

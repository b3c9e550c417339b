package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"
)

// enrichmentSchema is the JSON Schema enforced server-side via OpenAI
// structured outputs. The schema matches model.Enrichment exactly so the
// response can be parsed directly; length bounds are still validated by
// the caller since the schema only constrains shape.
var enrichmentSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"one_liner": map[string]any{"type": "string"},
		"snippet":   map[string]any{"type": "string"},
		"bullets": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": 2,
			"maxItems": 4,
		},
	},
	"required": []string{"one_liner", "snippet", "bullets"},
}

// OpenAI calls an OpenAI-compatible /chat/completions endpoint with
// structured outputs.
type OpenAI struct {
	baseURL      string
	apiKey       string
	model        string
	maxOutTokens int
	httpClient   *http.Client
}

// NewOpenAI creates a generator targeting the given API base URL.
func NewOpenAI(baseURL, apiKey, modelName string, maxOutTokens int, httpClient *http.Client) *OpenAI {
	if maxOutTokens <= 0 {
		maxOutTokens = 1024
	}
	return &OpenAI{
		baseURL:      baseURL,
		apiKey:       apiKey,
		model:        modelName,
		maxOutTokens: maxOutTokens,
		httpClient:   httpClient,
	}
}

// chatRequest mirrors the /chat/completions request body.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    int            `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string         `json:"type"`
	JSONSchema jsonSchemaSpec `json:"json_schema"`
}

type jsonSchemaSpec struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

// chatResponse mirrors the relevant fields of the response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends prompt to the API and returns the message content, which
// structured outputs guarantees is JSON conforming to enrichmentSchema.
// Rate-limit and server errors come back as *model.HTTPError so callers
// can retry with the right schedule.
func (p *OpenAI) Generate(ctx context.Context, prompt string) (string, model.Usage, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You write tight, factual job summaries for a job board. Never invent details absent from the posting."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   p.maxOutTokens,
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaSpec{
				Name:   "job_enrichment",
				Schema: enrichmentSchema,
			},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", model.Usage{}, fmt.Errorf("marshal llm request: %w", err)
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", model.Usage{}, fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", model.Usage{}, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", model.Usage{}, fmt.Errorf("read llm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", model.Usage{}, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfterHeader(resp),
			Err:        fmt.Errorf("llm returned HTTP %d: %s", resp.StatusCode, string(respBytes)),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", model.Usage{}, fmt.Errorf("parse llm response: %w", err)
	}

	usage := model.Usage{
		TokensIn:  chatResp.Usage.PromptTokens,
		TokensOut: chatResp.Usage.CompletionTokens,
	}

	if chatResp.Error != nil {
		return "", usage, fmt.Errorf("llm error (%s): %s", chatResp.Error.Type, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", usage, fmt.Errorf("llm returned no choices")
	}

	return chatResp.Choices[0].Message.Content, usage, nil
}

// retryAfterHeader reads a seconds-valued Retry-After header, zero when
// absent or unparseable.
func retryAfterHeader(resp *http.Response) time.Duration {
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

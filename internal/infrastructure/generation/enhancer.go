package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AssemblyAI/assemblyai-go-sdk"
)

const enhanceInstruction = "Rewrite the following description as a single vivid prompt for an " +
	"image generator producing a photographic background scene. Keep the subject matter, add " +
	"lighting and setting detail, and answer with the prompt only."

type taskFunc func(ctx context.Context, params assemblyai.LeMURTaskParams) (*string, error)

// PromptEnhancer rewrites background prompts through AssemblyAI LeMUR.
type PromptEnhancer struct {
	task      taskFunc
	model     string
	maxTokens int64
	logger    *slog.Logger
}

// NewPromptEnhancer returns an enhancer using apiKey, or nil when apiKey is empty.
func NewPromptEnhancer(apiKey, model string, logger *slog.Logger) *PromptEnhancer {
	if apiKey == "" {
		return nil
	}
	client := assemblyai.NewClient(apiKey)
	return &PromptEnhancer{
		task: func(ctx context.Context, params assemblyai.LeMURTaskParams) (*string, error) {
			resp, err := client.LeMUR.Task(ctx, params)
			if err != nil {
				return nil, err
			}
			return resp.Response, nil
		},
		model:     model,
		maxTokens: 300,
		logger:    logger,
	}
}

// Enhance returns the rewritten prompt. Any failure yields the original prompt.
func (e *PromptEnhancer) Enhance(ctx context.Context, prompt string) string {
	if e == nil || strings.TrimSpace(prompt) == "" {
		return prompt
	}

	var params assemblyai.LeMURTaskParams
	params.Prompt = assemblyai.String(enhanceInstruction)
	params.InputText = assemblyai.String(prompt)
	params.FinalModel = assemblyai.LeMURModel(e.model)
	params.MaxOutputSize = assemblyai.Int64(e.maxTokens)
	params.Temperature = assemblyai.Float64(0.7)

	out, err := e.task(ctx, params)
	if err != nil {
		e.warn("prompt enhancement failed, using raw prompt", "error", err.Error())
		return prompt
	}
	if out == nil || strings.TrimSpace(*out) == "" {
		e.warn("prompt enhancement returned nothing, using raw prompt")
		return prompt
	}
	return strings.Trim(strings.TrimSpace(*out), `"`)
}

func (e *PromptEnhancer) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

// EnhancedGenerator enhances a prompt before delegating to another Generator.
type EnhancedGenerator struct {
	Generator Generator
	Enhancer  *PromptEnhancer
}

func (g EnhancedGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if g.Generator == nil {
		return nil, fmt.Errorf("no generator configured")
	}
	return g.Generator.Generate(ctx, g.Enhancer.Enhance(ctx, prompt))
}

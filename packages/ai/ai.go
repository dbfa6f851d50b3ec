// Package ai narrates enhancement summaries with Gemini.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"devflow-context/packages/config"
	"devflow-context/packages/reports"
)

// ErrNoAPIKey is returned when GEMINI_API_KEY is not set.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY not set in environment")

// GeminiNarrator writes the Codebase Overview section of the agent guide.
type GeminiNarrator struct {
	cfg config.AIConfig
}

// NewGeminiNarrator checks the credentials; the client itself is created per call.
func NewGeminiNarrator(cfg config.AIConfig) (*GeminiNarrator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return &GeminiNarrator{cfg: cfg}, nil
}

// Overview asks the model for a short Markdown description of the summary.
func (g *GeminiNarrator) Overview(ctx context.Context, summary reports.Summary) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.cfg.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.cfg.Model)
	model.SetTemperature(g.cfg.Temperature)
	model.SetTopK(g.cfg.TopK)
	model.SetTopP(g.cfg.TopP)
	model.SetMaxOutputTokens(g.cfg.MaxOutputTokens)

	slog.Info("Sending request to Gemini API", "model", g.cfg.Model, "files", summary.TotalFiles)

	resp, err := model.GenerateContent(ctx, genai.Text(buildOverviewPrompt(summary)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	slog.Info("Successfully generated overview", "contentLength", len(text))
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}

func buildOverviewPrompt(summary reports.Summary) string {
	layers := make([]string, 0, len(summary.LayerDistribution))
	for layer := range summary.LayerDistribution {
		layers = append(layers, layer)
	}
	sort.Strings(layers)

	var layerLines strings.Builder
	for _, layer := range layers {
		fmt.Fprintf(&layerLines, "- %s: %d\n", layer, summary.LayerDistribution[layer])
	}

	return fmt.Sprintf(`You are an expert PHP code analyst. A Laravel codebase was scanned and every file annotated with AGENT_* context comments. Summarize the codebase for an AI agent that is about to work on it.

# Scan Summary
**Files analyzed:** %d

**Complexity:**
- Low: %d
- Medium: %d
- High: %d

**Patterns:**
- Database interactions: %d
- API endpoint handling: %d
- Shopify integration: %d
- Geolocation services: %d

**Layers:**
%s
# Your Task
Write two or three short Markdown paragraphs describing the shape of the codebase, where the risky areas are and which layers an agent should read first. Do not add headers; the text is embedded under an existing section.`,
		summary.TotalFiles,
		summary.ComplexityDistribution.Low,
		summary.ComplexityDistribution.Medium,
		summary.ComplexityDistribution.High,
		summary.PatternUsage.Database,
		summary.PatternUsage.API,
		summary.PatternUsage.Shopify,
		summary.PatternUsage.Geolocation,
		layerLines.String(),
	)
}

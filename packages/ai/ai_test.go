package ai

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflow-context/packages/config"
	"devflow-context/packages/reports"
)

func TestNewGeminiNarrator_RequiresKey(t *testing.T) {
	_, err := NewGeminiNarrator(config.Default().AI)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	cfg := config.Default().AI
	cfg.APIKey = "key"
	n, err := NewGeminiNarrator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", n.cfg.Model)
}

func TestBuildOverviewPrompt(t *testing.T) {
	prompt := buildOverviewPrompt(reports.Summary{
		TotalFiles:             3,
		ComplexityDistribution: reports.ComplexityCounts{Low: 1, Medium: 1, High: 1},
		PatternUsage:           reports.PatternCounts{API: 2, Shopify: 1},
		LayerDistribution:      map[string]int{"Model": 1, "Controller": 2},
	})

	assert.Contains(t, prompt, "**Files analyzed:** 3")
	assert.Contains(t, prompt, "- API endpoint handling: 2\n- Shopify integration: 1\n")
	assert.Contains(t, prompt, "**Layers:**\n- Controller: 2\n- Model: 1\n")
}

func TestResponseText(t *testing.T) {
	_, err := responseText(nil)
	assert.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)

	text, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("  Mostly controllers.\n")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mostly controllers.", text)
}

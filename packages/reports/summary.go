package reports

import (
	"fmt"
	"strings"

	"devflow-context/packages/enhancer"
)

// ComplexityCounts counts analyzed files per complexity bucket.
type ComplexityCounts struct {
	Low    int `json:"Low"`
	Medium int `json:"Medium"`
	High   int `json:"High"`
}

// PatternCounts counts analyzed files per detected pattern.
type PatternCounts struct {
	Database    int `json:"database"`
	API         int `json:"api"`
	Shopify     int `json:"shopify"`
	Geolocation int `json:"geolocation"`
}

// Summary aggregates the per-file analyses of an enhancement pass.
type Summary struct {
	TotalFiles             int              `json:"total_files"`
	ComplexityDistribution ComplexityCounts `json:"complexity_distribution"`
	PatternUsage           PatternCounts    `json:"pattern_usage"`
	LayerDistribution      map[string]int   `json:"layer_distribution"`
}

// Summarize counts complexity, pattern and layer usage across records.
func Summarize(records []enhancer.FileRecord) Summary {
	summary := Summary{
		TotalFiles:        len(records),
		LayerDistribution: make(map[string]int),
	}

	for _, record := range records {
		a := record.Analysis

		switch a.Complexity {
		case enhancer.ComplexityLow:
			summary.ComplexityDistribution.Low++
		case enhancer.ComplexityMedium:
			summary.ComplexityDistribution.Medium++
		case enhancer.ComplexityHigh:
			summary.ComplexityDistribution.High++
		}

		if a.Patterns.Database {
			summary.PatternUsage.Database++
		}
		if a.Patterns.API {
			summary.PatternUsage.API++
		}
		if a.Patterns.Shopify {
			summary.PatternUsage.Shopify++
		}
		if a.Patterns.Geolocation {
			summary.PatternUsage.Geolocation++
		}

		summary.LayerDistribution[a.FileType.Layer]++
	}

	return summary
}

var navigationHints = []struct {
	needle string
	prefix string
}{
	{"Controller", "Start with controllers"},
	{"Model", "Core data models"},
	{"Helper", "Business logic helpers"},
}

// NavigationHints points at up to three analyzed files per entry-point kind.
func NavigationHints(records []enhancer.FileRecord) []string {
	hints := []string{}
	for _, h := range navigationHints {
		var paths []string
		for _, record := range records {
			if strings.Contains(record.Path, h.needle) {
				paths = append(paths, record.Path)
			}
		}
		if len(paths) == 0 {
			continue
		}
		hints = append(hints, fmt.Sprintf("%s: %s", h.prefix, strings.Join(paths[:min(len(paths), 3)], ", ")))
	}
	return hints
}

// IntegrationSummary renders the Markdown bullet list of integration file counts.
func IntegrationSummary(records []enhancer.FileRecord) string {
	var shopify, geo, api int
	for _, record := range records {
		if record.Analysis.Patterns.Shopify {
			shopify++
		}
		if record.Analysis.Patterns.Geolocation {
			geo++
		}
		if record.Analysis.Patterns.API {
			api++
		}
	}

	var lines []string
	if shopify > 0 {
		lines = append(lines, fmt.Sprintf("- **Shopify Integration**: %d files", shopify))
	}
	if geo > 0 {
		lines = append(lines, fmt.Sprintf("- **Geolocation Services**: %d files", geo))
	}
	if api > 0 {
		lines = append(lines, fmt.Sprintf("- **API Endpoints**: %d files", api))
	}
	if len(lines) == 0 {
		return "- Standard Laravel application structure"
	}
	return strings.Join(lines, "\n")
}

func countContaining(paths []string, needle string) int {
	n := 0
	for _, p := range paths {
		if strings.Contains(p, needle) {
			n++
		}
	}
	return n
}

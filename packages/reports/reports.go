// Package reports writes the documents that accompany an enhancement pass.
package reports

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"devflow-context/packages/config"
	"devflow-context/packages/enhancer"
)

// NextSteps closes every enhancement report.
var NextSteps = []string{
	"Review generated AI comments for accuracy",
	"Update any incorrect AGENT_* annotations",
	"Add specific business context where needed",
	"Ensure test coverage is documented correctly",
}

// ContextMap is the machine-readable companion to the guide.
type ContextMap struct {
	EnhancementTimestamp string   `json:"enhancement_timestamp"`
	TotalFilesEnhanced   int      `json:"total_files_enhanced"`
	FileAnalysisSummary  Summary  `json:"file_analysis_summary"`
	NavigationHints      []string `json:"ai_navigation_hints"`
}

// EnhancementReport records what a pass did.
type EnhancementReport struct {
	EnhancementDate string             `json:"enhancement_date"`
	FilesProcessed  int                `json:"files_processed"`
	AnalysisSummary Summary            `json:"analysis_summary"`
	EnhancementLog  []string           `json:"enhancement_log"`
	Failed          []enhancer.Failure `json:"failed"`
	NextSteps       []string           `json:"next_steps"`
}

// Narrator writes a prose overview of an analysis summary.
type Narrator interface {
	Overview(ctx context.Context, summary Summary) (string, error)
}

// Writer renders reports under <workspace>/<output_dir>.
type Writer struct {
	workspace string
	cfg       *config.Config
	narrator  Narrator
	now       func() time.Time
}

// NewWriter creates a report writer for the workspace.
func NewWriter(workspace string, cfg *config.Config) *Writer {
	return &Writer{
		workspace: workspace,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithNarrator adds an optional Codebase Overview section to the guide.
func (w *Writer) WithNarrator(n Narrator) *Writer {
	w.narrator = n
	return w
}

// WithClock replaces the time source used for report dates.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Write produces the context map, the guide and the enhancement report.
func (w *Writer) Write(ctx context.Context, result *enhancer.Result) error {
	summary := Summarize(result.Analyses)

	if err := w.WriteContextMap(result, summary); err != nil {
		return err
	}
	if err := w.WriteGuide(ctx, result, summary); err != nil {
		return err
	}
	if err := w.WriteReport(result, summary); err != nil {
		return err
	}

	slog.Info("Reports written", "dir", filepath.Join(w.workspace, w.cfg.Reports.OutputDir))
	return nil
}

// WriteContextMap writes docs/ai_context_map.json.
func (w *Writer) WriteContextMap(result *enhancer.Result, summary Summary) error {
	contextMap := ContextMap{
		EnhancementTimestamp: w.date(),
		TotalFilesEnhanced:   len(result.Enhanced),
		FileAnalysisSummary:  summary,
		NavigationHints:      NavigationHints(result.Analyses),
	}
	return w.writeJSON(w.cfg.Reports.ContextMapFile, contextMap)
}

// WriteReport writes reports/enhancement_report.json.
func (w *Writer) WriteReport(result *enhancer.Result, summary Summary) error {
	report := EnhancementReport{
		EnhancementDate: w.date(),
		FilesProcessed:  len(result.Enhanced),
		AnalysisSummary: summary,
		EnhancementLog:  nonNil(result.Enhanced),
		Failed:          nonNil(result.Failed),
		NextSteps:       NextSteps,
	}
	return w.writeJSON(w.cfg.Reports.ReportFile, report)
}

// WriteGuide writes docs/AI_AGENT_GUIDE.md.
func (w *Writer) WriteGuide(ctx context.Context, result *enhancer.Result, summary Summary) error {
	path := w.cfg.GetReportPath(w.workspace, w.cfg.Reports.GuideFile)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create guide file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, `# AI Agent Context Guide

Generated: %s

## Enhanced Files Summary
- Total files enhanced: %d
- Controllers: %d
- Models: %d
- Helpers: %d

## AI Navigation Quick Start
1. Look for `+"`AGENT_MODULE`"+` comments at the top of each file
2. Use `+"`AGENT_DEPENDENCIES`"+` to understand file relationships
3. Check `+"`AGENT_COMPLEXITY`"+` to estimate modification effort
4. Review `+"`AGENT_PATTERNS`"+` to understand functional areas

## Key Integration Points
%s

## AI Agent Usage Instructions
1. Start with high-level controllers for API understanding
2. Follow dependency chains through models and helpers
3. Check test coverage before making changes
4. Update AGENT_RECENT_CHANGES when modifying files
`,
		w.date(),
		len(result.Enhanced),
		countContaining(result.Enhanced, "Controller"),
		countContaining(result.Enhanced, "Model"),
		countContaining(result.Enhanced, "Helper"),
		IntegrationSummary(result.Analyses),
	)

	if overview := w.overview(ctx, summary); overview != "" {
		fmt.Fprintf(writer, "\n## Codebase Overview\n%s\n", overview)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write guide file: %w", err)
	}
	return nil
}

// overview returns "" when there is no narrator or it fails.
func (w *Writer) overview(ctx context.Context, summary Summary) string {
	if w.narrator == nil || summary.TotalFiles == 0 {
		return ""
	}
	text, err := w.narrator.Overview(ctx, summary)
	if err != nil {
		slog.Warn("Skipping codebase overview", "error", err)
		return ""
	}
	return text
}

func (w *Writer) writeJSON(name string, v any) error {
	path := w.cfg.GetReportPath(w.workspace, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return os.WriteFile(path, jsonData, 0644)
}

func (w *Writer) date() string {
	return w.now().Format("2006-01-02")
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"devflow-context/packages/ai"
	"devflow-context/packages/enhancer"
	"devflow-context/packages/reports"

	"github.com/spf13/cobra"
)

var (
	enhanceWorkspace string
	enhanceWatch     bool
)

// enhanceCmd adds AGENT_* headers to the workspace
var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Add AGENT_* context headers to PHP files",
	Long: `Walk the configured source and config directories, insert an AGENT_* header
after the opening tag of every file that does not have one yet, and write:

  <output_dir>/docs/ai_context_map.json
  <output_dir>/docs/AI_AGENT_GUIDE.md
  <output_dir>/reports/enhancement_report.json

Files that already carry AGENT_ENHANCED are left untouched, so the command can
be re-run safely. With --watch it keeps running and enhances files as they are
created or saved.`,
	Args: cobra.NoArgs,
	RunE: runEnhance,
}

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceWorkspace, "workspace", "w", ".", "Workspace root to enhance")
	enhanceCmd.Flags().BoolVar(&enhanceWatch, "watch", false, "Keep running and enhance files as they change")
}

func runEnhance(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workspace, err := filepath.Abs(enhanceWorkspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}

	e := enhancer.New(workspace, cfg.Enhancer)
	result, err := e.Run(ctx)
	if err != nil {
		return fmt.Errorf("enhancement failed: %w", err)
	}

	writer := reports.NewWriter(workspace, cfg)
	if narrator := newNarrator(); narrator != nil {
		writer.WithNarrator(narrator)
	}
	if err := writer.Write(ctx, result); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Enhanced %d files (%d skipped, %d failed)\n",
		len(result.Enhanced), len(result.Skipped), len(result.Failed))

	if !enhanceWatch {
		return nil
	}

	// narration is only done for the full pass
	watchWriter := reports.NewWriter(workspace, cfg)
	return e.Watch(ctx, func(change *enhancer.Result) {
		result.Merge(change)
		if err := watchWriter.Write(ctx, result); err != nil {
			slog.Error("Failed to update reports", "error", err)
		}
	})
}

// newNarrator returns nil when AI narration is off or not configured.
func newNarrator() reports.Narrator {
	if !cfg.AI.Enabled {
		return nil
	}
	narrator, err := ai.NewGeminiNarrator(cfg.AI)
	if err != nil {
		slog.Warn("Codebase overview disabled", "error", err)
		return nil
	}
	return narrator
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"devflow-context/packages/issues"

	"github.com/spf13/cobra"
)

var (
	issuesOutput string
	issuesRepo   string
)

// issuesCmd ranks open issues by readiness
var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Rank open GitHub issues by readiness for an AI agent",
	Long: `Fetch the open issues of a repository, keep the ones an agent can pick up
without further human input, score them 0..100 and print the ranking as JSON.

The repository is taken from --repo, then DEVFLOW_REPOSITORY or the config file,
then the origin remote of the current directory. GITHUB_TOKEN is required for a
live query; without it, or when the API call fails, a built-in sample ranking is
printed instead and "source" is set to "mock".`,
	Args: cobra.NoArgs,
	RunE: runIssues,
}

func init() {
	issuesCmd.Flags().StringVarP(&issuesOutput, "output", "o", "", "Also write the JSON to this file")
	issuesCmd.Flags().StringVar(&issuesRepo, "repo", "", "Repository as owner/name")
}

func runIssues(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repository := issuesRepo
	if repository == "" {
		repository = cfg.Issues.Repository
	}
	if repository == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		repository = issues.DetectRepository(ctx, wd, cfg.Issues.FallbackRepository)
	}

	source, err := issues.NewGitHubSource(ctx, cfg.Issues.Token, cfg.Issues.APIBaseURL, cfg.Issues.PerPage)
	if err != nil {
		return err
	}

	analysis := issues.NewAnalyzer(source, repository).Analyze(ctx)

	jsonData, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))

	if issuesOutput == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(issuesOutput), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(issuesOutput, append(jsonData, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", issuesOutput, err)
	}
	return nil
}

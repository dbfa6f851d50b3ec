package repository

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/google/go-github/github"
)

// readinessLabels is the vocabulary the readiness classifier understands.
var readinessLabels = []*github.Label{
	{
		Name:        github.String("ai-agent-ready"),
		Color:       github.String("0e8a16"),
		Description: github.String("Ready for an autonomous agent to pick up"),
	},
	{
		Name:        github.String("complexity-low"),
		Color:       github.String("c2e0c6"),
		Description: github.String("Small, well-scoped change"),
	},
	{
		Name:        github.String("complexity-medium"),
		Color:       github.String("fbca04"),
		Description: github.String("Touches several files or layers"),
	},
	{
		Name:        github.String("complexity-high"),
		Color:       github.String("d93f0b"),
		Description: github.String("Large or risky change"),
	},
	{
		Name:        github.String("blocked"),
		Color:       github.String("b60205"),
		Description: github.String("Waiting on something outside this issue"),
	},
	{
		Name:        github.String("needs discussion"),
		Color:       github.String("d876e3"),
		Description: github.String("Needs a decision before work can start"),
	},
}

// ReadinessLabels returns the classifier vocabulary plus the marker label the
// bot puts on ready issues.
func ReadinessLabels(marker, color string) []*github.Label {
	labels := slices.Clone(readinessLabels)
	return append(labels, &github.Label{
		Name:        github.String(marker),
		Color:       github.String(color),
		Description: github.String("Classified as ready by devflow"),
	})
}

// EnsureLabels creates each label that does not exist yet. Failures are logged per label.
func EnsureLabels(ctx context.Context, client *github.Client, owner, repo string, labels []*github.Label) error {
	var failed []string

	for _, label := range labels {
		_, _, err := client.Issues.GetLabel(ctx, owner, repo, label.GetName())
		if err == nil {
			slog.Info("Label already exists", "label", label.GetName(), "repo", owner+"/"+repo)
			continue
		}

		if _, _, err := client.Issues.CreateLabel(ctx, owner, repo, label); err != nil {
			slog.Error("Failed to create label", "label", label.GetName(), "error", err)
			failed = append(failed, label.GetName())
			continue
		}
		slog.Info("Created label", "label", label.GetName(), "repo", owner+"/"+repo)
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to create labels %s in %s/%s", strings.Join(failed, ", "), owner, repo)
	}
	return nil
}

// AddIssueLabel puts label on an issue.
func AddIssueLabel(ctx context.Context, client *github.Client, owner, repo string, number int, label string) error {
	if _, _, err := client.Issues.AddLabelsToIssue(ctx, owner, repo, number, []string{label}); err != nil {
		return fmt.Errorf("failed to add label %q to #%d: %w", label, number, err)
	}
	slog.Info("Added label", "label", label, "issue", number, "repo", owner+"/"+repo)
	return nil
}

// RemoveIssueLabel takes label off an issue. A label that is already gone is not an error.
func RemoveIssueLabel(ctx context.Context, client *github.Client, owner, repo string, number int, label string) error {
	resp, err := client.Issues.RemoveLabelForIssue(ctx, owner, repo, number, label)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			slog.Info("Label already removed", "label", label, "issue", number)
			return nil
		}
		return fmt.Errorf("failed to remove label %q from #%d: %w", label, number, err)
	}
	slog.Info("Removed label", "label", label, "issue", number, "repo", owner+"/"+repo)
	return nil
}

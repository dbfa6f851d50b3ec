package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"devflow-context/packages/config"
	"devflow-context/packages/issues"
	repoActions "devflow-context/packages/repository"

	"github.com/google/go-github/github"
	"github.com/swinton/go-probot/probot"
)

// trackedActions are the issue actions that can change readiness.
var trackedActions = []string{"opened", "edited", "labeled", "unlabeled", "assigned", "unassigned", "reopened"}

// IssueHandler keeps the ready marker label in line with the readiness classifier.
type IssueHandler struct {
	label string
}

// NewIssueHandler creates a handler that manages cfg.ReadyLabel.
func NewIssueHandler(cfg config.BotConfig) *IssueHandler {
	return &IssueHandler{label: cfg.ReadyLabel}
}

// Handle is registered with probot for "issues" events.
func (h *IssueHandler) Handle(ctx *probot.Context) error {
	event, ok := ctx.Payload.(*github.IssuesEvent)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", ctx.Payload)
	}
	return h.Sync(context.Background(), ctx.GitHub, event)
}

// Sync adds or removes the marker label so it is present exactly when the issue is ready.
func (h *IssueHandler) Sync(ctx context.Context, client *github.Client, event *github.IssuesEvent) error {
	action := event.GetAction()
	repoName := event.Repo.GetFullName()
	issueNumber := event.Issue.GetNumber()

	slog.Info("Issue event", "action", action, "issueNumber", issueNumber, "repoName", repoName)

	if !slices.Contains(trackedActions, action) {
		slog.Info("Skipping action", "action", action)
		return nil
	}
	if event.Issue == nil || event.Issue.GetState() == "closed" {
		slog.Info("Skipping issue", "issueNumber", issueNumber, "state", event.Issue.GetState())
		return nil
	}

	owner, repo, err := issues.SplitRepository(repoName)
	if err != nil {
		return err
	}

	issue := issues.FromGitHub(event.Issue)
	ready := issues.IsReady(issue)
	labeled := slices.Contains(issue.Labels, strings.ToLower(h.label))

	slog.Info("Classified issue",
		"issueNumber", issueNumber,
		"ready", ready,
		"score", issues.ReadinessScore(issue),
		"labeled", labeled)

	switch {
	case ready && !labeled:
		return repoActions.AddIssueLabel(ctx, client, owner, repo, issueNumber, h.label)
	case !ready && labeled:
		return repoActions.RemoveIssueLabel(ctx, client, owner, repo, issueNumber, h.label)
	default:
		return nil
	}
}

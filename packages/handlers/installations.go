package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"devflow-context/packages/config"
	"devflow-context/packages/issues"
	repoActions "devflow-context/packages/repository"

	"github.com/google/go-github/github"
	"github.com/swinton/go-probot/probot"
)

// InstallationHandler prepares repositories the app gets installed on.
type InstallationHandler struct {
	labels []*github.Label
}

// NewInstallationHandler creates the readiness vocabulary plus cfg's marker label on new repositories.
func NewInstallationHandler(cfg config.BotConfig) *InstallationHandler {
	return &InstallationHandler{labels: repoActions.ReadinessLabels(cfg.ReadyLabel, cfg.ReadyLabelColor)}
}

// Handle is registered with probot for "installation_repositories" events.
func (h *InstallationHandler) Handle(ctx *probot.Context) error {
	event, ok := ctx.Payload.(*github.InstallationRepositoriesEvent)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", ctx.Payload)
	}
	return h.Sync(context.Background(), ctx.GitHub, event)
}

// Sync handles one installation_repositories event.
func (h *InstallationHandler) Sync(ctx context.Context, client *github.Client, event *github.InstallationRepositoriesEvent) error {
	action := event.GetAction()
	slog.Info("Installation Action:", "action", action)

	switch action {
	case "added":
		h.handleRepositoriesAdded(ctx, client, event.RepositoriesAdded)
	case "removed":
		for _, repo := range event.RepositoriesRemoved {
			// access is gone, so labels stay where they are
			slog.Info("Repository removed", "fullName", repo.GetFullName())
		}
	}
	return nil
}

func (h *InstallationHandler) handleRepositoriesAdded(ctx context.Context, client *github.Client, repos []*github.Repository) {
	for _, repo := range repos {
		fullName := repo.GetFullName()

		owner, name, err := issues.SplitRepository(fullName)
		if err != nil {
			slog.Error("Invalid repository full name", "fullName", fullName)
			continue
		}

		slog.Info("Repository details:", "fullName", fullName, "owner", owner, "name", name)

		if err := repoActions.EnsureLabels(ctx, client, owner, name, h.labels); err != nil {
			slog.Error("Failed to add labels", "repo", fullName, "error", err)
			continue
		}
	}
}

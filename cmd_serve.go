package main

import (
	"fmt"
	"log/slog"
	"os"

	"devflow-context/packages/handlers"

	"github.com/spf13/cobra"
	"github.com/swinton/go-probot/probot"
)

// serveCmd runs the webhook bot
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the GitHub App that keeps the ready label up to date",
	Long: `Start the GitHub App webhook server.

On issue events the issue is classified and the ready label is added or
removed. When the app is installed on a repository, the readiness labels are
created there.

Requires GITHUB_APP_ID and either GITHUB_APP_PRIVATE_KEY or
GITHUB_APP_PRIVATE_KEY_PATH, plus the webhook settings go-probot reads from the
environment.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadPrivateKey(); err != nil {
		return err
	}

	appID := os.Getenv("GITHUB_APP_ID")
	slog.Info("App ID: ", "appID", appID)

	probot.HandleEvent("issues", handlers.NewIssueHandler(cfg.Bot).Handle)
	probot.HandleEvent("installation_repositories", handlers.NewInstallationHandler(cfg.Bot).Handle)

	probot.Start()
	return nil
}

// loadPrivateKey copies the key file named by GITHUB_APP_PRIVATE_KEY_PATH into
// GITHUB_APP_PRIVATE_KEY, where go-probot looks for it.
func loadPrivateKey() error {
	keyPath := os.Getenv("GITHUB_APP_PRIVATE_KEY_PATH")
	if keyPath == "" {
		return nil
	}
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read private key: %w", err)
	}
	if err := os.Setenv("GITHUB_APP_PRIVATE_KEY", string(keyData)); err != nil {
		return fmt.Errorf("failed to export private key: %w", err)
	}
	slog.Info("Private key loaded from", "keyPath", keyPath)
	return nil
}

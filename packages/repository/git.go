package repository

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ---------- tiny git helpers ----------
func git(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath
	var out bytes.Buffer
	var errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %v failed: %v: %s", args, err, strings.TrimSpace(errb.String()))
	}
	return out.String(), nil
}

// RemoteURL returns the fetch URL of the origin remote for the repository at repoPath.
func RemoteURL(ctx context.Context, repoPath string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", fmt.Errorf("git is not installed or not in PATH: %w", err)
	}
	out, err := git(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

package issues

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"devflow-context/packages/repository"
)

// DetectRepository resolves the owner/name identity from the origin remote of
// the checkout at dir, returning fallback when it is not a GitHub remote.
func DetectRepository(ctx context.Context, dir, fallback string) string {
	remote, err := repository.RemoteURL(ctx, dir)
	if err != nil {
		slog.Debug("Could not read origin remote", "dir", dir, "error", err)
		return fallback
	}

	if fullName, ok := ParseGitHubRemote(remote); ok {
		return fullName
	}
	slog.Debug("Origin is not a GitHub remote", "remote", remote)
	return fallback
}

// ParseGitHubRemote extracts owner/name from HTTPS, SSH and scp-style GitHub
// remotes. Ports and credentials in URL-style remotes are ignored.
func ParseGitHubRemote(remote string) (string, bool) {
	remote = strings.TrimSpace(remote)

	var host, path string
	if strings.Contains(remote, "://") {
		u, err := url.Parse(remote)
		if err != nil {
			return "", false
		}
		host, path = u.Hostname(), u.Path
	} else {
		// scp-style: [user@]host:owner/name.git
		hostPart, rest, ok := strings.Cut(remote, ":")
		if !ok {
			return "", false
		}
		if _, after, found := strings.Cut(hostPart, "@"); found {
			hostPart = after
		}
		host, path = hostPart, rest
	}

	if !isGitHubHost(host) {
		return "", false
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "/" + parts[1], true
}

func isGitHubHost(host string) bool {
	host = strings.ToLower(host)
	return host == "github.com" || strings.HasSuffix(host, ".github.com")
}

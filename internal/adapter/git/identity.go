// Package git resolves the repository identity used to scope fingerprints.
package git

import (
	"fmt"
	"path/filepath"
	"strings"

	goGit "github.com/go-git/go-git/v5"
)

// RepositoryID derives a stable repository identifier for the checkout at
// repoDir. The origin remote URL is preferred because it stays the same
// across clones of the same repository; a checkout without remotes falls
// back to the directory name.
func RepositoryID(repoDir string) (string, error) {
	repo, err := goGit.PlainOpenWithOptions(repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}

	remote, err := repo.Remote("origin")
	if err == nil && len(remote.Config().URLs) > 0 {
		return normalizeRemoteURL(remote.Config().URLs[0]), nil
	}

	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "", fmt.Errorf("resolve repo dir: %w", err)
	}
	return filepath.Base(abs), nil
}

// normalizeRemoteURL reduces a remote URL to host/owner/name so HTTPS and
// SSH clones of the same repository get the same identity.
func normalizeRemoteURL(url string) string {
	id := strings.TrimSuffix(url, ".git")

	// scp-like SSH syntax: git@host:owner/name
	if at := strings.Index(id, "@"); at >= 0 && !strings.Contains(id, "://") {
		id = id[at+1:]
		id = strings.Replace(id, ":", "/", 1)
		return id
	}

	for _, scheme := range []string{"https://", "http://", "ssh://", "git://"} {
		if strings.HasPrefix(id, scheme) {
			id = strings.TrimPrefix(id, scheme)
			break
		}
	}

	// Drop embedded credentials
	if at := strings.Index(id, "@"); at >= 0 {
		id = id[at+1:]
	}

	return id
}

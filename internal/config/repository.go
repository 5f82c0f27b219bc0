package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// InferRepositoryIdentity fills organization_name and project_name from the
// origin remote of the git repository enclosing dir, when they are unset.
// A directory outside any repository, or one without an origin remote, is
// left as-is and is not an error.
func InferRepositoryIdentity(cfg *Config, dir string) error {
	if cfg.OrganizationName != "" && cfg.ProjectName != "" {
		return nil
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil
		}
		return err
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return nil
		}
		return err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil
	}

	org, project := ParseRemoteURL(urls[0])
	if cfg.OrganizationName == "" {
		cfg.OrganizationName = org
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName = project
	}
	return nil
}

// ParseRemoteURL extracts owner and repository name from a git remote URL.
// Both scp-like (git@host:owner/repo.git) and URL forms are accepted.
func ParseRemoteURL(remote string) (owner, name string) {
	var path string
	if u, err := url.Parse(remote); err == nil && u.Scheme != "" && u.Host != "" {
		path = u.Path
	} else if i := strings.Index(remote, ":"); i >= 0 {
		path = remote[i+1:]
	} else {
		return "", ""
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

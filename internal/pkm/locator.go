package pkm

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

const rawGitHubBase = "https://raw.githubusercontent.com"

// Resolver turns the locator forms pkm accepts into fetchable URLs.
//
//	https://host/path/unit.sh          used as is (also http:// and file://)
//	/abs/path/unit.sh                  local file
//	gh:owner/repo[@branch]/path.lua    file in a GitHub repository
//	owner/repo:path/unit.sh            same, on the configured branch
//	unit.sh                            file in the default repository's commands folder
type Resolver struct {
	Repo   string
	Branch string
	Folder string
}

// Resolve returns the URL for locator.
func (r Resolver) Resolve(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	switch {
	case locator == "":
		return "", errors.New("empty locator")
	case strings.Contains(locator, "://"):
		return locator, nil
	case strings.HasPrefix(locator, "gh:"):
		return resolveGitHub(strings.TrimPrefix(locator, "gh:"), r.branch())
	case filepath.IsAbs(locator):
		return "file://" + filepath.ToSlash(locator), nil
	}
	if repo, file, ok := strings.Cut(locator, ":"); ok && strings.Count(repo, "/") == 1 {
		return resolveGitHub(repo+"/"+file, r.branch())
	}

	if r.Repo == "" {
		return "", fmt.Errorf("%s is not a URL and no default repository is configured", locator)
	}
	item := strings.TrimPrefix(path.Clean("/"+locator), "/")
	parts := []string{rawGitHubBase, r.Repo, r.branch()}
	if r.Folder != "" {
		parts = append(parts, r.Folder)
	}
	return strings.Join(append(parts, item), "/"), nil
}

func (r Resolver) branch() string {
	if r.Branch == "" {
		return "main"
	}
	return r.Branch
}

func resolveGitHub(ref, defaultBranch string) (string, error) {
	parts := strings.SplitN(ref, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf("gh:%s: want gh:owner/repo[@branch]/path", ref)
	}
	owner, repo, file := parts[0], parts[1], parts[2]
	branch := defaultBranch
	if i := strings.Index(repo, "@"); i >= 0 {
		repo, branch = repo[:i], repo[i+1:]
		if repo == "" || branch == "" {
			return "", fmt.Errorf("gh:%s: empty repository or branch", ref)
		}
	}
	return strings.Join([]string{rawGitHubBase, owner, repo, branch, file}, "/"), nil
}

// urlPath returns the path component of a resolved URL, ignoring any query.
func urlPath(resolved string) string {
	u, err := url.Parse(resolved)
	if err != nil {
		return resolved
	}
	return u.Path
}

// isArchive reports whether a resolved URL names a zip archive.
func isArchive(resolved string) bool {
	return strings.HasSuffix(strings.ToLower(urlPath(resolved)), ".zip")
}

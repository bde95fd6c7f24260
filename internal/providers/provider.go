// Package providers detects the CI environment the CLI runs in. The detected metadata (branch, commit, build URL)
// becomes the description of newly created runs.
package providers

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v7"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// Provider describes where a test run came from.
type Provider struct {
	ProviderName  string
	AttemptedBy   string
	BranchName    string
	CommitSha     string
	CommitMessage string
	BuildURL      string
}

// Env bundles the environment of all supported CI providers.
type Env struct {
	Buildkite BuildkiteEnv
	CircleCI  CircleCIEnv
	GitHub    GitHubEnv
	GitLab    GitLabEnv
}

var providerTitles = map[string]string{
	"buildkite": "Buildkite",
	"circleci":  "CircleCI",
	"github":    "GitHub Actions",
	"gitlab":    "GitLab CI",
	"generic":   "local git repository",
}

// ParseEnv reads the provider environment. A nil environment means the process environment.
func ParseEnv(environment map[string]string) (Env, error) {
	var cfg Env

	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}

	if err := env.Parse(&cfg, opts); err != nil {
		return cfg, errors.NewConfigurationError("unable to parse the CI environment: %s", err)
	}

	return cfg, nil
}

// Detect returns the provider of the first detected CI environment. Outside of CI, the git repository in `repoDir`
// is inspected instead. If neither is available, an empty provider is returned.
func Detect(cfg Env, repoDir string) (Provider, error) {
	switch {
	case cfg.GitHub.Detected:
		return cfg.GitHub.MakeProvider()
	case cfg.GitLab.Detected:
		return cfg.GitLab.MakeProvider(), nil
	case cfg.Buildkite.Detected:
		return cfg.Buildkite.MakeProvider(), nil
	case cfg.CircleCI.Detected:
		return cfg.CircleCI.MakeProvider(), nil
	}

	provider, ok := MakeGitProvider(repoDir)
	if !ok {
		return Provider{}, nil
	}

	return provider, nil
}

// Description renders the provider as a run description. Unknown fields are left out.
func (p Provider) Description() string {
	if p.ProviderName == "" {
		return ""
	}

	title, ok := providerTitles[p.ProviderName]
	if !ok {
		title = p.ProviderName
	}

	lines := make([]string, 0, 5)
	if p.BuildURL != "" {
		lines = append(lines, fmt.Sprintf("Uploaded from %s: %s", title, p.BuildURL))
	} else {
		lines = append(lines, fmt.Sprintf("Uploaded from %s", title))
	}

	if p.BranchName != "" {
		lines = append(lines, "Branch: "+p.BranchName)
	}

	if p.CommitSha != "" {
		commit := p.CommitSha
		if summary := firstLine(p.CommitMessage); summary != "" {
			commit = fmt.Sprintf("%s (%s)", commit, summary)
		}
		lines = append(lines, "Commit: "+commit)
	}

	if p.AttemptedBy != "" {
		lines = append(lines, "Triggered by: "+p.AttemptedBy)
	}

	return strings.Join(lines, "\n")
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}

func firstNonempty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

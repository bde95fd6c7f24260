package providers

import (
	"github.com/go-git/go-git/v5"
)

// MakeGitProvider reads branch & commit from the git repository containing dir. It returns false if dir is not part of
// a repository or the repository has no commits yet.
func MakeGitProvider(dir string) (Provider, bool) {
	if dir == "" {
		return Provider{}, false
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Provider{}, false
	}

	head, err := repo.Head()
	if err != nil {
		return Provider{}, false
	}

	provider := Provider{
		CommitSha:    head.Hash().String(),
		ProviderName: "generic",
	}

	if head.Name().IsBranch() {
		provider.BranchName = head.Name().Short()
	}

	if commit, err := repo.CommitObject(head.Hash()); err == nil {
		provider.CommitMessage = commit.Message
		provider.AttemptedBy = commit.Author.Name
	}

	return provider, true
}

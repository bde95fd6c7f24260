package providers_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/hypersequent/qas-cli/internal/providers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Detect", func() {
	var notARepo string

	BeforeEach(func() {
		notARepo = GinkgoT().TempDir()
	})

	It("detects GitHub Actions", func() {
		cfg, err := providers.ParseEnv(map[string]string{
			"GITHUB_ACTIONS":     "true",
			"GITHUB_ACTOR":       "octocat",
			"GITHUB_EVENT_NAME":  "push",
			"GITHUB_REF_NAME":    "main",
			"GITHUB_SHA":         "abc123",
			"GITHUB_REPOSITORY":  "acme/app",
			"GITHUB_RUN_ID":      "42",
			"GITHUB_RUN_ATTEMPT": "1",
		})
		Expect(err).ToNot(HaveOccurred())

		provider, err := providers.Detect(cfg, notARepo)
		Expect(err).ToNot(HaveOccurred())
		Expect(provider.ProviderName).To(Equal("github"))
		Expect(provider.BuildURL).To(Equal("https://github.com/acme/app/actions/runs/42"))
		Expect(provider.BranchName).To(Equal("main"))
	})

	It("detects GitLab CI", func() {
		cfg, err := providers.ParseEnv(map[string]string{
			"GITLAB_CI":          "true",
			"CI_COMMIT_REF_NAME": "feature",
			"CI_COMMIT_SHA":      "def456",
			"CI_JOB_URL":         "https://gitlab.com/acme/app/-/jobs/7",
			"GITLAB_USER_LOGIN":  "jane",
		})
		Expect(err).ToNot(HaveOccurred())

		provider, err := providers.Detect(cfg, notARepo)
		Expect(err).ToNot(HaveOccurred())
		Expect(provider).To(Equal(providers.Provider{
			ProviderName: "gitlab",
			AttemptedBy:  "jane",
			BranchName:   "feature",
			CommitSha:    "def456",
			BuildURL:     "https://gitlab.com/acme/app/-/jobs/7",
		}))
	})

	It("detects Buildkite and CircleCI", func() {
		cfg, err := providers.ParseEnv(map[string]string{"BUILDKITE": "true", "BUILDKITE_BRANCH": "main"})
		Expect(err).ToNot(HaveOccurred())
		provider, err := providers.Detect(cfg, notARepo)
		Expect(err).ToNot(HaveOccurred())
		Expect(provider.ProviderName).To(Equal("buildkite"))

		cfg, err = providers.ParseEnv(map[string]string{"CIRCLECI": "true", "CIRCLE_SHA1": "abc"})
		Expect(err).ToNot(HaveOccurred())
		provider, err = providers.Detect(cfg, notARepo)
		Expect(err).ToNot(HaveOccurred())
		Expect(provider.ProviderName).To(Equal("circleci"))
		Expect(provider.CommitSha).To(Equal("abc"))
	})

	It("reports invalid environments", func() {
		_, err := providers.ParseEnv(map[string]string{"GITHUB_ACTIONS": "maybe"})
		Expect(err).To(HaveOccurred())
	})

	It("falls back to the local git repository", func() {
		dir := GinkgoT().TempDir()
		repo, err := git.PlainInit(dir, false)
		Expect(err).ToNot(HaveOccurred())

		Expect(os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o600)).To(Succeed())
		worktree, err := repo.Worktree()
		Expect(err).ToNot(HaveOccurred())
		_, err = worktree.Add("README.md")
		Expect(err).ToNot(HaveOccurred())

		hash, err := worktree.Commit("Initial commit\n\nWith a body", &git.CommitOptions{
			Author: &object.Signature{Name: "Jane Doe", Email: "jane@example.com", When: time.Now()},
		})
		Expect(err).ToNot(HaveOccurred())

		Expect(os.MkdirAll(filepath.Join(dir, "nested"), 0o700)).To(Succeed())
		provider, err := providers.Detect(providers.Env{}, filepath.Join(dir, "nested"))
		Expect(err).ToNot(HaveOccurred())
		Expect(provider.ProviderName).To(Equal("generic"))
		Expect(provider.CommitSha).To(Equal(hash.String()))
		Expect(provider.BranchName).To(Equal("master"))
		Expect(provider.AttemptedBy).To(Equal("Jane Doe"))
		Expect(provider.Description()).To(ContainSubstring("(Initial commit)"))
	})

	It("returns an empty provider outside of CI and git", func() {
		provider, err := providers.Detect(providers.Env{}, notARepo)
		Expect(err).ToNot(HaveOccurred())
		Expect(provider).To(Equal(providers.Provider{}))
		Expect(provider.Description()).To(BeEmpty())
	})
})

var _ = Describe("Provider.Description", func() {
	It("lists the known fields", func() {
		provider := providers.Provider{
			ProviderName:  "github",
			AttemptedBy:   "octocat",
			BranchName:    "main",
			CommitSha:     "abc123",
			CommitMessage: "Fix login\n\nDetails",
			BuildURL:      "https://github.com/acme/app/actions/runs/42",
		}

		Expect(provider.Description()).To(Equal(
			"Uploaded from GitHub Actions: https://github.com/acme/app/actions/runs/42\n" +
				"Branch: main\n" +
				"Commit: abc123 (Fix login)\n" +
				"Triggered by: octocat",
		))
	})

	It("leaves out unknown fields", func() {
		provider := providers.Provider{ProviderName: "circleci", CommitSha: "abc"}
		Expect(provider.Description()).To(Equal("Uploaded from CircleCI\nCommit: abc"))
	})
})

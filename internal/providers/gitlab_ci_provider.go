package providers

type GitLabEnv struct {
	Detected bool `env:"GITLAB_CI"`

	JobURL      string `env:"CI_JOB_URL"`      // gitlab/runner version 11.1/0.5
	PipelineURL string `env:"CI_PIPELINE_URL"` // gitlab/runner version 11.1/0.5
	UserLogin   string `env:"GITLAB_USER_LOGIN"`

	CommitSHA     string `env:"CI_COMMIT_SHA"`
	CommitAuthor  string `env:"CI_COMMIT_AUTHOR"` // gitlab/runner version 13.11/all
	CommitBranch  string `env:"CI_COMMIT_BRANCH"` // not available in merge request pipelines
	CommitRefName string `env:"CI_COMMIT_REF_NAME"`
	CommitMessage string `env:"CI_COMMIT_MESSAGE"`
}

func (cfg GitLabEnv) MakeProvider() Provider {
	return Provider{
		AttemptedBy:   firstNonempty(cfg.UserLogin, cfg.CommitAuthor),
		BranchName:    firstNonempty(cfg.CommitBranch, cfg.CommitRefName),
		CommitMessage: cfg.CommitMessage,
		CommitSha:     cfg.CommitSHA,
		BuildURL:      firstNonempty(cfg.JobURL, cfg.PipelineURL),
		ProviderName:  "gitlab",
	}
}

package providers

type BuildkiteEnv struct {
	Detected bool `env:"BUILDKITE"`

	BuildCreatorEmail string `env:"BUILDKITE_BUILD_CREATOR_EMAIL"`
	Branch            string `env:"BUILDKITE_BRANCH"`
	Message           string `env:"BUILDKITE_MESSAGE"`
	Commit            string `env:"BUILDKITE_COMMIT"`
	BuildURL          string `env:"BUILDKITE_BUILD_URL"`
}

func (cfg BuildkiteEnv) MakeProvider() Provider {
	return Provider{
		AttemptedBy:   cfg.BuildCreatorEmail,
		BranchName:    cfg.Branch,
		CommitMessage: cfg.Message,
		CommitSha:     cfg.Commit,
		BuildURL:      cfg.BuildURL,
		ProviderName:  "buildkite",
	}
}

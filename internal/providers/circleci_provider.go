package providers

type CircleCIEnv struct {
	Detected bool `env:"CIRCLECI"`

	Username string `env:"CIRCLE_USERNAME"`
	Branch   string `env:"CIRCLE_BRANCH"`
	Sha1     string `env:"CIRCLE_SHA1"`
	BuildURL string `env:"CIRCLE_BUILD_URL"`
}

func (cfg CircleCIEnv) MakeProvider() Provider {
	return Provider{
		AttemptedBy:  cfg.Username,
		BranchName:   cfg.Branch,
		CommitSha:    cfg.Sha1,
		BuildURL:     cfg.BuildURL,
		ProviderName: "circleci",
	}
}

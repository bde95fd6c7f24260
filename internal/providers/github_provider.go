package providers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hypersequent/qas-cli/internal/errors"
)

type GitHubEnv struct {
	Detected bool `env:"GITHUB_ACTIONS"`

	// attempted by
	ExecutingActor  string `env:"GITHUB_ACTOR"`
	TriggeringActor string `env:"GITHUB_TRIGGERING_ACTOR"`

	// branch
	EventName string `env:"GITHUB_EVENT_NAME"`
	RefName   string `env:"GITHUB_REF_NAME"`
	HeadRef   string `env:"GITHUB_HEAD_REF"`

	// commit message is parsed from the event payload
	EventPath string `env:"GITHUB_EVENT_PATH"`

	CommitSha string `env:"GITHUB_SHA"`

	// build URL
	ServerURL  string `env:"GITHUB_SERVER_URL" envDefault:"https://github.com"`
	Repository string `env:"GITHUB_REPOSITORY"`
	RunID      string `env:"GITHUB_RUN_ID"`
	Attempt    string `env:"GITHUB_RUN_ATTEMPT"`
}

type EventPayloadData struct {
	HeadCommit struct {
		Message string `json:"message"`
	} `json:"head_commit"`
}

func (cfg GitHubEnv) MakeProvider() (Provider, error) {
	var eventPayloadData EventPayloadData

	if cfg.EventPath != "" {
		file, err := os.Open(cfg.EventPath)
		if err != nil && !os.IsNotExist(err) {
			return Provider{}, errors.Wrap(err, "unable to open event payload file")
		} else if err == nil {
			defer file.Close()

			if err := json.NewDecoder(file).Decode(&eventPayloadData); err != nil {
				return Provider{}, errors.Wrap(err, "failed to decode event payload data")
			}
		}
	}

	return cfg.MakeProviderWithoutCommitMessageParsing(eventPayloadData), nil
}

// MakeProviderWithoutCommitMessageParsing builds the provider from an already decoded event payload.
func (cfg GitHubEnv) MakeProviderWithoutCommitMessageParsing(eventPayloadData EventPayloadData) Provider {
	branchName := cfg.RefName
	if cfg.EventName == "pull_request" {
		branchName = cfg.HeadRef
	}

	var buildURL string
	if cfg.Repository != "" && cfg.RunID != "" {
		buildURL = fmt.Sprintf("%s/%s/actions/runs/%s", cfg.ServerURL, cfg.Repository, cfg.RunID)
		if cfg.Attempt != "" && cfg.Attempt != "1" {
			buildURL = fmt.Sprintf("%s/attempts/%s", buildURL, cfg.Attempt)
		}
	}

	return Provider{
		AttemptedBy:   firstNonempty(cfg.TriggeringActor, cfg.ExecutingActor),
		BranchName:    branchName,
		CommitMessage: eventPayloadData.HeadCommit.Message,
		CommitSha:     cfg.CommitSha,
		BuildURL:      buildURL,
		ProviderName:  "github",
	}
}

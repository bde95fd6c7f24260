package main

import (
	"github.com/spf13/viper"

	"github.com/hypersequent/qas-cli/internal/errors"
)

// config is the internal representation of the configuration. Values are read from the environment (or the env file),
// flags take precedence.
type config struct {
	Token       string `mapstructure:"token"`
	URL         string `mapstructure:"url"`
	ProjectCode string `mapstructure:"project_code"`
	RunName     string `mapstructure:"run_name"`
	Debug       bool   `mapstructure:"debug"`
}

var configEnvironment = map[string]string{
	"token":        "QAS_TOKEN",
	"url":          "QAS_URL",
	"project_code": "QAS_PROJECT_CODE",
	"run_name":     "QAS_RUN_NAME",
	"debug":        "QAS_DEBUG",
}

func bindEnvironment(v *viper.Viper) error {
	for key, name := range configEnvironment {
		if err := v.BindEnv(key, name); err != nil {
			return errors.NewInternalError("unable to bind %s: %s", name, err)
		}
	}

	return nil
}

func loadConfig(v *viper.Viper) (config, error) {
	var cfg config

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.NewConfigurationError("unable to parse configuration: %s", err)
	}

	return cfg, nil
}

func (c config) Validate() error {
	if c.Token != "" && c.URL != "" {
		return nil
	}

	missing := "QAS_TOKEN"
	switch {
	case c.Token == "" && c.URL == "":
		missing = "QAS_TOKEN and QAS_URL"
	case c.URL == "":
		missing = "QAS_URL"
	}

	return errors.WithGuidance(
		errors.NewConfigurationError("%s not set", missing),
		"The CLI needs the URL of your QA Sphere instance and an API key to upload results.",
		"Set QAS_TOKEN and QAS_URL in the environment or in a .qaspherecli file in the working directory, e.g.\n\n"+
			"QAS_TOKEN=<API key>\n"+
			"QAS_URL=https://acme.eu1.qasphere.com",
	)
}

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hypersequent/qas-cli/internal/api"
	"github.com/hypersequent/qas-cli/internal/cli"
	"github.com/hypersequent/qas-cli/internal/errors"
	"github.com/hypersequent/qas-cli/internal/exec"
	"github.com/hypersequent/qas-cli/internal/fs"
	"github.com/hypersequent/qas-cli/internal/logging"
	"github.com/hypersequent/qas-cli/internal/providers"
)

const defaultEnvFile = ".qaspherecli"

// version is set at build time through -ldflags
var version = "development"

var (
	qasphere cli.Service
	cfg      config
	envFile  string

	rootCmd = &cobra.Command{
		Use:               "qasphere",
		Short:             "Upload automated test results to QA Sphere",
		Long:              descriptionQASphere,
		Version:           version,
		PersistentPreRunE: initCLIService,
		SilenceErrors:     true, // Errors are manually printed in 'main'
		SilenceUsage:      true, // Disables usage text on error
	}
)

// ConfigureRootCmd registers the global flags & binds the configuration.
func ConfigureRootCmd(rootCmd *cobra.Command) error {
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging, including HTTP requests")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return errors.NewInternalError("unable to bind flag: %s", err)
	}

	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", defaultEnvFile, "file with QAS_* variables, real environment variables take precedence",
	)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return bindEnvironment(viper.GetViper())
}

func initCLIService(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	var err error
	if cfg, err = loadConfig(viper.GetViper()); err != nil {
		return err
	}

	logger := logging.NewProductionLogger()
	if cfg.Debug {
		logger = logging.NewDebugLogger()
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	apiClient, err := api.NewClient(api.ClientConfig{
		Debug: cfg.Debug,
		Log:   logger,
		Token: cfg.Token,
		URL:   cfg.URL,
	})
	if err != nil {
		return errors.Wrap(err, "unable to create API client")
	}

	qasphere = cli.Service{
		API:        apiClient,
		Log:        logger,
		FileSystem: fs.Local{},
		TaskRunner: exec.Local{},
		Provider:   detectProvider(logger),
		Progress:   os.Stderr,
		Summary:    os.Stdout,
	}

	return nil
}

// loadEnvFile reads QAS_* variables from the env file without overriding the environment. A missing default file is
// not an error.
func loadEnvFile(path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return errors.NewConfigurationError("unable to read env file %q: %s", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return errors.NewConfigurationError("unable to parse env file %q: %s", path, err)
	}

	return nil
}

func detectProvider(logger *zap.SugaredLogger) providers.Provider {
	env, err := providers.ParseEnv(nil)
	if err != nil {
		logger.Warnf("Unable to read the CI environment: %s", err)
		return providers.Provider{}
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}

	provider, err := providers.Detect(env, wd)
	if err != nil {
		logger.Warnf("Unable to detect the CI environment: %s", err)
		return providers.Provider{}
	}

	if provider.ProviderName != "" {
		logger.Debugf("Detected CI provider %q", provider.ProviderName)
	}

	return provider
}
